// Package bundle assembles the JSONL line format the export transport
// publishes. The engine's redacted payload is embedded verbatim under
// "data"; contributor metadata passes through uninterpreted.
package bundle

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonschema"
)

// SchemaVersion is the current bundle line schema version.
const SchemaVersion = "1"

// Contributor is opaque passthrough metadata supplied by the caller. The
// engine embeds it unchanged and never interprets it.
type Contributor struct {
	ContributorID     string `json:"contributor_id"`
	License           string `json:"license"`
	AIPreference      string `json:"ai_preference"`
	RightsConfirmed   bool   `json:"rights_confirmed"`
	ReviewedConfirmed bool   `json:"reviewed_confirmed"`
}

// Line is one exported record.
type Line struct {
	SchemaVersion string          `json:"schema_version"`
	BundleID      string          `json:"bundle_id"`
	Source        string          `json:"source"`
	Contributor   Contributor     `json:"contributor"`
	Data          json.RawMessage `json:"data"`
}

// NewLine wraps a redacted payload in a bundle line with a fresh id.
func NewLine(source string, c Contributor, data []byte) Line {
	return Line{
		SchemaVersion: SchemaVersion,
		BundleID:      uuid.NewString(),
		Source:        source,
		Contributor:   c,
		Data:          json.RawMessage(data),
	}
}

// Encode marshals the line for JSONL output (no trailing newline).
func (l Line) Encode() ([]byte, error) {
	if !json.Valid(l.Data) {
		return nil, fmt.Errorf("bundle %s: data is not valid JSON", l.BundleID)
	}
	return json.Marshal(l)
}

//go:embed schema.json
var lineSchemaJSON []byte

var (
	schemaOnce sync.Once
	lineSchema *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		lineSchema, schemaErr = compiler.Compile(lineSchemaJSON)
	})
	return lineSchema, schemaErr
}

// ValidateLine checks one encoded bundle line against the embedded
// schema. Export must not publish lines that fail here.
func ValidateLine(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile bundle schema: %w", err)
	}
	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("bundle line schema validation failed: %v", err)
	}
	result := schema.Validate(instance)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("bundle line schema validation failed: %v", result.Errors)
}
