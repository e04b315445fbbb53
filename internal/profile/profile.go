// Package profile defines sensitivity profiles: named, reusable sets of
// field paths a prepared session retains, each with a default redaction
// config. Three builtins ship embedded; user profiles live under
// ~/.agentwatch/profiles.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nickmvincent/agentwatch/internal/redact"
)

// ErrUnknown is returned when no builtin or user profile has the id.
var ErrUnknown = errors.New("unknown profile")

// Profile is a named sensitivity tier.
type Profile struct {
	ID         string        `yaml:"id" json:"id"`
	Name       string        `yaml:"name" json:"name"`
	KeptFields []string      `yaml:"kept_fields" json:"kept_fields"`
	Redaction  redact.Config `yaml:"redaction" json:"redaction_config"`
	Builtin    bool          `yaml:"-" json:"builtin"`
}

// Load loads a profile by id. Builtins resolve first; user profiles fall
// back to ~/.agentwatch/profiles/<id>.yaml.
func Load(id string) (*Profile, error) {
	if data, ok := builtinProfiles[id]; ok {
		var p Profile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse builtin profile %q: %w", id, err)
		}
		p.Builtin = true
		return &p, nil
	}

	dir, err := Dir()
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", id, ErrUnknown)
	}
	data, err := os.ReadFile(filepath.Join(dir, id+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", id, ErrUnknown)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", id, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	if err := Validate(&p); err != nil {
		return nil, fmt.Errorf("profile %q: %w", id, err)
	}
	return &p, nil
}

// List returns sorted ids of all available profiles (builtin + user).
func List() []string {
	seen := make(map[string]bool)
	for id := range builtinProfiles {
		seen[id] = true
	}

	if dir, err := Dir(); err == nil {
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				name := e.Name()
				if ext := filepath.Ext(name); ext == ".yaml" || ext == ".yml" {
					seen[name[:len(name)-len(ext)]] = true
				}
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks that a profile is well-formed.
func Validate(p *Profile) error {
	if p.ID == "" {
		return fmt.Errorf("profile id is required")
	}
	if len(p.KeptFields) == 0 {
		return fmt.Errorf("kept_fields must not be empty; use \"*\" to keep everything")
	}
	for i, f := range p.KeptFields {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("kept_fields[%d] is empty", i)
		}
	}
	return nil
}

// Dir returns the user profile directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".agentwatch", "profiles"), nil
}

// Init writes a starter user profile and returns its path. Fails if the
// id is taken by a builtin or an existing user profile.
func Init(id string) (string, error) {
	if _, ok := builtinProfiles[id]; ok {
		return "", fmt.Errorf("%q is a builtin profile", id)
	}
	dir, err := Dir()
	if err != nil {
		return "", fmt.Errorf("resolve profile dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create profile dir: %w", err)
	}

	path := filepath.Join(dir, id+".yaml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("profile %q already exists at %s", id, path)
	}

	starter := Profile{
		ID:         id,
		Name:       id,
		KeptFields: []string{"source", "session", "tool_usages[].tool_name"},
		Redaction:  redact.DefaultConfig(),
	}
	data, err := yaml.Marshal(&starter)
	if err != nil {
		return "", fmt.Errorf("marshal starter profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write profile: %w", err)
	}
	return path, nil
}
