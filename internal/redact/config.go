package redact

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config selects which categories a detection pass applies. It is fully
// specified: the engine never fills defaults, callers do that before
// invocation (see DefaultConfig).
type Config struct {
	RedactSecrets     bool `yaml:"redact_secrets" json:"redact_secrets"`
	RedactPII         bool `yaml:"redact_pii" json:"redact_pii"`
	RedactPaths       bool `yaml:"redact_paths" json:"redact_paths"`
	EnableHighEntropy bool `yaml:"enable_high_entropy" json:"enable_high_entropy"`

	// CustomPatterns are caller-supplied regexes, applied whenever
	// non-empty regardless of the category toggles above. An invalid
	// pattern fails the whole preparation call.
	CustomPatterns []string `yaml:"custom_patterns" json:"custom_patterns,omitempty"`
}

// DefaultConfig is the caller-side default fill: all fixed categories on,
// high-entropy off because of its false-positive rate.
func DefaultConfig() Config {
	return Config{
		RedactSecrets:     true,
		RedactPII:         true,
		RedactPaths:       true,
		EnableHighEntropy: false,
	}
}

// enabled reports whether the given category is applied under this config.
func (c Config) enabled(cat Category) bool {
	switch cat {
	case CategorySecrets:
		return c.RedactSecrets
	case CategoryPII:
		return c.RedactPII
	case CategoryPaths:
		return c.RedactPaths
	case CategoryHighEntropy:
		return c.EnableHighEntropy
	case CategoryCustom:
		return len(c.CustomPatterns) > 0
	}
	return false
}

// EnabledCategories lists the categories this config applies, in
// priority order.
func (c Config) EnabledCategories() []string {
	var out []string
	for _, cat := range Categories() {
		if c.enabled(cat) {
			out = append(out, string(cat))
		}
	}
	return out
}

// compileCustom compiles CustomPatterns into rules. Every custom rule is
// tagged CategoryCustom with the shared CUSTOM placeholder prefix.
func (c Config) compileCustom() ([]Rule, error) {
	var rules []Rule
	for i, pat := range c.CustomPatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("custom pattern %d %q: %w", i, pat, err)
		}
		rules = append(rules, Rule{
			Name:     fmt.Sprintf("custom-%d", i+1),
			Category: CategoryCustom,
			Pattern:  re,
			Prefix:   "CUSTOM",
		})
	}
	return rules, nil
}

// FileConfig holds operator-defined extra patterns loaded from disk. The
// prepare CLI merges these into the per-call Config.
type FileConfig struct {
	ExtraPatterns []ExtraPatternDef `yaml:"extra_patterns"`
}

// ExtraPatternDef defines a named custom pattern from config.
type ExtraPatternDef struct {
	Name  string `yaml:"name"`
	Regex string `yaml:"regex"`
}

// LoadFileConfig loads extra redaction patterns from the given path.
// If path is empty, tries AGENTWATCH_REDACT_CONFIG, then
// ~/.agentwatch/redact.yaml. Returns nil config (not error) if no file
// exists.
func LoadFileConfig(path string) (*FileConfig, error) {
	if path == "" {
		path = os.Getenv("AGENTWATCH_REDACT_CONFIG")
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil
		}
		path = filepath.Join(home, ".agentwatch", "redact.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read redact config: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse redact config: %w", err)
	}

	for i, def := range fc.ExtraPatterns {
		if def.Name == "" {
			return nil, fmt.Errorf("extra_patterns[%d]: name is required", i)
		}
		if def.Regex == "" {
			return nil, fmt.Errorf("extra_patterns[%d] %q: regex is required", i, def.Name)
		}
	}

	return &fc, nil
}

// Merge appends the file config's patterns to cfg's custom patterns.
func (fc *FileConfig) Merge(cfg Config) Config {
	if fc == nil {
		return cfg
	}
	for _, def := range fc.ExtraPatterns {
		cfg.CustomPatterns = append(cfg.CustomPatterns, def.Regex)
	}
	return cfg
}
