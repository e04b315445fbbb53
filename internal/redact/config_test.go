package redact

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileConfigMissingFile(t *testing.T) {
	fc, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if fc != nil {
		t.Errorf("expected nil config for missing file, got %+v", fc)
	}
}

func TestLoadFileConfigAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redact.yaml")
	content := `extra_patterns:
  - name: internal-ip
    regex: '\b10\.0\.\d+\.\d+\b'
  - name: ticket-id
    regex: 'JIRA-\d{4,}'
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(fc.ExtraPatterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(fc.ExtraPatterns))
	}

	cfg := fc.Merge(DefaultConfig())
	if len(cfg.CustomPatterns) != 2 {
		t.Errorf("merge produced %d custom patterns", len(cfg.CustomPatterns))
	}
	if _, err := NewPipeline(DefaultLibrary(), cfg); err != nil {
		t.Errorf("merged config should compile: %v", err)
	}
}

func TestLoadFileConfigRejectsUnnamedPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redact.yaml")
	content := "extra_patterns:\n  - regex: 'x+'\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("expected error for pattern without name")
	}
}

func TestEnabledCategories(t *testing.T) {
	cfg := Config{RedactSecrets: true, EnableHighEntropy: true}
	got := cfg.EnabledCategories()
	want := []string{"secrets", "high_entropy"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
