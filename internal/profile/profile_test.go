package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBuiltins(t *testing.T) {
	for _, id := range []string{"full-content", "moderate", "metadata-only"} {
		p, err := Load(id)
		if err != nil {
			t.Fatalf("Load(%q): %v", id, err)
		}
		if p.ID != id {
			t.Errorf("id mismatch: %s", p.ID)
		}
		if !p.Builtin {
			t.Errorf("%s should be marked builtin", id)
		}
		if len(p.KeptFields) == 0 {
			t.Errorf("%s has no kept fields", id)
		}
		if !p.Redaction.RedactSecrets {
			t.Errorf("%s must redact secrets", id)
		}
	}
}

func TestFullContentIsWildcard(t *testing.T) {
	p, err := Load("full-content")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.KeptFields) != 1 || p.KeptFields[0] != "*" {
		t.Errorf("full-content should keep everything: %v", p.KeptFields)
	}
}

func TestMetadataOnlyDropsMessages(t *testing.T) {
	p, err := Load("metadata-only")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range p.KeptFields {
		if f == "messages" || f == "messages[].content" {
			t.Errorf("metadata-only must not keep message content: %v", p.KeptFields)
		}
	}
}

func TestLoadUnknownProfile(t *testing.T) {
	_, err := Load("no-such-profile")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrUnknown) {
		t.Errorf("expected ErrUnknown, got %v", err)
	}
}

func TestLoadUserProfile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".agentwatch", "profiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `id: team-default
name: Team default
kept_fields:
  - session
  - messages[].role
redaction:
  redact_secrets: true
  redact_pii: true
  redact_paths: true
  enable_high_entropy: false
`
	if err := os.WriteFile(filepath.Join(dir, "team-default.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load("team-default")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Builtin {
		t.Error("user profile marked builtin")
	}
	if len(p.KeptFields) != 2 {
		t.Errorf("kept fields: %v", p.KeptFields)
	}

	ids := List()
	if !containsID(ids, "team-default") || !containsID(ids, "moderate") {
		t.Errorf("List missing entries: %v", ids)
	}
}

func TestValidateRejectsEmptyKeptFields(t *testing.T) {
	if err := Validate(&Profile{ID: "x"}); err == nil {
		t.Error("expected error for empty kept_fields")
	}
	if err := Validate(&Profile{ID: "x", KeptFields: []string{" "}}); err == nil {
		t.Error("expected error for blank kept field")
	}
}

func TestInitRefusesBuiltinID(t *testing.T) {
	if _, err := Init("moderate"); err == nil {
		t.Error("expected error initializing over a builtin id")
	}
}

func TestInitWritesLoadableProfile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := Init("mine")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
	p, err := Load("mine")
	if err != nil {
		t.Fatalf("Load after Init: %v", err)
	}
	if p.ID != "mine" {
		t.Errorf("id: %s", p.ID)
	}

	if _, err := Init("mine"); err == nil {
		t.Error("expected error re-initializing existing profile")
	}
}

func containsID(ids []string, want string) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
