package strip

import (
	"encoding/json"
	"testing"
)

func parseDoc(t *testing.T, s string) any {
	t.Helper()
	var doc any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

const sessionDoc = `{
	"source": "cc_transcript",
	"session": {
		"start_time": "2026-08-01T10:00:00Z",
		"total_input_tokens": 4210,
		"cwd": "/home/alice/project"
	},
	"messages": [
		{"role": "user", "content": "fix the bug"},
		{"role": "assistant", "content": "done"}
	],
	"tool_usages": [
		{"tool_name": "Bash", "output": "secret stuff", "timestamp": "t1"},
		{"tool_name": "Edit", "output": "more output", "timestamp": "t2"}
	]
}`

func keptFields(out any, path ...string) (any, bool) {
	cur := out
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func TestStripWildcardKeepsEverything(t *testing.T) {
	doc := parseDoc(t, sessionDoc)
	out, res := Strip(doc, []string{"*"})

	if _, ok := keptFields(out, "tool_usages"); !ok {
		t.Error("wildcard dropped tool_usages")
	}
	if len(res.Stripped) != 0 {
		t.Errorf("wildcard stripped paths: %v", res.Stripped)
	}
	if res.Source != "cc_transcript" {
		t.Errorf("wrong source: %s", res.Source)
	}
}

func TestStripMetadataOnly(t *testing.T) {
	doc := parseDoc(t, sessionDoc)
	out, res := Strip(doc, []string{"source", "session", "tool_usages[].tool_name"})

	if _, ok := keptFields(out, "messages"); ok {
		t.Error("messages should be stripped")
	}
	// session is a kept prefix; all its children survive.
	if _, ok := keptFields(out, "session", "total_input_tokens"); !ok {
		t.Error("session.total_input_tokens should be kept")
	}

	tus, ok := keptFields(out, "tool_usages")
	if !ok {
		t.Fatal("tool_usages[].tool_name should keep the array")
	}
	elems := tus.([]any)
	if len(elems) != 2 {
		t.Fatalf("expected 2 pruned elements, got %d", len(elems))
	}
	first := elems[0].(map[string]any)
	if _, ok := first["output"]; ok {
		t.Error("tool_usages[].output should be stripped")
	}
	if first["tool_name"] != "Bash" {
		t.Errorf("tool_name lost: %v", first)
	}

	if !contains(res.Stripped, "messages") {
		t.Errorf("messages missing from stripped set: %v", res.Stripped)
	}
	if !contains(res.Stripped, "tool_usages[].output") {
		t.Errorf("tool_usages[].output missing from stripped set: %v", res.Stripped)
	}
	if !contains(res.Kept, "session.start_time") {
		t.Errorf("session.start_time missing from kept set: %v", res.Kept)
	}
}

func TestStripExactAndDescendantMatch(t *testing.T) {
	doc := parseDoc(t, `{"a":{"b":{"c":1},"d":2},"e":3}`)
	out, res := Strip(doc, []string{"a.b"})

	if _, ok := keptFields(out, "a", "b", "c"); !ok {
		t.Error("a.b.c is a descendant of a.b and should survive")
	}
	if _, ok := keptFields(out, "a", "d"); ok {
		t.Error("a.d should be stripped")
	}
	if _, ok := keptFields(out, "e"); ok {
		t.Error("e should be stripped")
	}
	if !contains(res.Kept, "a") || !contains(res.Kept, "a.b.c") {
		t.Errorf("kept set incomplete: %v", res.Kept)
	}
}

func TestStripNormalizedArrayMatch(t *testing.T) {
	// Profile pattern without [] still matches fields discovered under
	// array descent: "tool_usages.tool_name" keeps "tool_usages[].tool_name".
	doc := parseDoc(t, sessionDoc)
	out, _ := Strip(doc, []string{"tool_usages.tool_name"})

	tus, ok := keptFields(out, "tool_usages")
	if !ok {
		t.Fatal("tool_usages missing")
	}
	first := tus.([]any)[0].(map[string]any)
	if first["tool_name"] != "Bash" {
		t.Errorf("tool_name lost: %v", first)
	}
}

func TestStripEmptyProfileStripsAll(t *testing.T) {
	doc := parseDoc(t, sessionDoc)
	out, res := Strip(doc, nil)

	m, ok := out.(map[string]any)
	if !ok || len(m) != 0 {
		t.Errorf("expected empty document, got %v", out)
	}
	if len(res.Kept) != 0 {
		t.Errorf("nothing should be kept: %v", res.Kept)
	}
	if !contains(res.Stripped, "session.cwd") {
		t.Errorf("stripped set should include leaf paths: %v", res.Stripped)
	}
}

func TestStripUnknownSource(t *testing.T) {
	doc := parseDoc(t, `{"x":1}`)
	_, res := Strip(doc, []string{"*"})
	if res.Source != "unknown" {
		t.Errorf("expected unknown source, got %s", res.Source)
	}
}

func TestStripPresentIsUnion(t *testing.T) {
	doc := parseDoc(t, `{"a":1,"b":2}`)
	_, res := Strip(doc, []string{"a"})
	present := res.Present()
	if len(present) != 2 || !contains(present, "a") || !contains(present, "b") {
		t.Errorf("present should union kept and stripped: %v", present)
	}
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
