// Package strip reduces a parsed session document to the fields a
// sensitivity profile retains. Stripping is structural and irreversible:
// removed fields are deleted, not masked. Masking is internal/redact's
// job and happens after this pass.
package strip

import (
	"sort"
	"strings"
)

// Result reports which discovered field paths survived the pass.
type Result struct {
	// Source is the document's originating source type, from its
	// top-level "source" (or "source_type") field, "unknown" otherwise.
	Source   string
	Kept     []string
	Stripped []string
}

// Present returns every discovered field path, kept or not.
func (r *Result) Present() []string {
	out := make([]string, 0, len(r.Kept)+len(r.Stripped))
	out = append(out, r.Kept...)
	out = append(out, r.Stripped...)
	sort.Strings(out)
	return out
}

// Strip walks doc and returns a copy containing only fields matched by
// keptFields, plus a report of kept and stripped paths. Field paths use
// dot notation for object keys and a "[]" suffix for array descent
// ("tool_usages[].tool_name"). The "*" sentinel retains everything.
//
// A field is kept when its path exactly matches a pattern, or when its
// normalized path (with "[]" stripped) equals or dot-descends from a
// normalized pattern: "session" keeps "session.start_time".
func Strip(doc any, keptFields []string) (any, *Result) {
	w := &walker{
		kept:    keptFields,
		keptSet: make(map[string]bool),
		gone:    make(map[string]bool),
	}
	out, ok := w.walk(doc, "")
	if !ok {
		out = map[string]any{}
	}
	return out, w.result(doc)
}

type walker struct {
	kept    []string
	keptSet map[string]bool
	gone    map[string]bool
}

func (w *walker) result(doc any) *Result {
	r := &Result{Source: sourceType(doc)}
	for p := range w.keptSet {
		r.Kept = append(r.Kept, p)
	}
	for p := range w.gone {
		// A path kept in one array element wins over the same path
		// stripped in a sibling element.
		if !w.keptSet[p] {
			r.Stripped = append(r.Stripped, p)
		}
	}
	sort.Strings(r.Kept)
	sort.Strings(r.Stripped)
	return r
}

// walk returns the pruned value and whether anything survived.
func (w *walker) walk(v any, path string) (any, bool) {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any)
		for k, child := range val {
			cp := joinPath(path, k)
			if w.matches(cp) {
				w.record(child, cp, true)
				out[k] = child
				continue
			}
			pruned, ok := w.walk(child, cp)
			if ok {
				w.keptSet[cp] = true
				out[k] = pruned
			} else {
				w.record(child, cp, false)
			}
		}
		return out, len(out) > 0
	case []any:
		ep := path + "[]"
		out := make([]any, 0, len(val))
		survived := false
		for _, elem := range val {
			pruned, ok := w.walk(elem, ep)
			if ok {
				out = append(out, pruned)
				survived = true
			}
		}
		return out, survived
	default:
		return v, path != "" && w.matches(path)
	}
}

// record marks every field under v, at and below path, kept or stripped.
func (w *walker) record(v any, path string, kept bool) {
	if path != "" {
		if kept {
			w.keptSet[path] = true
		} else {
			w.gone[path] = true
		}
	}
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			w.record(child, joinPath(path, k), kept)
		}
	case []any:
		for _, elem := range val {
			w.record(elem, path+"[]", kept)
		}
	}
}

func (w *walker) matches(path string) bool {
	np := normalize(path)
	for _, k := range w.kept {
		if k == "*" || k == path {
			return true
		}
		nk := normalize(k)
		if np == nk || strings.HasPrefix(np, nk+".") {
			return true
		}
	}
	return false
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// normalize strips array markers so "tool_usages[].tool_name" compares
// as "tool_usages.tool_name".
func normalize(p string) string {
	return strings.ReplaceAll(p, "[]", "")
}

func sourceType(doc any) string {
	m, ok := doc.(map[string]any)
	if !ok {
		return "unknown"
	}
	if s, ok := m["source"].(string); ok && s != "" {
		return s
	}
	if s, ok := m["source_type"].(string); ok && s != "" {
		return s
	}
	return "unknown"
}
