package redact

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Assigner maps detected raw values to placeholders. The same raw value
// always yields the same placeholder within one assigner; counters are
// scoped per category so suffixes never cross categories. Lookup is by
// exact string identity, no normalization.
//
// An assigner is scoped to one preparation run (one session by default,
// one batch when the caller opts into shared placeholders). Not
// goroutine-safe; scope it so that it never needs to be.
type Assigner struct {
	tokens   map[assignKey]string
	counters map[Category]int
}

type assignKey struct {
	cat Category
	raw string
}

// NewAssigner creates an empty assigner.
func NewAssigner() *Assigner {
	return &Assigner{
		tokens:   make(map[assignKey]string),
		counters: make(map[Category]int),
	}
}

// Assign returns the placeholder for a raw value, allocating the next
// category-scoped suffix on first sight: "<API_KEY_1>", "<EMAIL_2>", …
func (a *Assigner) Assign(cat Category, prefix, raw string) string {
	k := assignKey{cat: cat, raw: raw}
	if tok, ok := a.tokens[k]; ok {
		return tok
	}
	a.counters[cat]++
	tok := fmt.Sprintf("<%s_%d>", prefix, a.counters[cat])
	a.tokens[k] = tok
	return tok
}

// Len returns the number of distinct raw values assigned.
func (a *Assigner) Len() int {
	return len(a.tokens)
}

// Mapping returns placeholder → category pairs sorted by placeholder.
// Raw values are deliberately not exposed here; audit output must not
// round-trip the sensitive content it reports on.
func (a *Assigner) Mapping() []AssignedToken {
	out := make([]AssignedToken, 0, len(a.tokens))
	for k, tok := range a.tokens {
		out = append(out, AssignedToken{
			Placeholder: tok,
			Category:    k.cat,
			OriginalLen: len(k.raw),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Placeholder < out[j].Placeholder
	})
	return out
}

// AssignedToken describes one allocated placeholder without its raw value.
type AssignedToken struct {
	Placeholder string   `json:"placeholder"`
	Category    Category `json:"category"`
	OriginalLen int      `json:"original_length"`
}

// MarshalJSON serializes the assignment table for audit trails.
func (a *Assigner) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Mapping())
}
