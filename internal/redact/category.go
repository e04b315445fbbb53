// Package redact detects sensitive content in transcript text and replaces
// it with stable, category-scoped placeholders. It is the content half of
// session preparation; structural reduction lives in internal/strip.
package redact

// Category identifies the kind of sensitive data a rule detects.
type Category string

const (
	CategorySecrets     Category = "secrets"
	CategoryPII         Category = "pii"
	CategoryPaths       Category = "paths"
	CategoryHighEntropy Category = "high_entropy"
	CategoryCustom      Category = "custom"
)

// categoryRank orders categories for overlap resolution. Lower rank wins:
// a full JWT must not be partially masked by a generic high-entropy hit.
var categoryRank = map[Category]int{
	CategorySecrets:     0,
	CategoryPII:         1,
	CategoryPaths:       2,
	CategoryHighEntropy: 3,
	CategoryCustom:      4,
}

// Rank returns the overlap priority of the category. Lower is stronger.
func (c Category) Rank() int {
	r, ok := categoryRank[c]
	if !ok {
		return len(categoryRank)
	}
	return r
}

// Categories lists all known categories in priority order.
func Categories() []Category {
	return []Category{
		CategorySecrets,
		CategoryPII,
		CategoryPaths,
		CategoryHighEntropy,
		CategoryCustom,
	}
}
