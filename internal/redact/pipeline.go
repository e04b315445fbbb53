package redact

import (
	"fmt"
	"sort"
	"strings"
)

// Event records one placeholder substitution.
type Event struct {
	Category    Category `json:"category"`
	Rule        string   `json:"rule"`
	Placeholder string   `json:"placeholder"`
	OriginalLen int      `json:"original_length"`
}

// match is a candidate span before overlap resolution.
type match struct {
	start, end int
	rule       string
	category   Category
	prefix     string
}

// Pipeline applies a rule library under a fixed config. It is immutable
// after construction and safe for concurrent Detect calls; only the
// per-call Assigner carries state.
type Pipeline struct {
	cfg    Config
	rules  []Rule
	custom []Rule
}

// NewPipeline compiles cfg's custom patterns against the given library.
// An invalid custom regex fails construction: it would change the
// semantics of every session in the call, so it is never skipped.
func NewPipeline(lib *Library, cfg Config) (*Pipeline, error) {
	custom, err := cfg.compileCustom()
	if err != nil {
		return nil, fmt.Errorf("compile custom patterns: %w", err)
	}
	return &Pipeline{cfg: cfg, rules: lib.Rules(), custom: custom}, nil
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Detect scans text with every enabled rule, resolves overlapping spans,
// and substitutes placeholders from asn left to right. Output is
// byte-identical across runs for fixed inputs: no randomness, no clock.
func (p *Pipeline) Detect(text string, asn *Assigner) (string, []Event) {
	matches := p.collect(text)
	matches = resolveOverlaps(matches)
	if len(matches) == 0 {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))
	events := make([]Event, 0, len(matches))
	prev := 0
	for _, m := range matches {
		raw := text[m.start:m.end]
		tok := asn.Assign(m.category, m.prefix, raw)
		b.WriteString(text[prev:m.start])
		b.WriteString(tok)
		prev = m.end
		events = append(events, Event{
			Category:    m.category,
			Rule:        m.rule,
			Placeholder: tok,
			OriginalLen: len(raw),
		})
	}
	b.WriteString(text[prev:])
	return b.String(), events
}

// collect gathers spans from all enabled builtin rules, the entropy
// detector, and custom rules.
func (p *Pipeline) collect(text string) []match {
	var out []match
	for _, r := range p.rules {
		if !p.cfg.enabled(r.Category) {
			continue
		}
		out = append(out, scanRule(text, r)...)
	}
	if p.cfg.EnableHighEntropy {
		out = append(out, scanEntropy(text)...)
	}
	for _, r := range p.custom {
		out = append(out, scanRule(text, r)...)
	}
	return out
}

// scanRule finds all spans of one rule. When the rule names a capture
// group, the group's span is the redaction target.
func scanRule(text string, r Rule) []match {
	var out []match
	if r.Group > 0 {
		for _, sub := range r.Pattern.FindAllStringSubmatchIndex(text, -1) {
			gi := 2 * r.Group
			if gi+1 >= len(sub) || sub[gi] < 0 {
				continue
			}
			out = append(out, newMatch(text, r, sub[gi], sub[gi+1]))
		}
		return out
	}
	for _, loc := range r.Pattern.FindAllStringIndex(text, -1) {
		if r.Name == "ipv4" && safeIPs[text[loc[0]:loc[1]]] {
			continue
		}
		out = append(out, newMatch(text, r, loc[0], loc[1]))
	}
	return out
}

// newMatch trims trailing punctuation the way greedy patterns tend to
// overshoot ("/home/u/x." at sentence end).
func newMatch(text string, r Rule, start, end int) match {
	for end > start && strings.ContainsRune(".,;:)]}", rune(text[end-1])) {
		end--
	}
	return match{start: start, end: end, rule: r.Name, category: r.Category, prefix: r.Prefix}
}

// resolveOverlaps sorts matches by (start asc, length desc) and settles
// each overlapping pair: higher-priority category wins; within a
// category the longer span wins; ties keep the incumbent. The result is
// a non-overlapping set sorted by start.
func resolveOverlaps(ms []match) []match {
	if len(ms) == 0 {
		return ms
	}
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].start != ms[j].start {
			return ms[i].start < ms[j].start
		}
		li, lj := ms[i].end-ms[i].start, ms[j].end-ms[j].start
		if li != lj {
			return li > lj
		}
		if ms[i].category != ms[j].category {
			return ms[i].category.Rank() < ms[j].category.Rank()
		}
		return ms[i].rule < ms[j].rule
	})

	var kept []match
	for _, m := range ms {
		overlap := overlapping(kept, m)
		if len(overlap) == 0 {
			kept = append(kept, m)
			continue
		}
		wins := true
		for _, idx := range overlap {
			if !beats(m, kept[idx]) {
				wins = false
				break
			}
		}
		if !wins {
			continue
		}
		kept = remove(kept, overlap)
		kept = append(kept, m)
		sort.Slice(kept, func(i, j int) bool { return kept[i].start < kept[j].start })
	}
	return kept
}

// overlapping returns indices of kept matches whose span intersects m.
func overlapping(kept []match, m match) []int {
	var out []int
	for i, k := range kept {
		if k.start < m.end && m.start < k.end {
			out = append(out, i)
		}
	}
	return out
}

// beats reports whether challenger c displaces incumbent k.
func beats(c, k match) bool {
	if c.category.Rank() != k.category.Rank() {
		return c.category.Rank() < k.category.Rank()
	}
	return c.end-c.start > k.end-k.start
}

// remove drops the given sorted indices from ms.
func remove(ms []match, idx []int) []match {
	out := ms[:0]
	j := 0
	for i, m := range ms {
		if j < len(idx) && idx[j] == i {
			j++
			continue
		}
		out = append(out, m)
	}
	return out
}
