package redact

import "fmt"

// CheckResidue re-scans already-redacted text with the high-confidence
// subset of the builtin rules. Any hit means the primary pass missed
// something, such as a format the enabled config did not cover. The
// permissive entropy detector is excluded to avoid warning storms.
//
// Warnings name the rule and match sizes, never the matched content:
// residue output is shown to users verbatim and must not leak what it
// found.
func CheckResidue(lib *Library, redacted string) []string {
	var warnings []string
	for _, r := range lib.Rules() {
		if !r.Residue {
			continue
		}
		spans := scanRule(redacted, r)
		if len(spans) == 0 {
			continue
		}
		total := 0
		for _, s := range spans {
			total += s.end - s.start
		}
		warnings = append(warnings, fmt.Sprintf(
			"residue: rule %s matched %d time(s), %d chars survived redaction",
			r.Name, len(spans), total))
	}
	return warnings
}
