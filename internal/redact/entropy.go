package redact

import "math"

// Entropy detection constants. Threshold and minimum length follow the
// calibrated defaults used by the pii-shield scanner lineage rather than
// invented values; raise the threshold if warning noise dominates.
const (
	entropyThreshold = 3.6
	entropyMinLen    = 20
)

// entropyPrefix is the placeholder prefix for high-entropy tokens.
const entropyPrefix = "ENTROPY"

// entropyRuleName identifies the detector in events and reports.
const entropyRuleName = "high-entropy"

// isTokenByte reports whether b can appear inside a candidate token:
// base64/base62 material plus the separators key formats embed.
func isTokenByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '+' || b == '/' || b == '=' || b == '_' || b == '-':
		return true
	}
	return false
}

// shannonEntropy returns bits per character of s.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	var freq [256]int
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}
	n := float64(len(s))
	var h float64
	for _, c := range freq {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

// scanEntropy finds high-entropy candidate tokens in text and returns
// their spans as matches tagged CategoryHighEntropy.
func scanEntropy(text string) []match {
	var out []match
	i := 0
	for i < len(text) {
		if !isTokenByte(text[i]) {
			i++
			continue
		}
		j := i
		for j < len(text) && isTokenByte(text[j]) {
			j++
		}
		if j-i >= entropyMinLen {
			tok := text[i:j]
			if shannonEntropy(tok) > entropyThreshold {
				out = append(out, match{
					start:    i,
					end:      j,
					rule:     entropyRuleName,
					category: CategoryHighEntropy,
					prefix:   entropyPrefix,
				})
			}
		}
		i = j
	}
	return out
}
