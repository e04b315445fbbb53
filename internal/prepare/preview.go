package prepare

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"

	"github.com/gowebpki/jcs"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// canonicalDigest returns the sha256 hex digest of the RFC 8785
// canonical form of JSON input.
func canonicalDigest(input []byte) (string, error) {
	canonical, err := jcs.Transform(input)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// preview truncates s to at most n bytes without splitting a rune.
func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// similarity scores how much of the original text the redacted version
// preserves, 0 to 1. Computed on the previews so pathological transcript
// sizes cannot stall preparation.
func similarity(original, redacted string) float64 {
	if original == "" && redacted == "" {
		return 1
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, redacted, false)
	dist := dmp.DiffLevenshtein(diffs)
	maxLen := len(original)
	if len(redacted) > maxLen {
		maxLen = len(redacted)
	}
	if maxLen == 0 {
		return 1
	}
	return 1.0 - float64(dist)/float64(maxLen)
}
