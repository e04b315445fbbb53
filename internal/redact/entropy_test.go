package redact

import (
	"math"
	"testing"
)

func TestShannonEntropy(t *testing.T) {
	if h := shannonEntropy(""); h != 0 {
		t.Errorf("empty string entropy = %f, want 0", h)
	}
	if h := shannonEntropy("aaaaaaaaaaaaaaaaaaaa"); h != 0 {
		t.Errorf("uniform string entropy = %f, want 0", h)
	}
	// "abcd" repeated: exactly 2 bits per char.
	if h := shannonEntropy("abcdabcdabcdabcdabcd"); math.Abs(h-2.0) > 1e-9 {
		t.Errorf("abcd-cycle entropy = %f, want 2.0", h)
	}
}

func TestScanEntropyFlagsRandomToken(t *testing.T) {
	text := "deploy key is 9xK2mQ7vLpR4tWz8NcJ3hF6bYd writes to log"
	ms := scanEntropy(text)
	if len(ms) != 1 {
		t.Fatalf("expected 1 match, got %d: %v", len(ms), ms)
	}
	if got := text[ms[0].start:ms[0].end]; got != "9xK2mQ7vLpR4tWz8NcJ3hF6bYd" {
		t.Errorf("wrong span: %q", got)
	}
	if ms[0].category != CategoryHighEntropy {
		t.Errorf("wrong category: %s", ms[0].category)
	}
}

func TestScanEntropySkipsShortAndLowEntropy(t *testing.T) {
	// Below minimum length.
	if ms := scanEntropy("short 9xK2mQ7vLp end"); len(ms) != 0 {
		t.Errorf("short token flagged: %v", ms)
	}
	// Long but repetitive.
	if ms := scanEntropy("padding aaaaaaaaaaaaaaaaaaaaaaaaaaaa done"); len(ms) != 0 {
		t.Errorf("repetitive token flagged: %v", ms)
	}
	// Ordinary English words do not form qualifying runs.
	if ms := scanEntropy("the quick brown fox jumps over the lazy dog"); len(ms) != 0 {
		t.Errorf("prose flagged: %v", ms)
	}
}

func TestScanEntropyStopsAtQuotes(t *testing.T) {
	text := `{"k":"9xK2mQ7vLpR4tWz8NcJ3hF6bYd"}`
	ms := scanEntropy(text)
	if len(ms) != 1 {
		t.Fatalf("expected 1 match, got %d", len(ms))
	}
	if got := text[ms[0].start:ms[0].end]; got != "9xK2mQ7vLpR4tWz8NcJ3hF6bYd" {
		t.Errorf("span crossed quote boundary: %q", got)
	}
}
