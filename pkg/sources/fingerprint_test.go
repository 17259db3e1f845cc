package sources

import (
	"errors"
	"testing"
)

func TestFingerprintFirstNonEmptyWins(t *testing.T) {
	fromPrimary, err := Fingerprint("2026-02-01T10:00:00Z", "fallback", "guid-1")
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	direct, err := Fingerprint("2026-02-01T10:00:00Z")
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if fromPrimary != direct {
		t.Fatalf("expected primary candidate to win, got %q vs %q", fromPrimary, direct)
	}

	fromFallback, err := Fingerprint("", "  ", "guid-1")
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	guidOnly, err := Fingerprint("guid-1")
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if fromFallback != guidOnly {
		t.Fatalf("expected blank candidates skipped, got %q vs %q", fromFallback, guidOnly)
	}
}

func TestFingerprintStability(t *testing.T) {
	a, err := Fingerprint("", "2026-02-01", "guid-1")
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	b, err := Fingerprint("", "2026-02-01", "guid-1")
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if a != b {
		t.Fatalf("identical candidates produced different fingerprints: %q vs %q", a, b)
	}
}

func TestFingerprintDistinctCandidates(t *testing.T) {
	a, err := Fingerprint("guid-1")
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	b, err := Fingerprint("guid-2")
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if a == b {
		t.Fatalf("distinct candidates collided: %q", a)
	}
}

func TestFingerprintAllEmpty(t *testing.T) {
	if _, err := Fingerprint("", "   ", ""); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	if _, err := Fingerprint(); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates for empty list, got %v", err)
	}
}

func TestFingerprintIsMarkerSafe(t *testing.T) {
	fp, err := Fingerprint("https://status.aws.amazon.com/#ec2/../weird path")
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	for _, r := range fp {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			t.Fatalf("fingerprint %q contains non-hex rune %q", fp, r)
		}
	}
}
