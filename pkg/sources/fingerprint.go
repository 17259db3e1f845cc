package sources

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"errors"
	"strings"
)

// ErrNoCandidates is returned when every fingerprint candidate is empty.
// Callers must treat the item as malformed and skip it.
var ErrNoCandidates = errors.New("no usable fingerprint candidate")

// Fingerprint derives the dedup key for an item from a priority-ordered
// candidate list: the first present non-empty candidate wins. The value is
// sha1-hex encoded so it is stable across restarts and safe as a marker
// file name component.
func Fingerprint(candidates ...string) (string, error) {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		sum := sha1.Sum([]byte(c))
		return hex.EncodeToString(sum[:]), nil
	}
	return "", ErrNoCandidates
}
