package markers

import (
	"fmt"
	"strings"
	"time"
)

// Package markers provides the durable dedup marker store. A marker proves a
// (source, fingerprint) pair has already been announced; existence check and
// insert are the only operations.

// Store tracks announced item fingerprints per source.
//
// Precondition: at most one writer per source at a time. The poll scheduler
// guarantees this by never overlapping cycles for the same source, so
// implementations do not need to make Seen-then-Mark atomic across sources.
// Any alternate caller must provide the same guarantee.
type Store interface {
	Seen(source, fingerprint string) (bool, error)
	Mark(source, fingerprint string, payload []byte) error
	Close() error
}

// Options controls retention characteristics for concrete store implementations.
// A zero TTL disables expiry entirely.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

const defaultCleanupInterval = 12 * time.Hour

// NewStore creates the configured marker store backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}

	switch typ {
	case "", "dir":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("dir marker store requires a directory path")
		}
		return openDir(path, opts)
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt marker store requires a path")
		}
		return openBolt(path, opts)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported marker store type %q", typ)
	}
}
