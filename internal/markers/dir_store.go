package markers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// dirStore keeps one marker file per (source, fingerprint) pair. The file
// name is the dedup key; the content is the serialized item payload and is
// advisory only, never re-parsed.
type dirStore struct {
	dir string
	ttl time.Duration
}

// openDir initializes the marker directory and sweeps stale markers once.
func openDir(dir string, opts Options) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create marker directory: %w", err)
	}

	store := &dirStore{dir: dir, ttl: opts.TTL}
	if err := store.sweepExpired(time.Now()); err != nil {
		return nil, err
	}
	return store, nil
}

func (d *dirStore) Close() error { return nil }

// Seen reports whether a marker file exists for the pair.
func (d *dirStore) Seen(source, fingerprint string) (bool, error) {
	path, err := d.markerPath(source, fingerprint)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat marker: %w", err)
}

// Mark creates the marker file. An already-existing marker is not an error;
// O_EXCL creation makes a racing second writer lose deterministically.
func (d *dirStore) Mark(source, fingerprint string, payload []byte) error {
	path, err := d.markerPath(source, fingerprint)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("create marker: %w", err)
	}
	defer file.Close()

	if len(payload) > 0 {
		if _, err := file.Write(payload); err != nil {
			return fmt.Errorf("write marker payload: %w", err)
		}
	}
	return nil
}

// markerPath builds the marker file path. Source ids are sanitized at
// registry load and fingerprints are hex, but reject separators anyway so a
// bad caller cannot escape the marker directory.
func (d *dirStore) markerPath(source, fingerprint string) (string, error) {
	if source == "" || fingerprint == "" {
		return "", fmt.Errorf("marker key requires source and fingerprint")
	}
	name := source + "-" + fingerprint
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid marker key %q", name)
	}
	return filepath.Join(d.dir, name), nil
}

// sweepExpired removes marker files older than the TTL. Runs at open only;
// marker churn is low enough that a per-start sweep keeps the directory
// bounded.
func (d *dirStore) sweepExpired(now time.Time) error {
	if d.ttl <= 0 {
		return nil
	}

	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("read marker directory: %w", err)
	}

	cutoff := now.Add(-d.ttl)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(d.dir, entry.Name()))
		}
	}
	return nil
}
