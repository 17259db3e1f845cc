package markers

import "sync"

// Memory is a map-backed Store for tests and throwaway runs. Nothing
// survives a restart.
type Memory struct {
	mu   sync.Mutex
	seen map[string][]byte
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{seen: make(map[string][]byte)}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Seen(source, fingerprint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[source+"/"+fingerprint]
	return ok, nil
}

func (m *Memory) Mark(source, fingerprint string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[source+"/"+fingerprint] = payload
	return nil
}

// Len reports the number of stored markers.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}
