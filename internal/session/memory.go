// ABOUTME: In-memory session backend for tests and ephemeral runs
// ABOUTME: Same semantics as the charm client without touching disk or network
package session

import "sync"

// Memory is a map-backed Backend. Safe for concurrent use.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte

	// FailReads forces Get to return an error, simulating an unavailable
	// store in tests.
	FailReads error
}

// NewMemory creates an empty in-memory backend
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailReads != nil {
		return nil, m.FailReads
	}
	data, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	// Copy so callers cannot mutate stored bytes
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
