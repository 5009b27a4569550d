package checkpoint

import (
	"context"
	"sync"
)

// Memory is an in-memory Store. Progress is lost on restart; suitable for
// development, tests, and dry runs.
type Memory struct {
	mu    sync.RWMutex
	block uint64
	set   bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns the last block passed to Save, or ok=false if Save has
// never been called.
func (m *Memory) Load(context.Context) (uint64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.block, m.set, nil
}

// Save records block as the new watermark.
func (m *Memory) Save(_ context.Context, block uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block = block
	m.set = true
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
