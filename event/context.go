package event

import "sync"

// Context is constructed once per block and shared, read-only for its
// metadata and read/write for its pipeline scratchpad, among every handler
// invoked while that block is processed. It is discarded when the block's
// processing completes; scratchpad contents never leak between blocks.
type Context struct {
	// BlockNumber is the block this context was created for.
	BlockNumber uint64

	// BlockHash is the hash of the block this context was created for.
	BlockHash Hash

	mu         sync.Mutex
	scratchpad map[string]any
}

// NewContext creates an empty per-block context.
func NewContext(blockNumber uint64, blockHash Hash) *Context {
	return &Context{
		BlockNumber: blockNumber,
		BlockHash:   blockHash,
		scratchpad:  make(map[string]any),
	}
}

// SetPipelineData publishes a typed value under key for later handlers in
// the same block's pipeline to read. Keys are shared across every handler
// processing this block; a later write with the same key overwrites an
// earlier one (last-write-wins).
//
// Concurrent writes to the same key from sibling handlers inside a parallel
// HandlerGroup race and are not defined by this package — callers running
// in parallel mode must partition keys across siblings.
func (c *Context) SetPipelineData(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scratchpad[key] = value
}

// GetPipelineData retrieves a value published via SetPipelineData and
// type-asserts it to T. It fails soft: if the key is absent or the stored
// value is not of type T, ok is false and value is the zero value of T.
func GetPipelineData[T any](c *Context, key string) (value T, ok bool) {
	c.mu.Lock()
	raw, present := c.scratchpad[key]
	c.mu.Unlock()
	if !present {
		return value, false
	}
	typed, matches := raw.(T)
	if !matches {
		return value, false
	}
	return typed, true
}
