package service

import (
	"sync/atomic"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-license-rag-ollama/internal/index"
)

// ActiveState is the immutable (snapshot, index) pair queries run against.
// A rebuild constructs a brand-new pair off to the side and publishes it
// atomically; readers mid-query keep the reference they already acquired.
type ActiveState struct {
	Snapshot *domain.DatasetSnapshot
	Index    *index.Index
}

// StateHolder publishes and hands out the active state. Acquire once per
// query, never retain across queries.
type StateHolder struct {
	current atomic.Pointer[ActiveState]
}

// NewStateHolder creates an empty holder; Acquire returns nil until the first
// Publish.
func NewStateHolder() *StateHolder {
	return &StateHolder{}
}

// Acquire returns the current state, or nil if no index has ever been built.
func (h *StateHolder) Acquire() *ActiveState {
	return h.current.Load()
}

// Publish atomically swaps in a fresh state.
func (h *StateHolder) Publish(state *ActiveState) {
	h.current.Store(state)
}

// Ready reports whether an index is available for queries.
func (h *StateHolder) Ready() bool {
	return h.current.Load() != nil
}

// IndexedRecords returns the active index size, or 0 when not ready.
func (h *StateHolder) IndexedRecords() int {
	if s := h.current.Load(); s != nil {
		return s.Index.Len()
	}
	return 0
}
