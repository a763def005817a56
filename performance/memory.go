// Package performance tracks memory reserved for vector space copies.
package performance

import (
	"sync"

	"github.com/YuminosukeSato/debias/pkg/errors"
)

// Float64Bytes is the storage size of one vector component.
const Float64Bytes = 8

// VectorSpaceBytes estimates the dense storage needed for words × dim values.
func VectorSpaceBytes(words, dim int) int64 {
	return int64(words) * int64(dim) * Float64Bytes
}

// WordIndexBytes bounds the per-word bookkeeping of an in-memory space: the
// word list entry and its slot in the word to row index.
const WordIndexBytes = 96

// CloneBytes estimates what a deep copy of a words × dim space allocates:
// the vectors plus the vocabulary index.
func CloneBytes(words, dim int) int64 {
	return VectorSpaceBytes(words, dim) + int64(words)*WordIndexBytes
}

// MemoryBudget tracks bytes reserved by vector space copies against a fixed cap.
// The zero value is unusable; use NewMemoryBudget.
type MemoryBudget struct {
	maxMemory   int64
	currentUsed int64
	mu          sync.Mutex
}

// NewMemoryBudget creates a budget of maxMemoryMB mebibytes.
func NewMemoryBudget(maxMemoryMB int64) *MemoryBudget {
	return NewMemoryBudgetBytes(maxMemoryMB * 1024 * 1024)
}

// NewMemoryBudgetBytes creates a budget of maxBytes bytes.
func NewMemoryBudgetBytes(maxBytes int64) *MemoryBudget {
	return &MemoryBudget{maxMemory: maxBytes}
}

// CanAllocate reports whether bytes more fit in the budget.
func (m *MemoryBudget) CanAllocate(bytes int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentUsed+bytes <= m.maxMemory
}

// Reserve records bytes as in use, or fails with an InsufficientMemoryError
// naming op when the cap would be exceeded.
func (m *MemoryBudget) Reserve(op string, bytes int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.currentUsed+bytes > m.maxMemory {
		return errors.NewInsufficientMemoryError(op, bytes, m.maxMemory-m.currentUsed, nil)
	}
	m.currentUsed += bytes
	return nil
}

// Release returns bytes to the budget, e.g. once a copied vector space is dropped.
func (m *MemoryBudget) Release(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.currentUsed -= bytes
	if m.currentUsed < 0 {
		m.currentUsed = 0
	}
}

// Usage returns the reserved bytes and the cap.
func (m *MemoryBudget) Usage() (used, max int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentUsed, m.maxMemory
}
