// Package store provides the snapshot stores the cart engine persists
// through: an in-memory map, a JSON file per slot, and a Postgres-backed
// store for deployments that share carts across instances.
package store

import (
	"context"
	"sync"

	"github.com/danielavelez12/goupromo/internal/cart"
)

// MemoryStore keeps snapshots in a process-local map. Default backend for
// development and tests; carts vanish with the process, which matches the
// session-scoped semantics of the original storefront.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]cart.LineItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]cart.LineItem)}
}

func (s *MemoryStore) Load(ctx context.Context, slot string) ([]cart.LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.slots[slot]), nil
}

func (s *MemoryStore) Save(ctx context.Context, slot string, items []cart.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = cloneItems(items)
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, slot)
	return nil
}

func cloneItems(items []cart.LineItem) []cart.LineItem {
	if items == nil {
		return nil
	}
	out := make([]cart.LineItem, len(items))
	copy(out, items)
	return out
}
