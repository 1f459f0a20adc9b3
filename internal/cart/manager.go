package cart

import (
	"context"
	"log"
	"sync"
)

// Manager hands out one engine per cart slot for the life of the process.
// The first access hydrates the engine from the store; later accesses get
// the same instance, so no two views ever hold diverging cart state for the
// same session.
type Manager struct {
	store  Store
	logger *log.Logger

	mu      sync.Mutex
	engines map[string]*Engine
}

func NewManager(store Store, logger *log.Logger) *Manager {
	return &Manager{
		store:   store,
		logger:  logger,
		engines: make(map[string]*Engine),
	}
}

// Get returns the engine for the slot, hydrating it on first access. A load
// failure degrades to an empty cart; it must never block a session from
// starting.
func (m *Manager) Get(ctx context.Context, slot string) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.engines[slot]; ok {
		return e
	}

	items, err := m.store.Load(ctx, slot)
	if err != nil {
		m.logger.Printf("cart %q: load failed, starting empty: %v", slot, err)
		items = nil
	}

	e := NewEngine(slot, m.store, m.logger)
	e.items = items
	m.engines[slot] = e
	return e
}
