package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrInvalidQuantity is returned when a caller supplies a quantity the cart
// cannot represent: negative on update, or below one on add.
var ErrInvalidQuantity = errors.New("invalid quantity")

// Store persists cart snapshots to a named slot. Load must degrade to an
// empty item list when the slot is missing or its payload cannot be parsed.
type Store interface {
	Load(ctx context.Context, slot string) ([]LineItem, error)
	Save(ctx context.Context, slot string, items []LineItem) error
	Clear(ctx context.Context, slot string) error
}

// Engine owns the authoritative item list for a single cart slot and is the
// only legal mutation surface for it. Every mutation persists the new
// snapshot through the store and then notifies subscribers. The in-memory
// state stays authoritative even when a persist fails; the store error is
// returned to the caller once and is not fatal.
type Engine struct {
	slot   string
	store  Store
	logger *log.Logger

	mu      sync.Mutex
	items   []LineItem
	subs    map[int]func(Snapshot)
	nextSub int

	// commitMu is acquired before mu is released so concurrent mutators
	// persist and notify in mutation order; a later snapshot can never be
	// overwritten by an earlier one.
	commitMu sync.Mutex
}

func NewEngine(slot string, store Store, logger *log.Logger) *Engine {
	return &Engine{
		slot:   slot,
		store:  store,
		logger: logger,
		subs:   make(map[int]func(Snapshot)),
	}
}

// AddItem merges the given item into the cart. An entry with the same item
// number absorbs the added quantity and keeps its own metadata; otherwise
// the item is appended as-is.
func (e *Engine) AddItem(ctx context.Context, item LineItem) error {
	if item.Quantity < 1 {
		return fmt.Errorf("add %q: %w", item.ItemID, ErrInvalidQuantity)
	}

	e.mu.Lock()
	merged := false
	for i := range e.items {
		if e.items[i].ItemID == item.ItemID {
			e.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		e.items = append(e.items, item)
	}
	return e.commitLocked(ctx, false)
}

// UpdateQuantity sets the named item's quantity. Zero removes the entry.
// Updating an absent item never creates one; only AddItem does.
func (e *Engine) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("update %q: %w", itemID, ErrInvalidQuantity)
	}

	e.mu.Lock()
	idx := -1
	for i := range e.items {
		if e.items[i].ItemID == itemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		e.mu.Unlock()
		return nil
	}

	if quantity == 0 {
		e.items = append(e.items[:idx], e.items[idx+1:]...)
	} else {
		e.items[idx].Quantity = quantity
	}
	return e.commitLocked(ctx, false)
}

// RemoveItem drops the entry if present; absent items are a no-op.
func (e *Engine) RemoveItem(ctx context.Context, itemID string) error {
	e.mu.Lock()
	idx := -1
	for i := range e.items {
		if e.items[i].ItemID == itemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		e.mu.Unlock()
		return nil
	}

	e.items = append(e.items[:idx], e.items[idx+1:]...)
	return e.commitLocked(ctx, false)
}

// Clear empties the cart and deletes the persisted slot.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	e.items = nil
	return e.commitLocked(ctx, true)
}

// Items returns a copy of the current line items.
func (e *Engine) Items() []LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyItems(e.items)
}

// Total returns the sum of unit price times quantity over all items.
func (e *Engine) Total() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return totalOf(e.items)
}

// Snapshot returns the current items together with the derived total.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe registers fn to be called with the new snapshot after every
// mutation, and returns a cancel function that removes the subscription.
// Callbacks run while a commit is in flight and must not mutate the cart.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// commitLocked persists the current items (or clears the slot when drop is
// set), notifies subscribers, and releases the mutex. It must be entered
// with the mutex held. Taking commitMu before releasing mu hands the store
// writes to mutators in the order their mutations landed; reads stay free
// while a persist is in flight.
func (e *Engine) commitLocked(ctx context.Context, drop bool) error {
	snap := e.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.commitMu.Lock()
	defer e.commitMu.Unlock()
	e.mu.Unlock()

	var err error
	if drop {
		err = e.store.Clear(ctx, e.slot)
	} else {
		err = e.store.Save(ctx, e.slot, snap.Items)
	}
	if err != nil {
		e.logger.Printf("cart %q: persist failed, in-memory state kept: %v", e.slot, err)
		err = fmt.Errorf("persist cart %q: %w", e.slot, err)
	}

	for _, fn := range subs {
		fn(snap)
	}
	return err
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{Items: copyItems(e.items), Total: totalOf(e.items)}
}

func copyItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
