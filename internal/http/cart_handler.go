package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/danielavelez12/goupromo/internal/cart"
	"github.com/danielavelez12/goupromo/internal/events"
)

type CartHandler struct {
	carts     *cart.Manager
	publisher events.CheckoutPublisher
	logger    *log.Logger
}

func NewCartHandler(carts *cart.Manager, publisher events.CheckoutPublisher, logger *log.Logger) *CartHandler {
	return &CartHandler{carts: carts, publisher: publisher, logger: logger}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	engine := h.carts.Get(r.Context(), sessionID)
	writeJSON(w, http.StatusOK, engine.Snapshot())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	var item cart.LineItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if item.ItemID == "" {
		writeError(w, http.StatusBadRequest, "missing item_number")
		return
	}

	engine := h.carts.Get(r.Context(), sessionID)
	if err := engine.AddItem(r.Context(), item); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			writeError(w, http.StatusBadRequest, "quantity must be at least 1")
			return
		}
		// Persist failures are non-fatal: the in-memory cart already holds
		// the item, the shopper keeps going.
		h.logger.Printf("add item for %q: %v", sessionID, err)
	}

	writeJSON(w, http.StatusOK, engine.Snapshot())
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	itemNumber := chi.URLParam(r, "itemNumber")
	if sessionID == "" || itemNumber == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId or itemNumber")
		return
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	engine := h.carts.Get(r.Context(), sessionID)
	if err := engine.UpdateQuantity(r.Context(), itemNumber, body.Quantity); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			writeError(w, http.StatusBadRequest, "quantity must not be negative")
			return
		}
		h.logger.Printf("update item for %q: %v", sessionID, err)
	}

	writeJSON(w, http.StatusOK, engine.Snapshot())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	itemNumber := chi.URLParam(r, "itemNumber")
	if sessionID == "" || itemNumber == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId or itemNumber")
		return
	}

	engine := h.carts.Get(r.Context(), sessionID)
	if err := engine.RemoveItem(r.Context(), itemNumber); err != nil {
		h.logger.Printf("remove item for %q: %v", sessionID, err)
	}

	writeJSON(w, http.StatusOK, engine.Snapshot())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	engine := h.carts.Get(r.Context(), sessionID)
	if err := engine.Clear(r.Context()); err != nil {
		h.logger.Printf("clear cart for %q: %v", sessionID, err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	engine := h.carts.Get(r.Context(), sessionID)
	snap := engine.Snapshot()
	if len(snap.Items) == 0 {
		writeError(w, http.StatusConflict, "cart is empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.publisher.PublishCartCheckedOut(ctx, sessionID, snap); err != nil {
		h.logger.Printf("checkout for %q: publish failed: %v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "failed to publish checkout event")
		return
	}

	if err := engine.Clear(r.Context()); err != nil {
		h.logger.Printf("checkout for %q: clear failed: %v", sessionID, err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "checkout completed",
	})
}

// StreamEvents pushes cart snapshots over SSE. The first event is the
// current snapshot; every mutation after that streams a new one until the
// client disconnects.
func (h *CartHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	engine := h.carts.Get(r.Context(), sessionID)

	// A slow client may miss intermediate snapshots; stale ones are dropped
	// so the newest always lands.
	updates := make(chan cart.Snapshot, 1)
	cancel := engine.Subscribe(func(s cart.Snapshot) {
		queueLatest(updates, s)
	})
	defer cancel()

	if err := writeSSE(w, engine.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if err := writeSSE(w, snap); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// queueLatest enqueues a snapshot, evicting a stale queued one when the
// consumer has fallen behind.
func queueLatest(updates chan cart.Snapshot, s cart.Snapshot) {
	for {
		select {
		case updates <- s:
			return
		default:
			select {
			case <-updates:
			default:
			}
		}
	}
}

func writeSSE(w http.ResponseWriter, snap cart.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", body)
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}
