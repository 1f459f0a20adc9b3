package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/danielavelez12/goupromo/internal/cart"
	"github.com/danielavelez12/goupromo/internal/events"
	"github.com/danielavelez12/goupromo/internal/middleware"
)

func NewRouter(carts *cart.Manager, publisher events.CheckoutPublisher, offers OfferLister, allowOrigins []string, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.CORS(allowOrigins))

	r.Get("/health", healthHandler)

	cartHandler := NewCartHandler(carts, publisher, logger)
	r.Route("/api/cart/{sessionId}", func(r chi.Router) {
		r.Get("/", cartHandler.GetCart)
		r.Delete("/", cartHandler.ClearCart)
		r.Post("/items", cartHandler.AddItem)
		r.Patch("/items/{itemNumber}", cartHandler.UpdateItem)
		r.Delete("/items/{itemNumber}", cartHandler.RemoveItem)
		r.Post("/checkout", cartHandler.Checkout)
		r.Get("/events", cartHandler.StreamEvents)
	})

	if offers != nil {
		r.Get("/api/items", NewOffersHandler(offers, logger).List)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "service": "cart-service"}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
