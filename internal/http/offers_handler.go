package httpapi

import (
	"context"
	"log"
	"net/http"

	"github.com/danielavelez12/goupromo/internal/feed"
)

// OfferLister is what the storefront needs from the offer feed.
type OfferLister interface {
	List(ctx context.Context) ([]feed.Offer, error)
}

type OffersHandler struct {
	offers OfferLister
	logger *log.Logger
}

func NewOffersHandler(offers OfferLister, logger *log.Logger) *OffersHandler {
	return &OffersHandler{offers: offers, logger: logger}
}

// List re-serves the backend offer feed so storefront views talk to one
// origin.
func (h *OffersHandler) List(w http.ResponseWriter, r *http.Request) {
	offers, err := h.offers.List(r.Context())
	if err != nil {
		h.logger.Printf("list offers: %v", err)
		writeError(w, http.StatusBadGateway, "failed to load offers")
		return
	}
	if offers == nil {
		offers = []feed.Offer{}
	}
	writeJSON(w, http.StatusOK, offers)
}
