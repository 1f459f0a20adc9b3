// Package feed talks to the backend offer feed that populates the
// storefront. The feed is read-only input; the cart never validates offers
// beyond what a view asked for.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/danielavelez12/goupromo/internal/middleware"
)

// Offer is one purchasable surplus offer as the backend serves it.
type Offer struct {
	ItemType         string  `json:"item_type"`
	Description      string  `json:"description"`
	ItemNumber       string  `json:"item_number"`
	OriginalPrice    float64 `json:"original_price"`
	OfferPrice       float64 `json:"offer_price"`
	Quantity         int     `json:"quantity"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	ImageURL         string  `json:"image_url"`
	UnitWeight       float64 `json:"unit_weight"`
	DeliveryIncluded bool    `json:"delivery_included"`
	DeliveryFee      float64 `json:"delivery_fee"`
	Status           string  `json:"status"`
	RestaurantName   string  `json:"restaurant_name"`
	WebsiteURL       string  `json:"website_url"`
	PrimaryAddress   string  `json:"primary_address"`
	PrimaryContact   string  `json:"primary_contact"`
	RestaurantPhone  string  `json:"restaurant_phone"`
	RestaurantEmail  string  `json:"restaurant_email"`
	City             string  `json:"city"`
	LogoURL          string  `json:"logo_url"`
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed base url %q: %w", baseURL, err)
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// List fetches all currently published offers. The items path is appended
// to the configured base URL, so a base with a path prefix keeps it.
func (c *Client) List(ctx context.Context) ([]Offer, error) {
	u := c.baseURL.JoinPath("items")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch offers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch offers: unexpected status %d", resp.StatusCode)
	}

	var offers []Offer
	if err := json.NewDecoder(resp.Body).Decode(&offers); err != nil {
		return nil, fmt.Errorf("decode offers: %w", err)
	}
	return offers, nil
}
