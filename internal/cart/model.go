package cart

// LineItem is one purchasable offer the shopper has selected. JSON field
// names match the snapshot format existing sessions already carry, so a
// redeployed service keeps reading carts written before it.
type LineItem struct {
	ItemID     string  `json:"item_number"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"offer_price"`
	Quantity   int     `json:"quantity"`
	VendorName string  `json:"restaurant_name"`
	ImageURL   string  `json:"image_url"`
}

// Snapshot is the cart as consumers see it: the current line items plus the
// derived total. Total is recomputed whenever a snapshot is taken, never
// stored.
type Snapshot struct {
	Items []LineItem `json:"items"`
	Total float64    `json:"totalAmount"`
}

func totalOf(items []LineItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}
