package types

// PriceFields is the legacy catalog price shape (`price.*`). Older listings
// still carry it; readers must fall back to it when PricingFields is absent.
type PriceFields struct {
	Current  *float64 `json:"current,omitempty"`
	Original *float64 `json:"original,omitempty"`
	Discount *float64 `json:"discount,omitempty"`
}

// PricingFields is the current catalog price shape (`pricing.*`).
type PricingFields struct {
	Selling  *float64 `json:"selling,omitempty"`
	Original *float64 `json:"original,omitempty"`
	Discount *float64 `json:"discount,omitempty"`
}
