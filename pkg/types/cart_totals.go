package types

// CartTotals is the derived pricing breakdown for a cart. It is always the
// output of the totals calculator and never mutated independently.
type CartTotals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Delivery float64 `json:"delivery"`
	Discount float64 `json:"discount"`
	Cashback float64 `json:"cashback"`
	Total    float64 `json:"total"`
	Savings  float64 `json:"savings"`
}
