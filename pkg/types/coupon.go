package types

import (
	"time"

	"github.com/bazaarhq/bazaar-backend/pkg/enums"
)

// AppliedCoupon is the coupon descriptor stored on a cart once a code has been
// accepted. AppliedAmount is derived on every totals pass; it never exceeds the
// subtotal and is never negative.
type AppliedCoupon struct {
	Code          string             `json:"code"`
	DiscountType  enums.DiscountType `json:"discountType"`
	DiscountValue float64            `json:"discountValue"`
	AppliedAmount float64            `json:"appliedAmount"`
	AppliedAt     time.Time          `json:"appliedAt"`
}
