package cart

import (
	"context"
	"strings"

	"github.com/bazaarhq/bazaar-backend/pkg/enums"
)

// Coupon describes a redeemable discount code.
type Coupon struct {
	Code          string
	DiscountType  enums.DiscountType
	DiscountValue float64
	MinAmount     float64
}

// CouponRegistry resolves coupon codes. Unknown codes return (nil, nil) so the
// aggregate can report "not applied" without treating it as a failure; minimum
// thresholds are enforced by the aggregate against the live subtotal.
type CouponRegistry interface {
	Find(ctx context.Context, code string) (*Coupon, error)
}

// StaticRegistry is an in-memory coupon table. Production deployments swap in
// a registry backed by the discount service; the engine only sees the
// interface.
type StaticRegistry struct {
	coupons map[string]Coupon
}

// NewStaticRegistry builds a registry from the provided coupons, keyed by
// upper-cased code.
func NewStaticRegistry(coupons ...Coupon) *StaticRegistry {
	table := make(map[string]Coupon, len(coupons))
	for _, coupon := range coupons {
		coupon.Code = normalizeCouponCode(coupon.Code)
		table[coupon.Code] = coupon
	}
	return &StaticRegistry{coupons: table}
}

// DefaultCoupons returns the built-in promotional table.
func DefaultCoupons() []Coupon {
	return []Coupon{
		{Code: "WELCOME10", DiscountType: enums.DiscountTypePercentage, DiscountValue: 10, MinAmount: 200},
		{Code: "SAVE50", DiscountType: enums.DiscountTypeFixed, DiscountValue: 50, MinAmount: 300},
		{Code: "FIRSTBUY", DiscountType: enums.DiscountTypePercentage, DiscountValue: 15, MinAmount: 500},
	}
}

// Find returns the coupon for the given code, or nil when unrecognized.
func (r *StaticRegistry) Find(_ context.Context, code string) (*Coupon, error) {
	coupon, ok := r.coupons[normalizeCouponCode(code)]
	if !ok {
		return nil, nil
	}
	return &coupon, nil
}

func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
