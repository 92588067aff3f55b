package cart

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazaarhq/bazaar-backend/pkg/config"
	"github.com/bazaarhq/bazaar-backend/pkg/db/models"
	"github.com/bazaarhq/bazaar-backend/pkg/enums"
	"github.com/bazaarhq/bazaar-backend/pkg/types"
)

// PricingConfig carries the rates applied on every totals pass.
type PricingConfig struct {
	TaxRate               float64
	DeliveryFeePerStore   float64
	FreeDeliveryThreshold float64
	CashbackRate          float64
}

// DefaultPricing returns the platform's standard rates.
func DefaultPricing() PricingConfig {
	return PricingConfig{
		TaxRate:               0.05,
		DeliveryFeePerStore:   50,
		FreeDeliveryThreshold: 500,
		CashbackRate:          0.02,
	}
}

// PricingFromConfig maps the env-driven cart config onto a PricingConfig.
func PricingFromConfig(cfg config.CartConfig) PricingConfig {
	return PricingConfig{
		TaxRate:               cfg.TaxRate,
		DeliveryFeePerStore:   cfg.DeliveryFeePerStore,
		FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
		CashbackRate:          cfg.CashbackRate,
	}
}

// computeTotals derives the full pricing breakdown from the current items and
// coupon. It is a pure function of its inputs except that the clamped coupon
// discount is written back onto coupon.AppliedAmount.
func computeTotals(items []models.CartItem, coupon *types.AppliedCoupon, pricing PricingConfig) types.CartTotals {
	subtotal := decimal.Zero
	savings := decimal.Zero
	stores := map[uuid.UUID]struct{}{}

	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		price := dec(item.Price)
		subtotal = subtotal.Add(price.Mul(qty))

		if item.OriginalPrice != nil {
			original := dec(*item.OriginalPrice)
			if original.GreaterThan(price) {
				savings = savings.Add(original.Sub(price).Mul(qty))
			}
		}

		if item.StoreID != nil {
			stores[*item.StoreID] = struct{}{}
		}
	}

	tax := subtotal.Mul(dec(pricing.TaxRate)).Round(2)

	delivery := decimal.Zero
	if subtotal.LessThan(dec(pricing.FreeDeliveryThreshold)) {
		delivery = decimal.NewFromInt(int64(len(stores))).Mul(dec(pricing.DeliveryFeePerStore))
	}

	discount := couponDiscount(subtotal, coupon)
	if coupon != nil {
		coupon.AppliedAmount = round2(discount)
	}

	cashback := subtotal.Sub(discount).Mul(dec(pricing.CashbackRate)).Round(2)

	total := subtotal.Add(tax).Add(delivery).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return types.CartTotals{
		Subtotal: round2(subtotal),
		Tax:      round2(tax),
		Delivery: round2(delivery),
		Discount: round2(discount),
		Cashback: round2(cashback),
		Total:    round2(total),
		Savings:  round2(savings),
	}
}

// couponDiscount computes the raw coupon discount clamped to [0, subtotal].
func couponDiscount(subtotal decimal.Decimal, coupon *types.AppliedCoupon) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount = subtotal.Mul(dec(coupon.DiscountValue)).Div(decimal.NewFromInt(100)).Round(2)
	case enums.DiscountTypeFixed:
		discount = dec(coupon.DiscountValue)
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

// dec coerces a float into a decimal, treating NaN/Inf as zero.
func dec(value float64) decimal.Decimal {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(value)
}

func round2(value decimal.Decimal) float64 {
	f, _ := value.Round(2).Float64()
	return f
}
