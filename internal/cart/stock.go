package cart

import (
	"fmt"

	"github.com/bazaarhq/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/bazaarhq/bazaar-backend/pkg/errors"
	"github.com/bazaarhq/bazaar-backend/pkg/types"
)

// resolveStock returns the stock count that governs the requested variant, or
// the product-level count when no variant is requested. Variant stock is
// authoritative when the product defines variants and one is requested.
func resolveStock(product *models.Product, variant *types.Variant) (int, bool, error) {
	if product == nil || product.Inventory == nil {
		return 0, false, nil
	}
	inv := product.Inventory
	if inv.Unlimited {
		return 0, true, nil
	}
	if variant != nil && len(inv.Variants) > 0 {
		for _, candidate := range inv.Variants {
			ref := types.Variant{Type: candidate.Type, Value: candidate.Value}
			if ref.Matches(variant) {
				return candidate.Stock, false, nil
			}
		}
		return 0, false, pkgerrors.Newf(pkgerrors.CodeVariantNotFound,
			"%s does not have a variant %s", product.Title, variant.Label())
	}
	return inv.Stock, false, nil
}

// checkAvailability rejects inactive or catalog-flagged-unavailable products.
func checkAvailability(product *models.Product) error {
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if !product.IsActive {
		return pkgerrors.Newf(pkgerrors.CodeNotAvailable, "%s is currently not available", product.Title)
	}
	if product.Inventory != nil && !product.Inventory.IsAvailable {
		return pkgerrors.Newf(pkgerrors.CodeNotAvailable, "%s is currently not available", product.Title)
	}
	return nil
}

// validateStockFor is the single stock validation routine shared by every
// stock-affecting operation. requested is the total quantity the cart would
// hold after the mutation; alreadyInCart feeds the user-facing message when
// the request tops up an existing line.
func validateStockFor(product *models.Product, variant *types.Variant, requested, alreadyInCart int) error {
	available, unlimited, err := resolveStock(product, variant)
	if err != nil {
		return err
	}
	if unlimited {
		return nil
	}
	if available <= 0 {
		return pkgerrors.Newf(pkgerrors.CodeOutOfStock, "%s is out of stock", displayName(product, variant))
	}
	if requested > available {
		msg := fmt.Sprintf("Only %s of %s available", pluralItems(available), displayName(product, variant))
		if alreadyInCart > 0 {
			msg += fmt.Sprintf(". You already have %d in your cart", alreadyInCart)
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, msg)
	}
	return nil
}

func displayName(product *models.Product, variant *types.Variant) string {
	if variant == nil {
		return product.Title
	}
	return fmt.Sprintf("%s (%s)", product.Title, variant.Label())
}

func pluralItems(count int) string {
	if count == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", count)
}
