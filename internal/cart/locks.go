package cart

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/bazaarhq/bazaar-backend/pkg/errors"
	"github.com/bazaarhq/bazaar-backend/pkg/types"
)

// Historical lock rows carry product references in three shapes: a bare
// identifier, an expanded record, or a stringified record written by a broken
// upstream path. The write side of that defect lives outside this engine, so
// the read path stays tolerant and extracts the identifier before comparing.
var (
	idFieldPattern  = regexp.MustCompile(`"_?id"\s*:\s*"([^"]+)"`)
	objectIDPattern = regexp.MustCompile(`ObjectId\('([^']+)'\)`)
)

// normalizeProductRef reduces any of the historical reference shapes to the
// bare product identifier. Unrecognized input is returned trimmed as-is.
func normalizeProductRef(raw string) string {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return ""
	}
	if !strings.ContainsAny(ref, "{\"(") {
		return ref
	}
	if match := idFieldPattern.FindStringSubmatch(ref); match != nil {
		return match[1]
	}
	if match := objectIDPattern.FindStringSubmatch(ref); match != nil {
		return match[1]
	}
	return ref
}

// storeRefID extracts a store identifier from a bare id or a serialized store
// record; nil when nothing parseable is present.
func storeRefID(raw string) *uuid.UUID {
	ref := normalizeProductRef(raw)
	if ref == "" {
		return nil
	}
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil
	}
	return &id
}

// findLock returns the index of the non-expired lock matching the
// (product, variant) key, or -1. Expired entries never match, even before an
// explicit prune runs.
func findLock(locks []models.LockedItem, productID uuid.UUID, variant *types.Variant, now time.Time) int {
	want := productID.String()
	for i, lock := range locks {
		if lock.Expired(now) {
			continue
		}
		if normalizeProductRef(lock.ProductRef) != want {
			continue
		}
		if !lock.Variant.Matches(variant) {
			continue
		}
		return i
	}
	return -1
}

// pruneExpiredLocks drops every lock whose lease has lapsed.
func pruneExpiredLocks(locks []models.LockedItem, now time.Time) []models.LockedItem {
	kept := locks[:0]
	for _, lock := range locks {
		if lock.Expired(now) {
			continue
		}
		kept = append(kept, lock)
	}
	return kept
}

// resolveCatalogPrice resolves the price to snapshot or freeze, preferring the
// current pricing shape and falling back to the legacy one: pricing.selling,
// then price.current, then the original/list price. A price that never
// resolves to a positive value is rejected.
func resolveCatalogPrice(product *models.Product) (float64, *float64, *float64, error) {
	var current float64
	var original, discount *float64

	if product.Pricing != nil {
		if product.Pricing.Selling != nil && *product.Pricing.Selling > 0 {
			current = *product.Pricing.Selling
		}
		original = positiveOrNil(product.Pricing.Original)
		discount = product.Pricing.Discount
	}
	if product.Price != nil {
		if current == 0 && product.Price.Current != nil && *product.Price.Current > 0 {
			current = *product.Price.Current
		}
		if original == nil {
			original = positiveOrNil(product.Price.Original)
		}
		if discount == nil {
			discount = product.Price.Discount
		}
	}
	if current == 0 && original != nil {
		current = *original
	}

	if current <= 0 {
		return 0, nil, nil, pkgerrors.Newf(pkgerrors.CodePriceUnavailable,
			"no valid price found for %s", product.Title)
	}
	return current, original, discount, nil
}

func positiveOrNil(value *float64) *float64 {
	if value == nil || *value <= 0 {
		return nil
	}
	copied := *value
	return &copied
}
