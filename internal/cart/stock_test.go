package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazaarhq/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/bazaarhq/bazaar-backend/pkg/errors"
	"github.com/bazaarhq/bazaar-backend/pkg/types"
)

func testProduct(title string, stock int) *models.Product {
	id := uuid.New()
	storeID := uuid.New()
	return &models.Product{
		ID:       id,
		StoreID:  &storeID,
		Title:    title,
		IsActive: true,
		Inventory: &models.ProductInventory{
			ProductID:   id,
			Stock:       stock,
			IsAvailable: true,
		},
	}
}

func withVariants(product *models.Product, variants ...models.ProductVariant) *models.Product {
	product.Inventory.Variants = variants
	return product
}

func TestCheckAvailability(t *testing.T) {
	t.Parallel()

	active := testProduct("Ceramic Mug", 10)
	require.NoError(t, checkAvailability(active))

	inactive := testProduct("Ceramic Mug", 10)
	inactive.IsActive = false
	err := checkAvailability(inactive)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotAvailable))
	assert.Contains(t, err.Error(), "Ceramic Mug is currently not available")

	flagged := testProduct("Ceramic Mug", 10)
	flagged.Inventory.IsAvailable = false
	assert.True(t, pkgerrors.IsCode(checkAvailability(flagged), pkgerrors.CodeNotAvailable))
}

func TestResolveStockUnlimited(t *testing.T) {
	t.Parallel()

	product := testProduct("Stickers", 0)
	product.Inventory.Unlimited = true

	require.NoError(t, validateStockFor(product, nil, 99, 0))
}

func TestResolveStockVariantAuthoritative(t *testing.T) {
	t.Parallel()

	product := withVariants(testProduct("Hoodie", 0),
		models.ProductVariant{Type: "size", Value: "XL", Stock: 5},
		models.ProductVariant{Type: "size", Value: "S", Stock: 0},
	)

	// product-level stock is zero but the requested variant has its own count
	require.NoError(t, validateStockFor(product, &types.Variant{Type: "size", Value: "XL"}, 3, 0))

	err := validateStockFor(product, &types.Variant{Type: "size", Value: "S"}, 1, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeOutOfStock))
	assert.Contains(t, err.Error(), "Hoodie (size: S) is out of stock")
}

func TestResolveStockVariantMatchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	product := withVariants(testProduct("Hoodie", 0),
		models.ProductVariant{Type: "Size", Value: "XL", Stock: 5},
	)

	require.NoError(t, validateStockFor(product, &types.Variant{Type: "size", Value: "xl"}, 2, 0))
}

func TestResolveStockUnknownVariant(t *testing.T) {
	t.Parallel()

	product := withVariants(testProduct("Hoodie", 10),
		models.ProductVariant{Type: "size", Value: "XL", Stock: 5},
	)

	err := validateStockFor(product, &types.Variant{Type: "size", Value: "XXL"}, 1, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeVariantNotFound))
	assert.Contains(t, err.Error(), "Hoodie does not have a variant size: XXL")
}

func TestValidateStockForInsufficient(t *testing.T) {
	t.Parallel()

	product := testProduct("Desk Lamp", 3)

	err := validateStockFor(product, nil, 5, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock))
	assert.Contains(t, err.Error(), "Only 3 items of Desk Lamp available")

	err = validateStockFor(product, nil, 5, 2)
	assert.Contains(t, err.Error(), "Only 3 items of Desk Lamp available. You already have 2 in your cart")
}

func TestValidateStockForSingular(t *testing.T) {
	t.Parallel()

	product := testProduct("Desk Lamp", 1)

	err := validateStockFor(product, nil, 2, 0)
	assert.Contains(t, err.Error(), "Only 1 item of Desk Lamp available")
}

func TestValidateStockForMissingInventoryIsOutOfStock(t *testing.T) {
	t.Parallel()

	product := testProduct("Desk Lamp", 0)
	product.Inventory = nil

	err := validateStockFor(product, nil, 1, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeOutOfStock))
}
