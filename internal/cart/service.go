package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar-backend/internal/catalog"
	"github.com/bazaarhq/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/bazaarhq/bazaar-backend/pkg/errors"
	"github.com/bazaarhq/bazaar-backend/pkg/types"
)

const defaultCartTTL = 7 * 24 * time.Hour

// Service is the cart aggregate. Every operation loads the user's cart,
// validates against catalog state, mutates items/locks/coupon, recomputes
// totals, and persists the new state as one unit.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID, variant *types.Variant) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID uuid.UUID, input UpdateQuantityInput) (*models.Cart, error)
	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (bool, error)
	RemoveCoupon(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	LockItem(ctx context.Context, userID uuid.UUID, input LockItemInput) (*models.Cart, error)
	UnlockItem(ctx context.Context, userID, productID uuid.UUID, variant *types.Variant) (*models.Cart, error)
	MoveLockedToCart(ctx context.Context, userID, productID uuid.UUID, variant *types.Variant) (*models.Cart, error)
	SetDeliveryAddress(ctx context.Context, userID uuid.UUID, address types.Address) (*models.Cart, error)
	SetInstructions(ctx context.Context, userID uuid.UUID, instructions string) (*models.Cart, error)
}

// ServiceParams configure the cart service.
type ServiceParams struct {
	Repo                CartRepository
	Tx                  txRunner
	Catalog             catalog.Loader
	Coupons             CouponRegistry
	Pricing             PricingConfig
	CartTTL             time.Duration
	DefaultLockDuration time.Duration
	Now                 func() time.Time
}

type service struct {
	repo         CartRepository
	tx           txRunner
	catalog      catalog.Loader
	coupons      CouponRegistry
	pricing      PricingConfig
	cartTTL      time.Duration
	lockDuration time.Duration
	now          func() time.Time
	userLocks    *keyedMutex
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon registry required")
	}
	pricing := params.Pricing
	if pricing == (PricingConfig{}) {
		pricing = DefaultPricing()
	}
	cartTTL := params.CartTTL
	if cartTTL <= 0 {
		cartTTL = defaultCartTTL
	}
	lockDuration := params.DefaultLockDuration
	if lockDuration <= 0 {
		lockDuration = 24 * time.Hour
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:         params.Repo,
		tx:           params.Tx,
		catalog:      params.Catalog,
		coupons:      params.Coupons,
		pricing:      pricing,
		cartTTL:      cartTTL,
		lockDuration: lockDuration,
		now:          now,
		userLocks:    newKeyedMutex(),
	}, nil
}

// GetCart returns the user's active cart with expired locks filtered out.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	record, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "active cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	record.LockedItems = pruneExpiredLocks(record.LockedItems, s.now())
	return record, nil
}

// AddItem appends a product to the cart or tops up an existing line, taking a
// price snapshot from the catalog at this instant.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.Cart, error) {
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		return s.applyAddItem(ctx, cart, input.ProductID, input.Quantity, input.Variant)
	})
}

// RemoveItem drops the line matching the (product, variant) key. Absent items
// are a no-op; lines with a corrupted owning reference are dropped during the
// scan as already-absent.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID, variant *types.Variant) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		kept := cart.Items[:0]
		for _, item := range cart.Items {
			if item.ProductID == nil && item.EventID == nil {
				continue
			}
			if item.ProductID != nil && *item.ProductID == productID && item.Variant.Matches(variant) {
				continue
			}
			kept = append(kept, item)
		}
		cart.Items = kept
		return nil
	})
}

// UpdateItemQuantity sets an absolute quantity for an existing line after
// re-validating catalog availability and stock. Zero or negative quantities
// delegate to removal.
func (s *service) UpdateItemQuantity(ctx context.Context, userID uuid.UUID, input UpdateQuantityInput) (*models.Cart, error) {
	if input.Quantity <= 0 {
		return s.RemoveItem(ctx, userID, input.ProductID, input.Variant)
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		idx := findItem(cart.Items, input.ProductID, input.Variant)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
		}
		product, err := s.catalog.FindByID(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if err := checkAvailability(product); err != nil {
			return err
		}
		if err := validateStockFor(product, input.Variant, input.Quantity, 0); err != nil {
			return err
		}
		cart.Items[idx].Quantity = input.Quantity
		return nil
	})
}

// ApplyCoupon validates the code against the current subtotal. Unknown codes
// return false without mutating the cart; a recognized code below its minimum
// fails with the required amount in the message.
func (s *service) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	if code == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	unlock := s.userLocks.Lock(userID)
	defer unlock()

	cart, isNew, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return false, err
	}

	coupon, err := s.coupons.Find(ctx, code)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "coupon lookup")
	}
	if coupon == nil {
		return false, nil
	}

	subtotal := computeTotals(cart.Items, nil, s.pricing).Subtotal
	if subtotal < coupon.MinAmount {
		return false, pkgerrors.Newf(pkgerrors.CodeCouponMinimum,
			"coupon %s requires a minimum order amount of %.2f", coupon.Code, coupon.MinAmount)
	}

	cart.Coupon = &types.AppliedCoupon{
		Code:          coupon.Code,
		DiscountType:  coupon.DiscountType,
		DiscountValue: coupon.DiscountValue,
		AppliedAt:     s.now(),
	}
	if _, err := s.finish(ctx, cart, isNew); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveCoupon clears the applied coupon.
func (s *service) RemoveCoupon(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		cart.Coupon = nil
		return nil
	})
}

// ClearCart empties items and coupon and resets totals to zero.
func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		cart.Items = nil
		cart.Coupon = nil
		return nil
	})
}

// LockItem creates or extends the price lock for the (product, variant) key,
// freezing the currently resolvable price for the requested duration. Expired
// locks are pruned lazily on every call.
func (s *service) LockItem(ctx context.Context, userID uuid.UUID, input LockItemInput) (*models.Cart, error) {
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	duration := time.Duration(input.DurationHours) * time.Hour
	if duration <= 0 {
		duration = s.lockDuration
	}

	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		now := s.now()
		cart.LockedItems = pruneExpiredLocks(cart.LockedItems, now)

		product, err := s.catalog.FindByID(ctx, input.ProductID)
		if err != nil {
			return err
		}
		price, original, _, err := resolveCatalogPrice(product)
		if err != nil {
			return err
		}
		originalPrice := price
		if original != nil {
			originalPrice = *original
		}

		storeID := storeRefID(input.StoreRef)
		if storeID == nil {
			storeID = product.StoreID
		}

		expiresAt := now.Add(duration)
		if idx := findLock(cart.LockedItems, input.ProductID, input.Variant, now); idx >= 0 {
			lock := &cart.LockedItems[idx]
			lock.Quantity = input.Quantity
			lock.LockedPrice = price
			lock.OriginalPrice = originalPrice
			lock.StoreID = storeID
			lock.LockedAt = now
			lock.ExpiresAt = expiresAt
			if input.Notes != nil {
				lock.Notes = input.Notes
			}
			return nil
		}

		cart.LockedItems = append(cart.LockedItems, models.LockedItem{
			ID:            uuid.New(),
			ProductRef:    input.ProductID.String(),
			StoreID:       storeID,
			Quantity:      input.Quantity,
			Variant:       input.Variant,
			LockedPrice:   price,
			OriginalPrice: originalPrice,
			LockedAt:      now,
			ExpiresAt:     expiresAt,
			Notes:         input.Notes,
		})
		return nil
	})
}

// UnlockItem discards the lock matching the (product, variant) key. Stored
// product references are normalized before comparison, so corrupted
// stringified records still match. Absent locks are a no-op.
func (s *service) UnlockItem(ctx context.Context, userID, productID uuid.UUID, variant *types.Variant) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		want := productID.String()
		kept := cart.LockedItems[:0]
		for _, lock := range cart.LockedItems {
			if normalizeProductRef(lock.ProductRef) == want && lock.Variant.Matches(variant) {
				continue
			}
			kept = append(kept, lock)
		}
		cart.LockedItems = kept
		return nil
	})
}

// MoveLockedToCart converts a lock into a cart item as one atomic step: the
// add is validated and applied first, and the lock is removed only when the
// add succeeds. On failure the lock stays untouched.
func (s *service) MoveLockedToCart(ctx context.Context, userID, productID uuid.UUID, variant *types.Variant) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		now := s.now()
		idx := findLock(cart.LockedItems, productID, variant, now)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeLockNotFound, "no active price lock for this product")
		}
		lock := cart.LockedItems[idx]
		if err := s.applyAddItem(ctx, cart, productID, lock.Quantity, lock.Variant); err != nil {
			return err
		}
		cart.LockedItems = append(cart.LockedItems[:idx], cart.LockedItems[idx+1:]...)
		return nil
	})
}

// SetDeliveryAddress attaches a delivery address to the cart.
func (s *service) SetDeliveryAddress(ctx context.Context, userID uuid.UUID, address types.Address) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		cart.DeliveryAddress = &address
		return nil
	})
}

// SetInstructions attaches free-form delivery instructions to the cart.
func (s *service) SetInstructions(ctx context.Context, userID uuid.UUID, instructions string) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(cart *models.Cart) error {
		if instructions == "" {
			cart.Instructions = nil
			return nil
		}
		cart.Instructions = &instructions
		return nil
	})
}

// mutate serializes the read-modify-write cycle per user: load or create the
// cart, apply fn, recompute totals, extend the lease, persist as one unit.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, fn func(cart *models.Cart) error) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	unlock := s.userLocks.Lock(userID)
	defer unlock()

	cart, isNew, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	return s.finish(ctx, cart, isNew)
}

func (s *service) loadOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, bool, error) {
	record, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		now := s.now()
		return &models.Cart{
			ID:        uuid.New(),
			UserID:    userID,
			IsActive:  true,
			ExpiresAt: now.Add(s.cartTTL),
			CreatedAt: now,
		}, true, nil
	}
	return record, false, nil
}

// finish recomputes totals, pushes the lease forward and persists the whole
// aggregate inside one transaction. Validation always precedes mutation and
// mutation always precedes this call, so no partial state is ever written.
func (s *service) finish(ctx context.Context, cart *models.Cart, isNew bool) (*models.Cart, error) {
	if err := validateAggregate(cart); err != nil {
		return nil, err
	}

	cart.Totals = computeTotals(cart.Items, cart.Coupon, s.pricing)
	s.extendExpiry(cart)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		if isNew {
			_, err = repo.Create(ctx, cart)
		} else {
			_, err = repo.Update(ctx, cart)
		}
		if err != nil {
			return err
		}
		if err := repo.ReplaceItems(ctx, cart.ID, cart.Items); err != nil {
			return err
		}
		return repo.ReplaceLockedItems(ctx, cart.ID, cart.LockedItems)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return cart, nil
}

// extendExpiry pushes the cart lease forward; it never moves backward.
func (s *service) extendExpiry(cart *models.Cart) {
	candidate := s.now().Add(s.cartTTL)
	if candidate.After(cart.ExpiresAt) {
		cart.ExpiresAt = candidate
	}
}

// applyAddItem is the add-to-cart core shared by AddItem and MoveLockedToCart.
// Stock is validated against the total quantity the line would hold, and the
// price snapshot is taken from the catalog at this instant.
func (s *service) applyAddItem(ctx context.Context, cart *models.Cart, productID uuid.UUID, quantity int, variant *types.Variant) error {
	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if err := checkAvailability(product); err != nil {
		return err
	}

	idx := findItem(cart.Items, productID, variant)
	already := 0
	if idx >= 0 {
		already = cart.Items[idx].Quantity
	}
	total := already + quantity
	if total > maxQuantity {
		return pkgerrors.Newf(pkgerrors.CodeValidation,
			"cannot hold more than %d of the same item", maxQuantity)
	}
	if err := validateStockFor(product, variant, total, already); err != nil {
		return err
	}

	if idx >= 0 {
		cart.Items[idx].Quantity = total
		return nil
	}

	price, original, discount := snapshotPrice(product)
	cart.Items = append(cart.Items, models.CartItem{
		ID:            uuid.New(),
		ProductID:     &productID,
		StoreID:       product.StoreID,
		Quantity:      quantity,
		Variant:       variant,
		Price:         price,
		OriginalPrice: original,
		Discount:      discount,
		AddedAt:       s.now(),
	})
	return nil
}

// snapshotPrice captures the add-time price fields. Unlike lock price
// resolution this never fails; a listing without resolvable prices snapshots
// as zero and is caught by catalog hygiene, not the cart.
func snapshotPrice(product *models.Product) (float64, *float64, *float64) {
	price, original, discount, err := resolveCatalogPrice(product)
	if err != nil {
		return 0, nil, nil
	}
	return price, original, discount
}

func findItem(items []models.CartItem, productID uuid.UUID, variant *types.Variant) int {
	for i, item := range items {
		if item.ProductID == nil {
			continue
		}
		if *item.ProductID == productID && item.Variant.Matches(variant) {
			return i
		}
	}
	return -1
}

// validateAggregate asserts the cart invariants before anything is persisted.
func validateAggregate(cart *models.Cart) error {
	for _, item := range cart.Items {
		if !item.HasValidRef() {
			return pkgerrors.New(pkgerrors.CodeValidation,
				"cart item must reference exactly one of product or event")
		}
		if item.Quantity < minQuantity || item.Quantity > maxQuantity {
			return pkgerrors.Newf(pkgerrors.CodeValidation,
				"item quantity must be between %d and %d", minQuantity, maxQuantity)
		}
	}
	for _, lock := range cart.LockedItems {
		if lock.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "locked item quantity must be positive")
		}
	}
	return nil
}
