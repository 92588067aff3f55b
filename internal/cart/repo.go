package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar-backend/pkg/db/models"
)

// Repository is the GORM-backed cart persistence layer.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindActiveByUser loads the active cart for the user with all child rows.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var record models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("ReservedItems").
		Preload("LockedItems").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new Cart.
func (r *Repository) Create(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Omit("Items", "ReservedItems", "LockedItems").Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Update saves the cart row itself; child rows are replaced separately.
func (r *Repository) Update(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Omit("Items", "ReservedItems", "LockedItems").Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// ReplaceItems atomically replaces the cart's item rows.
func (r *Repository) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].CartID = cartID
	}
	return tx.Create(&items).Error
}

// ReplaceLockedItems atomically replaces the cart's lock rows.
func (r *Repository) ReplaceLockedItems(ctx context.Context, cartID uuid.UUID, locks []models.LockedItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.LockedItem{}).Error; err != nil {
		return err
	}
	if len(locks) == 0 {
		return nil
	}
	for i := range locks {
		locks[i].CartID = cartID
	}
	return tx.Create(&locks).Error
}

// DeactivateCartsBefore flips carts whose lease elapsed before cutoff to
// inactive. The storage layer's TTL cleanup removes the rows later.
func (r *Repository) DeactivateCartsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("is_active = ? AND expires_at < ?", true, cutoff).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

// DeleteLocksExpiredBefore removes lapsed price locks regardless of cart
// activity, so abandoned carts do not accumulate stale leases.
func (r *Repository) DeleteLocksExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&models.LockedItem{})
	return result.RowsAffected, result.Error
}

// DeleteReservationsExpiredBefore removes lapsed stock reservations.
func (r *Repository) DeleteReservationsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&models.ReservedItem{})
	return result.RowsAffected, result.Error
}
