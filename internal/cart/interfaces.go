package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
// Mutations replace the aggregate's child rows as a unit inside the caller's
// transaction.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, record *models.Cart) (*models.Cart, error)
	Update(ctx context.Context, record *models.Cart) (*models.Cart, error)
	ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error
	ReplaceLockedItems(ctx context.Context, cartID uuid.UUID, locks []models.LockedItem) error
}

// SweeperRepository is the slice of cart persistence used by the expiry job.
type SweeperRepository interface {
	DeactivateCartsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteLocksExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteReservationsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
