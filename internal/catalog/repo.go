package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/bazaarhq/bazaar-backend/pkg/errors"
)

// Loader is the catalog capability the cart engine depends on. The engine
// reads stock, availability and price data through it and never writes back.
type Loader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Repository is the GORM-backed catalog loader.
type Repository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewRepository builds a catalog repository. Lookups are bounded by the given
// timeout; zero disables the bound.
func NewRepository(db *gorm.DB, timeout time.Duration) *Repository {
	return &Repository{db: db, timeout: timeout}
}

// FindByID loads a product with its inventory and variants.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Inventory").
		Preload("Inventory.Variants").
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog lookup timed out")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}
