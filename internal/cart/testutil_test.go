package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar-backend/pkg/db/models"
	pkgerrors "github.com/bazaarhq/bazaar-backend/pkg/errors"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  totals TEXT,
  coupon TEXT,
  delivery_address TEXT,
  instructions TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  expires_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT,
  event_id TEXT,
  store_id TEXT,
  quantity INTEGER NOT NULL,
  variant TEXT,
  price REAL NOT NULL,
  original_price REAL,
  discount REAL,
  added_at DATETIME NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	lockedItems := `
CREATE TABLE IF NOT EXISTS locked_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_ref TEXT NOT NULL,
  store_id TEXT,
  quantity INTEGER NOT NULL,
  variant TEXT,
  locked_price REAL NOT NULL,
  original_price REAL NOT NULL,
  locked_at DATETIME NOT NULL,
  expires_at DATETIME NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	reservedItems := `
CREATE TABLE IF NOT EXISTS reserved_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  variant TEXT,
  reserved_at DATETIME NOT NULL,
  expires_at DATETIME NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	require.NoError(t, db.Exec(lockedItems).Error)
	require.NoError(t, db.Exec(reservedItems).Error)
	return db
}

type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
	err      error
}

func (s *stubCatalog) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	product, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s not found", id)
	}
	return product, nil
}

func floatPtr(v float64) *float64 { return &v }
