package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar-backend/pkg/db/models"
	"github.com/bazaarhq/bazaar-backend/pkg/types"
)

func seedCart(t *testing.T, repo *Repository, userID uuid.UUID) *models.Cart {
	t.Helper()

	record, err := repo.Create(context.Background(), &models.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		IsActive:  true,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	return record
}

func TestRepositoryFindActiveByUser(t *testing.T) {
	t.Parallel()

	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.FindActiveByUser(ctx, userID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	seeded := seedCart(t, repo, userID)
	productID := uuid.New()
	require.NoError(t, repo.ReplaceItems(ctx, seeded.ID, []models.CartItem{{
		ID:        uuid.New(),
		ProductID: &productID,
		Quantity:  2,
		Price:     100,
		Variant:   &types.Variant{Type: "size", Value: "XL"},
		AddedAt:   time.Now(),
	}}))

	found, err := repo.FindActiveByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, productID, *found.Items[0].ProductID)
	require.NotNil(t, found.Items[0].Variant)
	assert.Equal(t, "XL", found.Items[0].Variant.Value)
}

func TestRepositoryFindActiveByUserSkipsInactive(t *testing.T) {
	t.Parallel()

	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	seeded := seedCart(t, repo, userID)
	seeded.IsActive = false
	_, err := repo.Update(ctx, seeded)
	require.NoError(t, err)

	_, err = repo.FindActiveByUser(ctx, userID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryReplaceItems(t *testing.T) {
	t.Parallel()

	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	seeded := seedCart(t, repo, uuid.New())

	first := uuid.New()
	second := uuid.New()
	require.NoError(t, repo.ReplaceItems(ctx, seeded.ID, []models.CartItem{
		{ID: uuid.New(), ProductID: &first, Quantity: 1, Price: 10, AddedAt: time.Now()},
		{ID: uuid.New(), ProductID: &second, Quantity: 2, Price: 20, AddedAt: time.Now()},
	}))
	require.NoError(t, repo.ReplaceItems(ctx, seeded.ID, []models.CartItem{
		{ID: uuid.New(), ProductID: &second, Quantity: 5, Price: 20, AddedAt: time.Now()},
	}))

	found, err := repo.FindActiveByUser(ctx, seeded.UserID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, second, *found.Items[0].ProductID)
	assert.Equal(t, 5, found.Items[0].Quantity)

	require.NoError(t, repo.ReplaceItems(ctx, seeded.ID, nil))
	found, err = repo.FindActiveByUser(ctx, seeded.UserID)
	require.NoError(t, err)
	assert.Empty(t, found.Items)
}

func TestRepositoryReplaceLockedItems(t *testing.T) {
	t.Parallel()

	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	seeded := seedCart(t, repo, uuid.New())

	now := time.Now()
	require.NoError(t, repo.ReplaceLockedItems(ctx, seeded.ID, []models.LockedItem{{
		ID:            uuid.New(),
		ProductRef:    uuid.New().String(),
		Quantity:      1,
		LockedPrice:   80,
		OriginalPrice: 100,
		LockedAt:      now,
		ExpiresAt:     now.Add(24 * time.Hour),
	}}))

	found, err := repo.FindActiveByUser(ctx, seeded.UserID)
	require.NoError(t, err)
	require.Len(t, found.LockedItems, 1)
	assert.Equal(t, 80.0, found.LockedItems[0].LockedPrice)
}

func TestRepositorySweeperQueries(t *testing.T) {
	t.Parallel()

	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	expired := seedCart(t, repo, uuid.New())
	expired.ExpiresAt = now.Add(-time.Hour)
	_, err := repo.Update(ctx, expired)
	require.NoError(t, err)

	live := seedCart(t, repo, uuid.New())
	require.NoError(t, repo.ReplaceLockedItems(ctx, live.ID, []models.LockedItem{
		{
			ID:            uuid.New(),
			ProductRef:    uuid.New().String(),
			Quantity:      1,
			LockedPrice:   10,
			OriginalPrice: 10,
			LockedAt:      now.Add(-48 * time.Hour),
			ExpiresAt:     now.Add(-time.Minute),
		},
		{
			ID:            uuid.New(),
			ProductRef:    uuid.New().String(),
			Quantity:      1,
			LockedPrice:   10,
			OriginalPrice: 10,
			LockedAt:      now,
			ExpiresAt:     now.Add(time.Hour),
		},
	}))

	deactivated, err := repo.DeactivateCartsBefore(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deactivated)

	_, err = repo.FindActiveByUser(ctx, expired.UserID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	removed, err := repo.DeleteLocksExpiredBefore(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	found, err := repo.FindActiveByUser(ctx, live.UserID)
	require.NoError(t, err)
	require.Len(t, found.LockedItems, 1)
	assert.True(t, found.LockedItems[0].ExpiresAt.After(now))
}

func TestRepositoryWithTxRollback(t *testing.T) {
	t.Parallel()

	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	seeded := seedCart(t, repo, uuid.New())
	productID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		bound := repo.WithTx(tx)
		if err := bound.ReplaceItems(ctx, seeded.ID, []models.CartItem{
			{ID: uuid.New(), ProductID: &productID, Quantity: 1, Price: 10, AddedAt: time.Now()},
		}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	found, err := repo.FindActiveByUser(ctx, seeded.UserID)
	require.NoError(t, err)
	assert.Empty(t, found.Items)
}
