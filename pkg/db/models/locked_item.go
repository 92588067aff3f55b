package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar-backend/pkg/types"
)

// LockedItem is a time-boxed quote lease: a promise that LockedPrice is
// honored for the product/variant until ExpiresAt. ProductRef is stored as raw
// text because historical records contain serialized product documents instead
// of bare identifiers; readers must normalize before comparing.
type LockedItem struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID        uuid.UUID      `gorm:"column:cart_id;type:uuid;not null"`
	ProductRef    string         `gorm:"column:product_ref;not null"`
	StoreID       *uuid.UUID     `gorm:"column:store_id;type:uuid"`
	Quantity      int            `gorm:"column:quantity;not null"`
	Variant       *types.Variant `gorm:"column:variant;type:jsonb;serializer:json"`
	LockedPrice   float64        `gorm:"column:locked_price;not null"`
	OriginalPrice float64        `gorm:"column:original_price;not null"`
	LockedAt      time.Time      `gorm:"column:locked_at;not null"`
	ExpiresAt     time.Time      `gorm:"column:expires_at;not null"`
	Notes         *string        `gorm:"column:notes"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// Expired reports whether the lease has lapsed at the given instant.
func (l LockedItem) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}
