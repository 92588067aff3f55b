package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar-backend/pkg/types"
)

// CartItem is one line in a cart. Exactly one of ProductID/EventID is set.
// Price, OriginalPrice and Discount are snapshots taken when the item was
// added; they are not re-fetched from the catalog on read.
type CartItem struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID        uuid.UUID      `gorm:"column:cart_id;type:uuid;not null"`
	ProductID     *uuid.UUID     `gorm:"column:product_id;type:uuid"`
	EventID       *uuid.UUID     `gorm:"column:event_id;type:uuid"`
	StoreID       *uuid.UUID     `gorm:"column:store_id;type:uuid"`
	Quantity      int            `gorm:"column:quantity;not null"`
	Variant       *types.Variant `gorm:"column:variant;type:jsonb;serializer:json"`
	Price         float64        `gorm:"column:price;not null"`
	OriginalPrice *float64       `gorm:"column:original_price"`
	Discount      *float64       `gorm:"column:discount"`
	AddedAt       time.Time      `gorm:"column:added_at;not null"`
	Notes         *string        `gorm:"column:notes"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// HasValidRef reports whether the item carries exactly one owning reference.
func (i CartItem) HasValidRef() bool {
	return (i.ProductID != nil) != (i.EventID != nil)
}
