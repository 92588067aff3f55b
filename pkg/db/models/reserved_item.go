package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar-backend/pkg/types"
)

// ReservedItem is a quantity hold against available stock, distinct from a
// price lock. The shape is persisted and swept but no cart operation creates
// one yet; reservation flows are an extension point for checkout.
type ReservedItem struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID     uuid.UUID      `gorm:"column:cart_id;type:uuid;not null"`
	ProductID  uuid.UUID      `gorm:"column:product_id;type:uuid;not null"`
	Quantity   int            `gorm:"column:quantity;not null"`
	Variant    *types.Variant `gorm:"column:variant;type:jsonb;serializer:json"`
	ReservedAt time.Time      `gorm:"column:reserved_at;not null"`
	ExpiresAt  time.Time      `gorm:"column:expires_at;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
}
