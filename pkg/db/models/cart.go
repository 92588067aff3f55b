package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar-backend/pkg/types"
)

// Cart is the per-user aggregate owning items, price locks, reservations and
// the derived totals breakdown. One active cart exists per user; the record is
// replaced as a unit on every mutation.
type Cart struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID            `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_carts_user_active,where:is_active"`
	Items           []CartItem           `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	ReservedItems   []ReservedItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	LockedItems     []LockedItem         `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	Totals          types.CartTotals     `gorm:"column:totals;type:jsonb;serializer:json"`
	Coupon          *types.AppliedCoupon `gorm:"column:coupon;type:jsonb;serializer:json"`
	DeliveryAddress *types.Address       `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	Instructions    *string              `gorm:"column:instructions"`
	IsActive        bool                 `gorm:"column:is_active;not null;default:true"`
	ExpiresAt       time.Time            `gorm:"column:expires_at;not null"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
