package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar-backend/pkg/types"
)

// Product is the catalog read model consumed by the cart engine. The engine
// reads stock and prices from it but never mutates catalog state. Two price
// shapes coexist: Pricing is the current one, Price the legacy one still
// present on older listings.
type Product struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   *uuid.UUID           `gorm:"column:store_id;type:uuid"`
	Title     string               `gorm:"column:title;not null"`
	IsActive  bool                 `gorm:"column:is_active;not null;default:true"`
	Inventory *ProductInventory    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Price     *types.PriceFields   `gorm:"column:price;type:jsonb;serializer:json"`
	Pricing   *types.PricingFields `gorm:"column:pricing;type:jsonb;serializer:json"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductInventory tracks availability counts per product.
type ProductInventory struct {
	ProductID   uuid.UUID        `gorm:"column:product_id;type:uuid;primaryKey"`
	Stock       int              `gorm:"column:stock;not null;default:0"`
	IsAvailable bool             `gorm:"column:is_available;not null;default:true"`
	Unlimited   bool             `gorm:"column:unlimited;not null;default:false"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductVariant is a sub-SKU with its own stock count.
type ProductVariant struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Type      string    `gorm:"column:type;not null"`
	Value     string    `gorm:"column:value;not null"`
	Stock     int       `gorm:"column:stock;not null;default:0"`
}
