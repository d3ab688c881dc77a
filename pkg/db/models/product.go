package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebreyes/tradepost-backend/pkg/enums"
)

// Product represents a seller listing.
type Product struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID   uuid.UUID           `gorm:"column:seller_id;type:uuid;not null"`
	SKU        string              `gorm:"column:sku;not null"`
	Name       string              `gorm:"column:name;not null"`
	ImageURL   *string             `gorm:"column:image_url"`
	PriceCents int64               `gorm:"column:price_cents;not null"`
	Currency   enums.Currency      `gorm:"column:currency;type:text;not null;default:'USD'"`
	Status     enums.ProductStatus `gorm:"column:status;type:product_status;not null;default:'active'"`
	Inventory  *InventoryItem      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
