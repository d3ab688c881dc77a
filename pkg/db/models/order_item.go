package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a frozen snapshot of a product at checkout time. Later edits
// to the product row never reach back into a committed order, so the product
// fields are copied here rather than joined.
type OrderItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid"`
	SellerID       uuid.UUID  `gorm:"column:seller_id;type:uuid;not null"`
	Name           string     `gorm:"column:name;not null"`
	SKU            string     `gorm:"column:sku;not null"`
	ImageURL       *string    `gorm:"column:image_url"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents;not null"`
	Qty            int        `gorm:"column:qty;not null"`
	TotalCents     int64      `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
