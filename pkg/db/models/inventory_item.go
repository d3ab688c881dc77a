package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem tracks the available count per product. The available_qty
// column carries a CHECK (available_qty >= 0) constraint in Postgres.
type InventoryItem struct {
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
