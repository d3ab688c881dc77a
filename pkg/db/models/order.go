package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebreyes/tradepost-backend/pkg/enums"
)

// Order is the buyer-facing order header produced by checkout.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID           uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null"`
	ShippingAddressID uuid.UUID           `gorm:"column:shipping_address_id;type:uuid;not null"`
	BillingAddressID  uuid.UUID           `gorm:"column:billing_address_id;type:uuid;not null"`
	Currency          enums.Currency      `gorm:"column:currency;type:text;not null;default:'USD'"`
	SubtotalCents     int64               `gorm:"column:subtotal_cents;not null"`
	TotalCents        int64               `gorm:"column:total_cents;not null"`
	Status            enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	CancelledAt       *time.Time          `gorm:"column:cancelled_at"`
	DeliveredAt       *time.Time          `gorm:"column:delivered_at"`
	IdempotencyToken  *string             `gorm:"column:idempotency_token"`
}
