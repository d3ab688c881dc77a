package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebreyes/tradepost-backend/pkg/db/models"
	"github.com/calebreyes/tradepost-backend/pkg/enums"
	"github.com/calebreyes/tradepost-backend/pkg/money"
)

// OrderItemDTO exposes one frozen line of an order.
type OrderItemDTO struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	SellerID       uuid.UUID  `json:"seller_id"`
	Name           string     `json:"name"`
	SKU            string     `json:"sku"`
	ImageURL       *string    `json:"image_url,omitempty"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	Qty            int        `json:"qty"`
	TotalCents     int64      `json:"total_cents"`
}

// OrderDTO exposes the order header with its items.
type OrderDTO struct {
	ID                uuid.UUID           `json:"id"`
	BuyerID           uuid.UUID           `json:"buyer_id"`
	ShippingAddressID uuid.UUID           `json:"shipping_address_id"`
	BillingAddressID  uuid.UUID           `json:"billing_address_id"`
	Currency          enums.Currency      `json:"currency"`
	SubtotalCents     int64               `json:"subtotal_cents"`
	TotalCents        int64               `json:"total_cents"`
	Total             string              `json:"total"`
	Status            enums.OrderStatus   `json:"status"`
	PaymentStatus     enums.PaymentStatus `json:"payment_status"`
	Items             []OrderItemDTO      `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	CancelledAt       *time.Time          `json:"cancelled_at,omitempty"`
	DeliveredAt       *time.Time          `json:"delivered_at,omitempty"`
}

// ToDTO maps the persisted order into its API shape.
func ToDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			SellerID:       item.SellerID,
			Name:           item.Name,
			SKU:            item.SKU,
			ImageURL:       item.ImageURL,
			UnitPriceCents: item.UnitPriceCents,
			Qty:            item.Qty,
			TotalCents:     item.TotalCents,
		})
	}
	return &OrderDTO{
		ID:                order.ID,
		BuyerID:           order.BuyerID,
		ShippingAddressID: order.ShippingAddressID,
		BillingAddressID:  order.BillingAddressID,
		Currency:          order.Currency,
		SubtotalCents:     order.SubtotalCents,
		TotalCents:        order.TotalCents,
		Total:             money.Format(order.TotalCents, order.Currency),
		Status:            order.Status,
		PaymentStatus:     order.PaymentStatus,
		Items:             items,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
		CancelledAt:       order.CancelledAt,
		DeliveredAt:       order.DeliveredAt,
	}
}
