package orders

import (
	"github.com/google/uuid"

	"github.com/calebreyes/tradepost-backend/pkg/db/models"
	"github.com/calebreyes/tradepost-backend/pkg/enums"
	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
	"github.com/calebreyes/tradepost-backend/pkg/money"
)

// BuildLine pairs a product row with the quantity being purchased.
type BuildLine struct {
	Product models.Product
	Qty     int
}

// BuildInput carries everything needed to assemble an order header. Address
// ids are references into the external address service; they arrive already
// validated.
type BuildInput struct {
	ShippingAddressID uuid.UUID
	BillingAddressID  uuid.UUID
	Currency          enums.Currency
	IdempotencyToken  *string
	Lines             []BuildLine
}

// BuildOrder assembles an unsaved order with frozen item snapshots. Name,
// SKU, image and unit price are copied off the product rows so the order
// reads the same forever, whatever the seller edits later.
func BuildOrder(buyerID uuid.UUID, input BuildInput) (*models.Order, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if input.ShippingAddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address id is required")
	}
	if input.BillingAddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "billing address id is required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "order must contain at least one item")
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}

	order := &models.Order{
		ID:                uuid.New(),
		BuyerID:           buyerID,
		ShippingAddressID: input.ShippingAddressID,
		BillingAddressID:  input.BillingAddressID,
		Currency:          currency,
		Status:            enums.OrderStatusPending,
		PaymentStatus:     enums.PaymentStatusPending,
		IdempotencyToken:  input.IdempotencyToken,
	}

	items := make([]models.OrderItem, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		product := line.Product
		productID := product.ID
		lineTotal := money.LineTotalCents(product.PriceCents, line.Qty)
		items = append(items, models.OrderItem{
			ID:             uuid.New(),
			OrderID:        order.ID,
			ProductID:      &productID,
			SellerID:       product.SellerID,
			Name:           product.Name,
			SKU:            product.SKU,
			ImageURL:       product.ImageURL,
			UnitPriceCents: product.PriceCents,
			Qty:            line.Qty,
			TotalCents:     lineTotal,
		})
		order.SubtotalCents += lineTotal
	}

	order.Items = items
	order.TotalCents = order.SubtotalCents
	return order, nil
}
