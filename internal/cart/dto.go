package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/calebreyes/tradepost-backend/pkg/db/models"
	"github.com/calebreyes/tradepost-backend/pkg/enums"
	"github.com/calebreyes/tradepost-backend/pkg/money"
)

// SnapshotLine is one cart line priced against the current product row.
type SnapshotLine struct {
	ProductID      uuid.UUID `json:"product_id"`
	SellerID       uuid.UUID `json:"seller_id"`
	Name           string    `json:"name"`
	SKU            string    `json:"sku"`
	ImageURL       *string   `json:"image_url,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	LineTotalCents int64     `json:"line_total_cents"`
	AvailableQty   int       `json:"available_qty"`
	Unavailable    bool      `json:"unavailable,omitempty"`
	AddedAt        time.Time `json:"added_at"`
}

// Snapshot is the buyer's cart with totals computed at read time. Prices come
// from the product rows as they are now, not as they were when added.
type Snapshot struct {
	BuyerID       uuid.UUID      `json:"buyer_id"`
	Lines         []SnapshotLine `json:"lines"`
	ItemCount     int            `json:"item_count"`
	SubtotalCents int64          `json:"subtotal_cents"`
	Subtotal      string         `json:"subtotal"`
	Currency      enums.Currency `json:"currency"`
}

func buildSnapshot(buyerID uuid.UUID, lines []models.CartLine, productsByID map[uuid.UUID]models.Product) *Snapshot {
	snapshot := &Snapshot{
		BuyerID:  buyerID,
		Lines:    make([]SnapshotLine, 0, len(lines)),
		Currency: enums.CurrencyUSD,
	}

	for _, line := range lines {
		product, ok := productsByID[line.ProductID]
		if !ok || product.Status != enums.ProductStatusActive {
			// listing removed or archived since the line was added
			snapshot.Lines = append(snapshot.Lines, SnapshotLine{
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				Unavailable: true,
				AddedAt:     line.CreatedAt,
			})
			continue
		}

		available := 0
		if product.Inventory != nil {
			available = product.Inventory.AvailableQty
		}
		lineTotal := money.LineTotalCents(product.PriceCents, line.Quantity)
		snapshot.Lines = append(snapshot.Lines, SnapshotLine{
			ProductID:      product.ID,
			SellerID:       product.SellerID,
			Name:           product.Name,
			SKU:            product.SKU,
			ImageURL:       product.ImageURL,
			Quantity:       line.Quantity,
			UnitPriceCents: product.PriceCents,
			LineTotalCents: lineTotal,
			AvailableQty:   available,
			AddedAt:        line.CreatedAt,
		})
		snapshot.ItemCount += line.Quantity
		snapshot.SubtotalCents += lineTotal
	}

	snapshot.Subtotal = money.Format(snapshot.SubtotalCents, snapshot.Currency)
	return snapshot
}
