package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/calebreyes/tradepost-backend/internal/inventory"
	"github.com/calebreyes/tradepost-backend/pkg/db/models"
	"github.com/calebreyes/tradepost-backend/pkg/enums"
	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
	"github.com/calebreyes/tradepost-backend/pkg/outbox"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, schema := range []string{
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  shipping_address_id TEXT NOT NULL,
  billing_address_id TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  subtotal_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME,
  cancelled_at DATETIME,
  delivered_at DATETIME,
  idempotency_token TEXT
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  seller_id TEXT NOT NULL,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
  image_url TEXT,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS inventory_items (
  product_id TEXT PRIMARY KEY,
  available_qty INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
	} {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := setupOrdersTestDB(t)
	svc, err := NewService(
		NewRepository(db),
		gormTxRunner{db: db},
		outbox.NewService(outbox.NewRepository(db), nil),
		inventory.NewRepository(db),
	)
	require.NoError(t, err)
	return svc, db
}

func seedOrder(t *testing.T, db *gorm.DB, buyerID uuid.UUID, status enums.OrderStatus, productID uuid.UUID, qty int) *models.Order {
	t.Helper()
	pid := productID
	order := &models.Order{
		ID:                uuid.New(),
		BuyerID:           buyerID,
		ShippingAddressID: uuid.New(),
		BillingAddressID:  uuid.New(),
		Currency:          enums.CurrencyUSD,
		SubtotalCents:     int64(qty) * 1000,
		TotalCents:        int64(qty) * 1000,
		Status:            status,
		PaymentStatus:     enums.PaymentStatusPending,
	}
	require.NoError(t, db.Omit("Items").Create(order).Error)

	item := &models.OrderItem{
		ID:             uuid.New(),
		OrderID:        order.ID,
		ProductID:      &pid,
		SellerID:       uuid.New(),
		Name:           "Test Item",
		SKU:            "SKU-1",
		UnitPriceCents: 1000,
		Qty:            qty,
		TotalCents:     int64(qty) * 1000,
	}
	require.NoError(t, db.Create(item).Error)
	return order
}

func TestGetScopedToBuyer(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	buyerID := uuid.New()
	order := seedOrder(t, db, buyerID, enums.OrderStatusPending, uuid.New(), 2)

	dto, err := svc.Get(ctx, order.ID, buyerID)
	require.NoError(t, err)
	require.Equal(t, order.ID, dto.ID)
	require.Len(t, dto.Items, 1)
	require.Equal(t, "20.00", dto.Total)

	// someone else's order reads as not found, not forbidden
	_, err = svc.Get(ctx, order.ID, uuid.New())
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestUpdateStatusHappyPath(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	buyerID := uuid.New()
	order := seedOrder(t, db, buyerID, enums.OrderStatusPending, uuid.New(), 1)

	dto, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID: order.ID,
		BuyerID: buyerID,
		Status:  enums.OrderStatusConfirmed,
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusConfirmed, dto.Status)

	var events []models.OutboxEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, enums.EventOrderStatusChanged, events[0].EventType)
}

func TestUpdateStatusRejectsInvalidTransitions(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	buyerID := uuid.New()

	cases := []struct {
		name string
		from enums.OrderStatus
		to   enums.OrderStatus
	}{
		{"pending to delivered", enums.OrderStatusPending, enums.OrderStatusDelivered},
		{"delivered to cancelled", enums.OrderStatusDelivered, enums.OrderStatusCancelled},
		{"cancelled is terminal", enums.OrderStatusCancelled, enums.OrderStatusConfirmed},
		{"same status", enums.OrderStatusPending, enums.OrderStatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := seedOrder(t, db, buyerID, tc.from, uuid.New(), 1)
			_, err := svc.UpdateStatus(ctx, UpdateStatusInput{
				OrderID: order.ID,
				BuyerID: buyerID,
				Status:  tc.to,
			})
			coded := pkgerrors.As(err)
			require.NotNil(t, coded)
			require.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
		})
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, db := newTestService(t)
	buyerID := uuid.New()
	order := seedOrder(t, db, buyerID, enums.OrderStatusPending, uuid.New(), 1)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: order.ID,
		BuyerID: buyerID,
		Status:  enums.OrderStatus("shipped_back"),
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestCancelRestoresInventory(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	buyerID := uuid.New()
	productID := uuid.New()
	require.NoError(t, db.Create(&models.InventoryItem{ProductID: productID, AvailableQty: 3}).Error)
	order := seedOrder(t, db, buyerID, enums.OrderStatusPending, productID, 2)

	dto, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID: order.ID,
		BuyerID: buyerID,
		Status:  enums.OrderStatusCancelled,
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, dto.Status)
	require.NotNil(t, dto.CancelledAt)

	var item models.InventoryItem
	require.NoError(t, db.First(&item, "product_id = ?", productID).Error)
	require.Equal(t, 5, item.AvailableQty)

	var events []models.OutboxEvent
	require.NoError(t, db.Order("created_at ASC").Find(&events).Error)
	require.Len(t, events, 2)
	types := []enums.OutboxEventType{events[0].EventType, events[1].EventType}
	require.Contains(t, types, enums.EventStockRestored)
	require.Contains(t, types, enums.EventOrderStatusChanged)
}

func TestCancelSkipsDeletedProducts(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	buyerID := uuid.New()
	// no inventory row exists for this product anymore
	order := seedOrder(t, db, buyerID, enums.OrderStatusPending, uuid.New(), 2)

	dto, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID: order.ID,
		BuyerID: buyerID,
		Status:  enums.OrderStatusCancelled,
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, dto.Status)
}
