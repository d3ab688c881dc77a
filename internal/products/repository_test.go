package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/calebreyes/tradepost-backend/pkg/db/models"
	"github.com/calebreyes/tradepost-backend/pkg/enums"
	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	productsSchema := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  image_url TEXT,
  price_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`
	inventorySchema := `
CREATE TABLE IF NOT EXISTS inventory_items (
  product_id TEXT PRIMARY KEY,
  available_qty INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(productsSchema).Error)
	require.NoError(t, db.Exec(inventorySchema).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, status enums.ProductStatus, qty int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		SellerID:   uuid.New(),
		SKU:        "SKU-001",
		Name:       "Walnut Desk Organizer",
		PriceCents: 2499,
		Currency:   enums.CurrencyUSD,
		Status:     status,
	}
	require.NoError(t, db.Create(product).Error)
	require.NoError(t, db.Create(&models.InventoryItem{ProductID: product.ID, AvailableQty: qty}).Error)
	return product
}

func TestFindByIDPreloadsInventory(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	product := seedProduct(t, db, enums.ProductStatusActive, 7)

	found, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, product.ID, found.ID)
	require.NotNil(t, found.Inventory)
	require.Equal(t, 7, found.Inventory.AvailableQty)
}

func TestFindByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	var coded *pkgerrors.Error
	require.ErrorAs(t, err, &coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestFindActiveByIDRejectsArchived(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	product := seedProduct(t, db, enums.ProductStatusArchived, 3)

	_, err := repo.FindActiveByID(context.Background(), product.ID)
	require.Error(t, err)
	var coded *pkgerrors.Error
	require.ErrorAs(t, err, &coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestFindByIDsReturnsOnlyExisting(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	a := seedProduct(t, db, enums.ProductStatusActive, 1)
	b := seedProduct(t, db, enums.ProductStatusActive, 2)
	missing := uuid.New()

	found, err := repo.FindByIDs(context.Background(), []uuid.UUID{a.ID, b.ID, missing})
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Contains(t, found, a.ID)
	require.Contains(t, found, b.ID)
	require.NotContains(t, found, missing)

	empty, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}
