package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
)

// Ledger defines the stock mutation surface used by checkout and order flows.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	DecrementIfAvailable(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	Increment(ctx context.Context, productID uuid.UUID, qty int) error
}

// Repository implements Ledger on top of inventory_items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) Ledger {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// DecrementIfAvailable subtracts qty from the product's available count only
// when enough stock remains. The guard lives in the WHERE clause so two
// concurrent checkouts can never both win the last unit: the row is updated
// atomically and a zero rows-affected result means the stock check failed.
func (r *Repository) DecrementIfAvailable(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if productID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventory_items
		SET available_qty = available_qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND available_qty >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement inventory")
	}
	return res.RowsAffected > 0, nil
}

// Increment restores qty units to the product's available count. Used when a
// checkout unwinds earlier reservations and when an order is cancelled.
func (r *Repository) Increment(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventory_items
		SET available_qty = available_qty + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ?
	`, qty, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "restore inventory")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory record not found")
	}
	return nil
}
