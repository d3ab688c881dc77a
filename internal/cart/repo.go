package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebreyes/tradepost-backend/pkg/db/models"
	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
)

// Repository exposes persistence operations for cart lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindLine loads the buyer's line for the given product, nil when absent.
func (r *Repository) FindLine(ctx context.Context, buyerID, productID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	return &line, nil
}

// ListByBuyer returns the buyer's open cart lines, oldest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}
	return lines, nil
}

// Create inserts a new cart line.
func (r *Repository) Create(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart line")
	}
	return line, nil
}

// UpdateQuantity sets the quantity on an existing line and reports how many rows matched.
func (r *Repository) UpdateQuantity(ctx context.Context, buyerID, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		Update("quantity", qty)
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update cart line")
	}
	return res.RowsAffected, nil
}

// Delete removes the buyer's line for the given product and reports how many rows matched.
func (r *Repository) Delete(ctx context.Context, buyerID, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "delete cart line")
	}
	return res.RowsAffected, nil
}

// DeleteByBuyer removes every line in the buyer's cart.
func (r *Repository) DeleteByBuyer(ctx context.Context, buyerID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Delete(&models.CartLine{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
