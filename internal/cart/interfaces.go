package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebreyes/tradepost-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindLine(ctx context.Context, buyerID, productID uuid.UUID) (*models.CartLine, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.CartLine, error)
	Create(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	UpdateQuantity(ctx context.Context, buyerID, productID uuid.UUID, qty int) (int64, error)
	Delete(ctx context.Context, buyerID, productID uuid.UUID) (int64, error)
	DeleteByBuyer(ctx context.Context, buyerID uuid.UUID) error
}
