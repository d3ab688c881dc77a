package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebreyes/tradepost-backend/internal/products"
	"github.com/calebreyes/tradepost-backend/pkg/db/models"
	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart operations keyed by buyer.
type Service interface {
	AddItem(ctx context.Context, buyerID, productID uuid.UUID, qty int) (*Snapshot, error)
	UpdateItem(ctx context.Context, buyerID, productID uuid.UUID, qty int) (*Snapshot, error)
	RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) (*Snapshot, error)
	Clear(ctx context.Context, buyerID uuid.UUID) (*Snapshot, error)
	GetSnapshot(ctx context.Context, buyerID uuid.UUID) (*Snapshot, error)
}

type service struct {
	repo        CartRepository
	tx          txRunner
	productRepo products.Loader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, productRepo products.Loader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{
		repo:        repo,
		tx:          tx,
		productRepo: productRepo,
	}, nil
}

// AddItem appends qty units of the product to the buyer's cart. Adding a
// product that is already in the cart merges into the existing line. The
// stock check here is advisory only; checkout re-checks inside its
// transaction.
func (s *service) AddItem(ctx context.Context, buyerID, productID uuid.UUID, qty int) (*Snapshot, error) {
	if err := validateLineInput(buyerID, productID, qty); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindActiveByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		line, err := repo.FindLine(ctx, buyerID, productID)
		if err != nil {
			return err
		}
		resulting := qty
		if line != nil {
			resulting += line.Quantity
		}
		if err := checkAvailable(product, resulting); err != nil {
			return err
		}
		if line != nil {
			_, err := repo.UpdateQuantity(ctx, buyerID, productID, resulting)
			return err
		}
		_, err = repo.Create(ctx, &models.CartLine{
			BuyerID:   buyerID,
			ProductID: productID,
			Quantity:  qty,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetSnapshot(ctx, buyerID)
}

// UpdateItem overwrites the quantity on an existing line. A quantity of zero
// removes the line.
func (s *service) UpdateItem(ctx context.Context, buyerID, productID uuid.UUID, qty int) (*Snapshot, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if qty == 0 {
		return s.RemoveItem(ctx, buyerID, productID)
	}

	product, err := s.productRepo.FindActiveByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := checkAvailable(product, qty); err != nil {
		return nil, err
	}

	rows, err := s.repo.UpdateQuantity(ctx, buyerID, productID, qty)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	return s.GetSnapshot(ctx, buyerID)
}

// RemoveItem drops the product from the buyer's cart.
func (s *service) RemoveItem(ctx context.Context, buyerID, productID uuid.UUID) (*Snapshot, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	rows, err := s.repo.Delete(ctx, buyerID, productID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	return s.GetSnapshot(ctx, buyerID)
}

// Clear empties the buyer's cart and returns the now-empty snapshot.
// Clearing an already empty cart succeeds.
func (s *service) Clear(ctx context.Context, buyerID uuid.UUID) (*Snapshot, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if err := s.repo.DeleteByBuyer(ctx, buyerID); err != nil {
		return nil, err
	}
	return s.GetSnapshot(ctx, buyerID)
}

// GetSnapshot prices the buyer's cart against the current product rows.
func (s *service) GetSnapshot(ctx context.Context, buyerID uuid.UUID) (*Snapshot, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	lines, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	productsByID, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return buildSnapshot(buyerID, lines, productsByID), nil
}

func checkAvailable(product *models.Product, qty int) error {
	available := 0
	if product.Inventory != nil {
		available = product.Inventory.AvailableQty
	}
	if qty > available {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock available").
			WithDetails(map[string]any{
				"product_id": product.ID.String(),
				"available":  available,
				"requested":  qty,
			})
	}
	return nil
}

func validateLineInput(buyerID, productID uuid.UUID, qty int) error {
	if buyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return nil
}
