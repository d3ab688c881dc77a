package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebreyes/tradepost-backend/internal/inventory"
	"github.com/calebreyes/tradepost-backend/pkg/db/models"
	"github.com/calebreyes/tradepost-backend/pkg/enums"
	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
	"github.com/calebreyes/tradepost-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines order reads and lifecycle transitions.
type Service interface {
	Get(ctx context.Context, orderID, buyerID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
}

// UpdateStatusInput carries the data required to move an order through its lifecycle.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	BuyerID uuid.UUID
	Status  enums.OrderStatus
}

// OrderStatusChangedEvent is emitted when an order changes lifecycle state.
type OrderStatusChangedEvent struct {
	OrderID uuid.UUID         `json:"order_id"`
	BuyerID uuid.UUID         `json:"buyer_id"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
}

// StockRestoredEvent is emitted when cancellation returns units to inventory.
type StockRestoredEvent struct {
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Qty       int       `json:"qty"`
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	inventory inventory.Ledger
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, ledger inventory.Ledger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    publisher,
		inventory: ledger,
	}, nil
}

// Get loads an order owned by the buyer.
func (s *service) Get(ctx context.Context, orderID, buyerID uuid.UUID) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	order, err := s.repo.FindByIDAndBuyer(ctx, orderID, buyerID)
	if err != nil {
		return nil, err
	}
	return ToDTO(order), nil
}

// UpdateStatus moves the order along its lifecycle. Cancelling a pending or
// confirmed order returns the reserved units to inventory in the same
// transaction as the status write.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.Status))
	}

	var result *OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDAndBuyer(ctx, input.OrderID, input.BuyerID)
		if err != nil {
			return err
		}
		if order.Status == input.Status {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already in requested status")
		}
		if !order.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot transition order from %s to %s", order.Status, input.Status))
		}

		if err := repo.UpdateStatus(ctx, order.ID, input.Status); err != nil {
			return err
		}

		if input.Status == enums.OrderStatusCancelled {
			if err := s.restoreStock(ctx, tx, order.ID, order.Items); err != nil {
				return err
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{BuyerID: input.BuyerID},
			Data: OrderStatusChangedEvent{
				OrderID: order.ID,
				BuyerID: order.BuyerID,
				From:    order.Status,
				To:      input.Status,
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		updated, err := repo.FindByIDAndBuyer(ctx, input.OrderID, input.BuyerID)
		if err != nil {
			return err
		}
		result = ToDTO(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) restoreStock(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, items []models.OrderItem) error {
	ledger := s.inventory.WithTx(tx)
	for _, item := range items {
		if item.ProductID == nil {
			// product row deleted since checkout, nothing to restore into
			continue
		}
		if err := ledger.Increment(ctx, *item.ProductID, item.Qty); err != nil {
			if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeNotFound {
				continue
			}
			return err
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventStockRestored,
			AggregateType: enums.AggregateProduct,
			AggregateID:   *item.ProductID,
			Data: StockRestoredEvent{
				OrderID:   orderID,
				ProductID: *item.ProductID,
				Qty:       item.Qty,
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
	}
	return nil
}
