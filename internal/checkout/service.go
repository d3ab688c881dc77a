package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calebreyes/tradepost-backend/internal/cart"
	"github.com/calebreyes/tradepost-backend/internal/inventory"
	"github.com/calebreyes/tradepost-backend/internal/orders"
	"github.com/calebreyes/tradepost-backend/internal/products"
	"github.com/calebreyes/tradepost-backend/pkg/enums"
	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
	"github.com/calebreyes/tradepost-backend/pkg/logger"
	"github.com/calebreyes/tradepost-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service converts a buyer's cart into an order.
type Service interface {
	Execute(ctx context.Context, input ExecuteInput) (*orders.OrderDTO, error)
}

// ExecuteInput carries the checkout request. Address ids reference the
// external address service and arrive already validated; a missing billing
// id falls back to the shipping id.
type ExecuteInput struct {
	BuyerID           uuid.UUID
	ShippingAddressID uuid.UUID
	BillingAddressID  uuid.UUID
	IdempotencyToken  *string
}

// CheckoutCompletedEvent is emitted once per successful checkout.
type CheckoutCompletedEvent struct {
	OrderID    uuid.UUID      `json:"order_id"`
	BuyerID    uuid.UUID      `json:"buyer_id"`
	TotalCents int64          `json:"total_cents"`
	Currency   enums.Currency `json:"currency"`
	ItemCount  int            `json:"item_count"`
}

type service struct {
	tx          txRunner
	cartRepo    cart.CartRepository
	ordersRepo  orders.Repository
	productRepo products.Loader
	ledger      inventory.Ledger
	outbox      outboxPublisher
	logg        *logger.Logger
	currency    enums.Currency
}

// NewService builds the checkout orchestrator with its dependencies.
func NewService(
	tx txRunner,
	cartRepo cart.CartRepository,
	ordersRepo orders.Repository,
	productRepo products.Loader,
	ledger inventory.Ledger,
	publisher outboxPublisher,
	logg *logger.Logger,
	currency enums.Currency,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	return &service{
		tx:          tx,
		cartRepo:    cartRepo,
		ordersRepo:  ordersRepo,
		productRepo: productRepo,
		ledger:      ledger,
		outbox:      publisher,
		logg:        logg,
		currency:    currency,
	}, nil
}

// Execute runs the whole checkout inside one database transaction: read the
// cart, validate every line, conditionally reserve stock, freeze the order,
// clear the cart and queue the completion event. Any failure after the first
// write rolls the entire transaction back, so stock is never left reserved
// for an order that does not exist.
//
// A reused idempotency token short-circuits to the order it produced instead
// of reserving stock twice.
func (s *service) Execute(ctx context.Context, input ExecuteInput) (*orders.OrderDTO, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if input.ShippingAddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address id is required")
	}
	if input.BillingAddressID == uuid.Nil {
		input.BillingAddressID = input.ShippingAddressID
	}

	if input.IdempotencyToken != nil && *input.IdempotencyToken != "" {
		existing, err := s.ordersRepo.FindByIdempotencyToken(ctx, *input.IdempotencyToken)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if existing.BuyerID != input.BuyerID {
				return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency token already used")
			}
			s.logState(ctx, input.BuyerID, StateCommitted, "checkout replayed from idempotency token")
			return orders.ToDTO(existing), nil
		}
	}

	state := StateReceived
	var result *orders.OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		lines, err := cartRepo.ListByBuyer(ctx, input.BuyerID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}

		state = StateValidating
		productIDs := make([]uuid.UUID, 0, len(lines))
		requests := make([]LineRequest, 0, len(lines))
		for _, line := range lines {
			productIDs = append(productIDs, line.ProductID)
			requests = append(requests, LineRequest{ProductID: line.ProductID, Qty: line.Quantity})
		}
		productsByID, err := s.productRepo.WithTx(tx).FindByIDs(ctx, productIDs)
		if err != nil {
			return err
		}
		if err := ValidateStock(input.BuyerID, requests, productsByID); err != nil {
			state = StateRejected
			return err
		}

		state = StateReserving
		buildLines := make([]orders.BuildLine, 0, len(lines))
		for _, line := range lines {
			ok, err := ledger.DecrementIfAvailable(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// someone else got the units between validation and here
				state = StateRolledBack
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("insufficient stock for product %s", line.ProductID))
			}
			buildLines = append(buildLines, orders.BuildLine{
				Product: productsByID[line.ProductID],
				Qty:     line.Quantity,
			})
		}

		order, err := orders.BuildOrder(input.BuyerID, orders.BuildInput{
			ShippingAddressID: input.ShippingAddressID,
			BillingAddressID:  input.BillingAddressID,
			Currency:          s.currency,
			IdempotencyToken:  input.IdempotencyToken,
			Lines:             buildLines,
		})
		if err != nil {
			return err
		}
		if _, err := ordersRepo.Create(ctx, order); err != nil {
			return err
		}
		if err := ordersRepo.CreateItems(ctx, order.Items); err != nil {
			return err
		}

		if err := cartRepo.DeleteByBuyer(ctx, input.BuyerID); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventCheckoutCompleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{BuyerID: input.BuyerID},
			Data: CheckoutCompletedEvent{
				OrderID:    order.ID,
				BuyerID:    input.BuyerID,
				TotalCents: order.TotalCents,
				Currency:   order.Currency,
				ItemCount:  len(order.Items),
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		saved, err := ordersRepo.FindByID(ctx, order.ID)
		if err != nil {
			return err
		}
		state = StateCommitted
		result = orders.ToDTO(saved)
		return nil
	})
	if err != nil {
		if state != StateRejected && state != StateRolledBack {
			state = StateRolledBack
		}
		s.logState(ctx, input.BuyerID, state, "checkout failed")
		return nil, err
	}
	s.logState(ctx, input.BuyerID, state, "checkout committed")
	return result, nil
}

func (s *service) logState(ctx context.Context, buyerID uuid.UUID, state State, msg string) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"buyer_id":       buyerID.String(),
		"checkout_state": state.String(),
	})
	s.logg.Info(logCtx, msg)
}
