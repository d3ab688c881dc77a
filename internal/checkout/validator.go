package checkout

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/calebreyes/tradepost-backend/pkg/db/models"
	"github.com/calebreyes/tradepost-backend/pkg/enums"
	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
)

// LineRequest is one product/quantity pair being checked out.
type LineRequest struct {
	ProductID uuid.UUID
	Qty       int
}

// ValidationIssue describes why a single line failed validation.
type ValidationIssue struct {
	ProductID uuid.UUID      `json:"product_id"`
	Code      pkgerrors.Code `json:"code"`
	Message   string         `json:"message"`
}

// ValidateStock runs the authoritative pre-reservation checks against the
// product rows as loaded: the product must exist and be active, the buyer
// must not be the seller, and available stock must cover the quantity. The
// checks run in that order per line, so a buyer hitting their own
// out-of-stock listing is told about the self-purchase, not the stock.
//
// The function is pure: it mutates nothing and holds no locks. The real
// stock guarantee comes from the conditional decrement that follows.
func ValidateStock(buyerID uuid.UUID, lines []LineRequest, productsByID map[uuid.UUID]models.Product) error {
	if buyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	var issues []ValidationIssue
	var combined error
	for _, line := range lines {
		issue := validateLine(buyerID, line, productsByID)
		if issue == nil {
			continue
		}
		issues = append(issues, *issue)
		combined = multierr.Append(combined, pkgerrors.New(issue.Code, issue.Message))
	}
	if len(issues) == 0 {
		return nil
	}

	// the first failing line decides the response code
	primary := pkgerrors.Wrap(issues[0].Code, combined, issues[0].Message)
	return primary.WithDetails(map[string]any{"issues": issues})
}

func validateLine(buyerID uuid.UUID, line LineRequest, productsByID map[uuid.UUID]models.Product) *ValidationIssue {
	if line.Qty <= 0 {
		return &ValidationIssue{
			ProductID: line.ProductID,
			Code:      pkgerrors.CodeValidation,
			Message:   fmt.Sprintf("quantity must be positive for product %s", line.ProductID),
		}
	}

	product, ok := productsByID[line.ProductID]
	if !ok || product.Status != enums.ProductStatusActive {
		return &ValidationIssue{
			ProductID: line.ProductID,
			Code:      pkgerrors.CodeNotFound,
			Message:   fmt.Sprintf("product %s is not available", line.ProductID),
		}
	}

	if product.SellerID == buyerID {
		return &ValidationIssue{
			ProductID: line.ProductID,
			Code:      pkgerrors.CodeSelfPurchase,
			Message:   fmt.Sprintf("cannot purchase own listing %s", line.ProductID),
		}
	}

	available := 0
	if product.Inventory != nil {
		available = product.Inventory.AvailableQty
	}
	if available < line.Qty {
		return &ValidationIssue{
			ProductID: line.ProductID,
			Code:      pkgerrors.CodeInsufficientStock,
			Message:   fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", line.ProductID, line.Qty, available),
		}
	}
	return nil
}
