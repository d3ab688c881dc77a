package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/calebreyes/tradepost-backend/api/responses"
	"github.com/calebreyes/tradepost-backend/api/validators"
	checkoutsvc "github.com/calebreyes/tradepost-backend/internal/checkout"
	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
	"github.com/calebreyes/tradepost-backend/pkg/logger"
)

// address ids reference records owned by the external address service
type checkoutRequest struct {
	ShippingAddressID uuid.UUID  `json:"shipping_address_id" validate:"required,uuid4"`
	BillingAddressID  *uuid.UUID `json:"billing_address_id,omitempty" validate:"omitempty,uuid4"`
	IdempotencyToken  *string    `json:"idempotency_token,omitempty" validate:"omitempty,min=8,max=128"`
}

// Checkout converts the authenticated buyer's cart into an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		buyerID, err := authenticatedBuyer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkoutsvc.ExecuteInput{
			BuyerID:           buyerID,
			ShippingAddressID: payload.ShippingAddressID,
			IdempotencyToken:  payload.IdempotencyToken,
		}
		if payload.BillingAddressID != nil {
			input.BillingAddressID = *payload.BillingAddressID
		}

		order, err := svc.Execute(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
