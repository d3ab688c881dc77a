package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/calebreyes/tradepost-backend/api/middleware"
	"github.com/calebreyes/tradepost-backend/api/responses"
	"github.com/calebreyes/tradepost-backend/api/validators"
	cartsvc "github.com/calebreyes/tradepost-backend/internal/cart"
	"github.com/calebreyes/tradepost-backend/pkg/auth"
	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
	"github.com/calebreyes/tradepost-backend/pkg/logger"
)

type cartLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required,uuid4"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// quantity is a pointer so zero (remove the line) survives required validation
type cartUpdateRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required,uuid4"`
	Quantity  *int      `json:"quantity" validate:"required,min=0"`
}

type cartRemoveRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required,uuid4"`
}

// CartFetch returns the buyer's cart snapshot priced at read time.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerFromPath(r, "buyerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.GetSnapshot(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// CartAdd appends units of a product to the authenticated buyer's cart.
func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := authenticatedBuyer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.AddItem(r.Context(), buyerID, payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, snapshot)
	}
}

// CartUpdate replaces the quantity on an existing cart line.
func CartUpdate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := authenticatedBuyer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.UpdateItem(r.Context(), buyerID, payload.ProductID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// CartRemove drops a single line from the buyer's cart.
func CartRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := authenticatedBuyer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartRemoveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.RemoveItem(r.Context(), buyerID, payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// CartClear empties the buyer's cart. Clearing an empty cart succeeds.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := buyerFromPath(r, "buyerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Clear(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// authenticatedBuyer resolves the buyer id seeded by the auth middleware.
func authenticatedBuyer(r *http.Request) (uuid.UUID, error) {
	raw := middleware.BuyerIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing buyer context")
	}
	buyerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid buyer context")
	}
	return buyerID, nil
}

// buyerFromPath validates the path buyer against the token. Admins may act
// on any buyer's behalf.
func buyerFromPath(r *http.Request, param string) (uuid.UUID, error) {
	pathBuyer, err := validators.ParseUUIDParam(r, param)
	if err != nil {
		return uuid.Nil, err
	}
	tokenBuyer, err := authenticatedBuyer(r)
	if err != nil {
		return uuid.Nil, err
	}
	if pathBuyer != tokenBuyer && middleware.RoleFromContext(r.Context()) != auth.RoleAdmin {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot act on another buyer's cart")
	}
	return pathBuyer, nil
}
