package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	checkoutsvc "github.com/calebreyes/tradepost-backend/internal/checkout"
	orderssvc "github.com/calebreyes/tradepost-backend/internal/orders"
	"github.com/calebreyes/tradepost-backend/pkg/auth"
	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
	"github.com/calebreyes/tradepost-backend/pkg/types"
)

type stubCheckoutService struct {
	order     *orderssvc.OrderDTO
	err       error
	lastInput checkoutsvc.ExecuteInput
}

func (s *stubCheckoutService) Execute(_ context.Context, input checkoutsvc.ExecuteInput) (*orderssvc.OrderDTO, error) {
	s.lastInput = input
	return s.order, s.err
}

func TestCheckoutReturnsCreated(t *testing.T) {
	buyerID := uuid.New()
	orderID := uuid.New()
	shippingID := uuid.New()
	stub := &stubCheckoutService{order: &orderssvc.OrderDTO{ID: orderID, BuyerID: buyerID, Total: "20.00"}}
	handler := Checkout(stub, nil)

	body := strings.NewReader(`{"shipping_address_id":"` + shippingID.String() + `"}`)
	req := authedRequest(http.MethodPost, "/api/v1/orders/checkout", buyerID, auth.RoleBuyer, body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if stub.lastInput.BuyerID != buyerID {
		t.Fatalf("expected buyer %s got %s", buyerID, stub.lastInput.BuyerID)
	}
	if stub.lastInput.ShippingAddressID != shippingID {
		t.Fatalf("expected shipping address id %s got %s", shippingID, stub.lastInput.ShippingAddressID)
	}

	var envelope struct {
		Data orderssvc.OrderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != orderID {
		t.Fatalf("unexpected order id %s", envelope.Data.ID)
	}
	if envelope.Data.Total != "20.00" {
		t.Fatalf("unexpected total %q", envelope.Data.Total)
	}
}

func TestCheckoutPassesIdempotencyToken(t *testing.T) {
	stub := &stubCheckoutService{order: &orderssvc.OrderDTO{}}
	handler := Checkout(stub, nil)

	body := strings.NewReader(`{"shipping_address_id":"` + uuid.NewString() + `","idempotency_token":"tok-12345678"}`)
	req := authedRequest(http.MethodPost, "/api/v1/orders/checkout", uuid.New(), auth.RoleBuyer, body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if stub.lastInput.IdempotencyToken == nil || *stub.lastInput.IdempotencyToken != "tok-12345678" {
		t.Fatalf("expected idempotency token to reach the service")
	}
}

func TestCheckoutEmptyCartIsBadRequest(t *testing.T) {
	stub := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")}
	handler := Checkout(stub, nil)

	body := strings.NewReader(`{"shipping_address_id":"` + uuid.NewString() + `"}`)
	req := authedRequest(http.MethodPost, "/api/v1/orders/checkout", uuid.New(), auth.RoleBuyer, body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeEmptyCart) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}

func TestCheckoutSelfPurchaseIsBadRequest(t *testing.T) {
	stub := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeSelfPurchase, "cannot purchase own listing")}
	handler := Checkout(stub, nil)

	body := strings.NewReader(`{"shipping_address_id":"` + uuid.NewString() + `"}`)
	req := authedRequest(http.MethodPost, "/api/v1/orders/checkout", uuid.New(), auth.RoleBuyer, body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutPassesBillingAddressID(t *testing.T) {
	stub := &stubCheckoutService{order: &orderssvc.OrderDTO{}}
	handler := Checkout(stub, nil)

	billingID := uuid.New()
	body := strings.NewReader(`{"shipping_address_id":"` + uuid.NewString() + `","billing_address_id":"` + billingID.String() + `"}`)
	req := authedRequest(http.MethodPost, "/api/v1/orders/checkout", uuid.New(), auth.RoleBuyer, body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if stub.lastInput.BillingAddressID != billingID {
		t.Fatalf("expected billing address id %s got %s", billingID, stub.lastInput.BillingAddressID)
	}
}

func TestCheckoutRequiresShippingAddressID(t *testing.T) {
	stub := &stubCheckoutService{}
	handler := Checkout(stub, nil)

	body := strings.NewReader(`{}`)
	req := authedRequest(http.MethodPost, "/api/v1/orders/checkout", uuid.New(), auth.RoleBuyer, body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	// a shipping address id that is not a uuid is rejected at decode time
	body = strings.NewReader(`{"shipping_address_id":"1 Main St"}`)
	req = authedRequest(http.MethodPost, "/api/v1/orders/checkout", uuid.New(), auth.RoleBuyer, body)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutMissingBuyerContext(t *testing.T) {
	stub := &stubCheckoutService{}
	handler := Checkout(stub, nil)

	body := strings.NewReader(`{"shipping_address_id":"` + uuid.NewString() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
