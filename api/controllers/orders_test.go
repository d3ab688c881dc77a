package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	orderssvc "github.com/calebreyes/tradepost-backend/internal/orders"
	"github.com/calebreyes/tradepost-backend/pkg/auth"
	"github.com/calebreyes/tradepost-backend/pkg/enums"
	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
	"github.com/calebreyes/tradepost-backend/pkg/types"
)

type stubOrdersService struct {
	order     *orderssvc.OrderDTO
	err       error
	lastInput orderssvc.UpdateStatusInput
}

func (s *stubOrdersService) Get(_ context.Context, orderID, buyerID uuid.UUID) (*orderssvc.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrdersService) UpdateStatus(_ context.Context, input orderssvc.UpdateStatusInput) (*orderssvc.OrderDTO, error) {
	s.lastInput = input
	return s.order, s.err
}

func TestOrderDetailSuccess(t *testing.T) {
	buyerID := uuid.New()
	orderID := uuid.New()
	stub := &stubOrdersService{order: &orderssvc.OrderDTO{ID: orderID, BuyerID: buyerID}}
	handler := OrderDetail(stub, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), buyerID, auth.RoleBuyer, nil)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
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
}

func TestOrderDetailNotFound(t *testing.T) {
	stub := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	handler := OrderDetail(stub, nil)

	orderID := uuid.New()
	req := authedRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), uuid.New(), auth.RoleBuyer, nil)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestOrderDetailRejectsMalformedID(t *testing.T) {
	stub := &stubOrdersService{}
	handler := OrderDetail(stub, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", uuid.New(), auth.RoleBuyer, nil)
	req = withURLParam(req, "orderId", "not-a-uuid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderUpdateStatusSuccess(t *testing.T) {
	buyerID := uuid.New()
	orderID := uuid.New()
	stub := &stubOrdersService{order: &orderssvc.OrderDTO{ID: orderID, Status: enums.OrderStatusConfirmed}}
	handler := OrderUpdateStatus(stub, nil)

	body := strings.NewReader(`{"status":"confirmed"}`)
	req := authedRequest(http.MethodPut, "/api/v1/orders/"+orderID.String()+"/status", buyerID, auth.RoleBuyer, body)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.lastInput.Status != enums.OrderStatusConfirmed {
		t.Fatalf("unexpected status %s", stub.lastInput.Status)
	}
	if stub.lastInput.OrderID != orderID || stub.lastInput.BuyerID != buyerID {
		t.Fatalf("unexpected input %+v", stub.lastInput)
	}
}

func TestOrderUpdateStatusRejectsUnknownStatus(t *testing.T) {
	stub := &stubOrdersService{}
	handler := OrderUpdateStatus(stub, nil)

	orderID := uuid.New()
	body := strings.NewReader(`{"status":"teleported"}`)
	req := authedRequest(http.MethodPut, "/api/v1/orders/"+orderID.String()+"/status", uuid.New(), auth.RoleBuyer, body)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderUpdateStatusDisallowedTransition(t *testing.T) {
	stub := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "cannot transition order from pending to delivered")}
	handler := OrderUpdateStatus(stub, nil)

	orderID := uuid.New()
	body := strings.NewReader(`{"status":"delivered"}`)
	req := authedRequest(http.MethodPut, "/api/v1/orders/"+orderID.String()+"/status", uuid.New(), auth.RoleBuyer, body)
	req = withURLParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}
