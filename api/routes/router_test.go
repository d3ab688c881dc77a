package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	cartsvc "github.com/calebreyes/tradepost-backend/internal/cart"
	checkoutsvc "github.com/calebreyes/tradepost-backend/internal/checkout"
	orderssvc "github.com/calebreyes/tradepost-backend/internal/orders"
	pkgauth "github.com/calebreyes/tradepost-backend/pkg/auth"
	"github.com/calebreyes/tradepost-backend/pkg/config"
	pkgerrors "github.com/calebreyes/tradepost-backend/pkg/errors"
	"github.com/calebreyes/tradepost-backend/pkg/logger"
	"github.com/calebreyes/tradepost-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCartService struct{}

func (stubCartService) AddItem(context.Context, uuid.UUID, uuid.UUID, int) (*cartsvc.Snapshot, error) {
	return &cartsvc.Snapshot{}, nil
}

func (stubCartService) UpdateItem(context.Context, uuid.UUID, uuid.UUID, int) (*cartsvc.Snapshot, error) {
	return &cartsvc.Snapshot{}, nil
}

func (stubCartService) RemoveItem(context.Context, uuid.UUID, uuid.UUID) (*cartsvc.Snapshot, error) {
	return &cartsvc.Snapshot{}, nil
}

func (stubCartService) Clear(_ context.Context, buyerID uuid.UUID) (*cartsvc.Snapshot, error) {
	return &cartsvc.Snapshot{BuyerID: buyerID}, nil
}

func (stubCartService) GetSnapshot(_ context.Context, buyerID uuid.UUID) (*cartsvc.Snapshot, error) {
	return &cartsvc.Snapshot{BuyerID: buyerID}, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Execute(context.Context, checkoutsvc.ExecuteInput) (*orderssvc.OrderDTO, error) {
	return &orderssvc.OrderDTO{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Get(context.Context, uuid.UUID, uuid.UUID) (*orderssvc.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (stubOrdersService) UpdateStatus(context.Context, orderssvc.UpdateStatusInput) (*orderssvc.OrderDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubPinger{},
		stubCartService{},
		stubCheckoutService{},
		stubOrdersService{},
		prometheus.NewRegistry(),
	)
}

func buildToken(t *testing.T, cfg *config.Config, buyerID uuid.UUID) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		BuyerID: buyerID,
		Role:    pkgauth.RoleBuyer,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthEndpointsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestMetricsEndpointIsExposed(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAPIGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCartFetchRoutesWithToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	buyerID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/"+buyerID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, buyerID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCheckoutRouteReturnsCreated(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	buyerID := uuid.New()

	body := strings.NewReader(`{"shipping_address_id":"` + uuid.NewString() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", body)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, buyerID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestOrderDetailRouteScopedToBuyer(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, uuid.New()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
