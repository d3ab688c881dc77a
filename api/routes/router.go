package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/calebreyes/tradepost-backend/api/controllers"
	"github.com/calebreyes/tradepost-backend/api/middleware"
	cartsvc "github.com/calebreyes/tradepost-backend/internal/cart"
	checkoutsvc "github.com/calebreyes/tradepost-backend/internal/checkout"
	orderssvc "github.com/calebreyes/tradepost-backend/internal/orders"
	"github.com/calebreyes/tradepost-backend/pkg/config"
	"github.com/calebreyes/tradepost-backend/pkg/logger"
	"github.com/calebreyes/tradepost-backend/pkg/metrics"
	"github.com/calebreyes/tradepost-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	pubsubP controllers.Pinger,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	ordersService orderssvc.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if registry != nil {
		httpMetrics := metrics.NewHTTPMetrics(registry)
		r.Use(httpMetrics.Middleware)
		r.Method(http.MethodGet, "/metrics", metrics.Handler(registry))
	}

	var redisP controllers.Pinger
	if redisClient != nil {
		redisP = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP, pubsubP))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.RateLimit(cfg.RateLimit, redisClient, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Route("/cart", func(r chi.Router) {
			r.Get("/{buyerId}", controllers.CartFetch(cartService, logg))
			r.Post("/add", controllers.CartAdd(cartService, logg))
			r.Put("/update", controllers.CartUpdate(cartService, logg))
			r.Delete("/remove", controllers.CartRemove(cartService, logg))
			r.Delete("/clear/{buyerId}", controllers.CartClear(cartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/checkout", controllers.Checkout(checkoutService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			r.Put("/{orderId}/status", controllers.OrderUpdateStatus(ordersService, logg))
		})
	})

	return r
}
