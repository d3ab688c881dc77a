package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/calebreyes/tradepost-backend/api/responses"
	"github.com/calebreyes/tradepost-backend/pkg/config"
	"github.com/calebreyes/tradepost-backend/pkg/logger"
)

// Pinger matches the health surface exposed by db, redis and pubsub clients.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tradepost-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing services and reports per-dependency status.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, pubsubP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tradepost-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := map[string]string{}
		healthy := true
		check := func(name string, dep Pinger) {
			if dep == nil {
				status[name] = "skipped"
				return
			}
			if err := dep.Ping(ctx); err != nil {
				status[name] = "down"
				healthy = false
				if logg != nil {
					logCtx := logg.WithField(ctx, "dependency", name)
					logg.Error(logCtx, "health.dependency.down", err)
				}
				return
			}
			status[name] = "up"
		}

		check("database", dbP)
		check("redis", redisP)
		check("pubsub", pubsubP)

		code := http.StatusOK
		overall := "ready"
		if !healthy {
			code = http.StatusServiceUnavailable
			overall = "degraded"
		}
		status["status"] = overall
		responses.WriteSuccessStatus(w, code, status)
	}
}
