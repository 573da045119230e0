package controllers

import (
	"net/http"

	"github.com/premiumstore/premiumstore-backend/api/responses"
	"github.com/premiumstore/premiumstore-backend/pkg/config"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PremiumStore-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PremiumStore-Env", cfg.App.Env)

		status := map[string]string{}
		healthy := true
		for name, check := range deps {
			if check == nil {
				continue
			}
			if err := check(); err != nil {
				healthy = false
				status[name] = "down"
				logg.Error(r.Context(), "readiness check failed: "+name, err)
				continue
			}
			status[name] = "up"
		}

		if !healthy {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, status)
			return
		}
		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
