package controllers

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/multierr"

	"github.com/martinezjavi/ridepay-backend/api/responses"
	"github.com/martinezjavi/ridepay-backend/pkg/config"
	pkgerrors "github.com/martinezjavi/ridepay-backend/pkg/errors"
	"github.com/martinezjavi/ridepay-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessDeps names the dependencies the readiness probe checks.
type ReadinessDeps struct {
	DB    pinger
	Redis pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RidePay-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, deps ReadinessDeps, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RidePay-Env", cfg.App.Env)

		ctx := r.Context()
		var err error
		if deps.DB != nil {
			if pingErr := deps.DB.Ping(ctx); pingErr != nil {
				err = multierr.Append(err, fmt.Errorf("db: %w", pingErr))
			}
		}
		if deps.Redis != nil {
			if pingErr := deps.Redis.Ping(ctx); pingErr != nil {
				err = multierr.Append(err, fmt.Errorf("redis: %w", pingErr))
			}
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "not ready"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
