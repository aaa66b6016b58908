package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/indianleto/storefront-backend/api/responses"
	"github.com/indianleto/storefront-backend/pkg/config"
	pkgerrors "github.com/indianleto/storefront-backend/pkg/errors"
	"github.com/indianleto/storefront-backend/pkg/logger"
	"github.com/indianleto/storefront-backend/pkg/types"
)

const (
	envHeader         = "X-Storefront-Env"
	readyCheckTimeout = 2 * time.Second
)

// Pinger is a dependency probed by the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	types.SuccessEnvelope
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, healthResponse{SuccessEnvelope: types.OK(""), Status: "live"})
	}
}

// HealthReady pings every configured dependency; nil entries are skipped.
func HealthReady(cfg *config.Config, deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	names := make([]string, 0, len(deps))
	for name, dep := range deps {
		if dep != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := make(map[string]string, len(names))
		failed := map[string]string{}
		for _, name := range names {
			if err := deps[name].Ping(ctx); err != nil {
				checks[name] = "down"
				failed[name] = err.Error()
				continue
			}
			checks[name] = "ok"
		}

		if len(failed) > 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(failed))
			return
		}
		responses.WriteSuccess(w, healthResponse{SuccessEnvelope: types.OK(""), Status: "ready", Checks: checks})
	}
}
