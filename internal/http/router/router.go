// Package router arma el árbol de rutas del servicio.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/turnero/internal/http/controllers/auth"
	membersctrl "github.com/dropDatabas3/turnero/internal/http/controllers/members"
	rotationctrl "github.com/dropDatabas3/turnero/internal/http/controllers/rotation"
	httperrors "github.com/dropDatabas3/turnero/internal/http/errors"
	mw "github.com/dropDatabas3/turnero/internal/http/middlewares"
	"github.com/dropDatabas3/turnero/internal/metrics"
	"github.com/dropDatabas3/turnero/internal/rate"
)

// Deps contiene todo lo que el router necesita para armar las rutas.
type Deps struct {
	Auth     *authctrl.Controller
	Members  *membersctrl.Controller
	Rotation *rotationctrl.Controller

	// RequireAuth protege las rutas del tenant.
	RequireAuth mw.Middleware

	// Limiters opcionales por grupo de rutas (nil desactiva).
	OTPLimiter      rate.Limiter
	GenerateLimiter rate.Limiter

	// Ping verifica el storage para /readyz (nil = siempre ready).
	Ping func(ctx context.Context) error

	// MetricsHandler sirve /metrics (nil = sin endpoint).
	MetricsHandler http.Handler

	CORSOrigins []string
}

// New arma el handler raíz: middlewares globales + rutas.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	// chi acepta el mismo shape func(http.Handler) http.Handler
	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(mw.WithRecover())
	r.Use(mw.WithCORS(deps.CORSOrigins))
	r.Use(metrics.WithHTTP)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps.Ping))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(mw.WithRateLimit(deps.OTPLimiter, mw.IPPathRateKey)).
				Post("/send-otp", deps.Auth.SendOTP)
			r.Post("/register", deps.Auth.Register)
			r.Post("/login", deps.Auth.Login)
		})

		// Rutas del tenant autenticado
		r.Group(func(r chi.Router) {
			r.Use(deps.RequireAuth)

			r.Route("/members", func(r chi.Router) {
				r.Get("/", deps.Members.List)
				r.Post("/", deps.Members.Create)
				r.Delete("/{id}", deps.Members.Remove)
			})

			r.With(mw.WithRateLimit(deps.GenerateLimiter, mw.TenantRateKey)).
				Post("/rotation/generate", deps.Rotation.Generate)

			r.Get("/history", deps.Rotation.History)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func readyz(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				httperrors.WriteError(w, httperrors.ErrPersistenceUnavailable.WithCause(err))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	}
}
