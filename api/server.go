/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: One zap line per request, tagged with the request ID
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for the web client
  5. RateLimiter:   Per-client token bucket on calculation routes only

ROUTE GROUPS:
  /api/calculate, /api/repayment/*, /api/tax/*   Calculations (rate limited)
  /api/colleges, /api/majors, /api/states        Catalog lookups
  /api/assumptions                               Active assumptions
  /api/admin/*                                   Dataset maintenance
  /healthz                                       Liveness

SECURITY NOTE:
  No authentication middleware. Admin routes are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig carries the router's optional dependencies.
type RouterConfig struct {
	AllowedOrigins []string
	Limiter        *RateLimiter // nil disables rate limiting
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Calculation routes
		r.Group(func(r chi.Router) {
			if cfg.Limiter != nil {
				r.Use(cfg.Limiter.Middleware)
			}
			r.Post("/calculate", h.Calculate)
			r.Post("/repayment/standard", h.StandardRepayment)
			r.Post("/repayment/income-driven", h.IncomeDrivenRepayment)
			r.Post("/tax/estimate", h.EstimateTax)
		})

		// Catalog routes
		r.Route("/colleges", func(r chi.Router) {
			r.Get("/", h.ListColleges)
			r.Get("/{name}", h.GetCollege)
		})
		r.Get("/majors", h.ListMajors)
		r.Get("/states", h.ListStates)
		r.Get("/assumptions", h.GetAssumptions)

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/colleges", h.UpsertCollege)
			r.Post("/salaries", h.UpsertSalary)
			r.Post("/state-taxes", h.UpsertStateTax)
			r.Get("/datasets", h.ListDatasets)
			r.Post("/datasets/load", h.LoadDataset)
		})
	})

	return r
}
