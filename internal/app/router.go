package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/adjustments"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/finance"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/observability"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/products"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/trade"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/warehouses"
	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/jobs"
)

// RouterConfig aggregates every handler the API mounts.
type RouterConfig struct {
	Middleware MiddlewareConfig
	Metrics    *observability.Metrics

	Products    *products.Handler
	Warehouses  *warehouses.Handler
	Adjustments *adjustments.Handler
	Purchases   *trade.Handler
	Sales       *trade.Handler
	Quotations  *trade.Handler
	Finance     *finance.Handler
	Jobs        *jobs.Handler
}

// NewRouter assembles the chi router with the full middleware stack.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(cfg.Middleware) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.Products != nil {
			api.Route("/products", cfg.Products.MountRoutes)
		}
		if cfg.Warehouses != nil {
			api.Route("/warehouses", cfg.Warehouses.MountRoutes)
		}
		if cfg.Adjustments != nil {
			api.Route("/adjustments", cfg.Adjustments.MountRoutes)
		}
		if cfg.Purchases != nil {
			api.Route("/purchases", cfg.Purchases.MountRoutes)
		}
		if cfg.Sales != nil {
			api.Route("/sales", cfg.Sales.MountRoutes)
		}
		if cfg.Quotations != nil {
			api.Route("/quotations", cfg.Quotations.MountRoutes)
		}
		if cfg.Finance != nil {
			api.Route("/finance", cfg.Finance.MountRoutes)
		}
		if cfg.Jobs != nil {
			api.Route("/jobs", cfg.Jobs.MountRoutes)
		}
	})

	return r
}
