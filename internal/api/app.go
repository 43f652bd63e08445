package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"CandyShop/internal/auth"
	"CandyShop/internal/catalog"
	"CandyShop/internal/order"
	"CandyShop/internal/store"
	"CandyShop/pkg/kit"
)

const readyTimeout = 1 * time.Second

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Limits struct {
	LoginPerWindow    int
	RegisterPerWindow int
	Window            time.Duration
}

type Deps struct {
	Unit    *store.Unit
	Auth    *auth.Service
	Catalog *catalog.Service
	Orders  *order.Processor
	Query   *order.Query
	Limits  Limits
	Now     func() time.Time
}

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	if httpDeps.Log == nil {
		httpDeps.Log = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps.Unit.Store(), httpDeps.Log))
	r.Get("/health", health(deps, httpDeps.Log))

	as := &auth.Server{Log: httpDeps.Log, Auth: deps.Auth}
	if deps.Limits.Window > 0 {
		as.LoginLimit = kit.NewIPRateLimiter(deps.Limits.LoginPerWindow, deps.Limits.Window).Middleware
		as.RegisterLimit = kit.NewIPRateLimiter(deps.Limits.RegisterPerWindow, deps.Limits.Window).Middleware
	}
	as.Routes(r)

	(&catalog.Server{Catalog: deps.Catalog, Log: httpDeps.Log}).Routes(r)
	(&order.Server{Processor: deps.Orders, Query: deps.Query, Log: httpDeps.Log}).Routes(r)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, http.StatusNotFound, "route not found")
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(s store.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := s.Ping(ctx); err != nil {
			log.Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready")
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

type healthStats struct {
	Users    int `json:"users"`
	Products int `json:"products"`
	Orders   int `json:"orders"`
}

type healthResp struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Stats     healthStats `json:"stats"`
}

func health(deps Deps, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var st healthStats
		err := deps.Unit.View(r.Context(), func(d *store.Document) error {
			st = healthStats{Users: len(d.Users), Products: len(d.Products), Orders: len(d.Orders)}
			return nil
		})
		if err != nil {
			kit.WriteErr(w, r, log, err)
			return
		}

		kit.WriteJSON(w, http.StatusOK, healthResp{
			Status:    "ok",
			Timestamp: deps.Now().UTC(),
			Stats:     st,
		})
	}
}
