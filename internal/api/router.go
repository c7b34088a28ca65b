package api

import (
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/daap14/formats/internal/api/handler"
	"github.com/daap14/formats/internal/api/middleware"
	"github.com/daap14/formats/internal/format"
	"github.com/daap14/formats/internal/metrics"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Service       *format.Service
	DBPinger      handler.DBPinger
	StorageDriver string
	Version       string
	OpenAPISpec   []byte
	Metrics       *metrics.Metrics // nil disables /metrics
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(middleware.Actor)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.StorageDriver, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	if deps.Metrics != nil {
		r.Method("GET", "/metrics", deps.Metrics.Handler())
	}

	if deps.Service != nil {
		formatHandler := handler.NewFormatHandler(deps.Service)
		r.Route("/formats", func(r chi.Router) {
			r.Post("/", formatHandler.Create)
			r.Get("/", formatHandler.List)
			r.Get("/{id}", formatHandler.GetByID)
			r.Patch("/{id}", formatHandler.Update)
		})
	}

	return r
}
