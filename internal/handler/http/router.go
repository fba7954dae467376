package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hivx/My-store/internal/service"
	"github.com/hivx/My-store/pkg/health"
	"github.com/hivx/My-store/pkg/middleware"
)

// RouterConfig holds the tunables for the HTTP router.
type RouterConfig struct {
	CORS           middleware.CORSConfig
	RateLimitRPS   int
	RateLimitBurst int
}

// NewRouter creates a chi router with all order workflow routes registered.
func NewRouter(
	cartService *service.CartService,
	workflowService *service.WorkflowService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("orderflow"))
	r.Use(middleware.Tracing("orderflow"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	cartHandler := NewCartHandler(cartService, logger)
	workflowHandler := NewWorkflowHandler(workflowService, logger)

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionIDFromHeader)

		r.Get("/", cartHandler.GetCart)
		r.Post("/lines", cartHandler.AddLine)
		r.Put("/lines/{productId}/quantity", cartHandler.UpdateQuantity)
		r.Put("/lines/{productId}/selection", cartHandler.SetSelection)
		r.Delete("/lines/{productId}", cartHandler.RemoveLine)
	})

	r.Route("/api/v1/workflows", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionIDFromHeader)

		r.Post("/", workflowHandler.StartWorkflow)
		r.Get("/{id}", workflowHandler.GetWorkflow)
		r.Post("/{id}/advance", workflowHandler.AdvanceWorkflow)
		r.Put("/{id}/shipping", workflowHandler.SetShipping)
		r.Post("/{id}/confirm", workflowHandler.ConfirmShipping)
		r.Post("/{id}/cancel", workflowHandler.CancelWorkflow)
	})

	return r
}
