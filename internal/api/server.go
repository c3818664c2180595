package api

import (
	"context"
	"net/http"
	"time"

	analyzeapi "github.com/futig/mindtrace-ai/internal/api/analyze"
	"github.com/futig/mindtrace-ai/internal/api/docs"
	"github.com/futig/mindtrace-ai/internal/api/middleware"
	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/pkg/metrics"
	"github.com/futig/mindtrace-ai/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const serviceName = "MindTrace AI Service"

const readinessTimeout = 5 * time.Second

// HealthChecker reports whether a backing store can serve requests
type HealthChecker interface {
	Health(ctx context.Context) error
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	analyzeHandler *analyzeapi.Handler,
	store HealthChecker,
	m *metrics.Metrics,
	requestTimeout time.Duration,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:         300,
	})

	// Middleware stack
	r.Use(chimiddleware.Recoverer)               // Recover from panics
	r.Use(chimiddleware.RequestID)               // Add request ID
	r.Use(middleware.Logger(logger))             // Log requests
	r.Use(middleware.Metrics(m))                 // Count requests per route
	r.Use(corsHandler)                           // Handle CORS
	r.Use(chimiddleware.Timeout(requestTimeout)) // Bound every request

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, entity.HealthResponse{
			Status:  "healthy",
			Service: serviceName,
		})
	})

	// Readiness also checks the vector store
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := store.Health(ctx); err != nil {
			ctxzap.Extract(r.Context()).Warn("vector store not ready", zap.Error(err))
			response.Error(w, http.StatusServiceUnavailable, "vector store unavailable: "+err.Error())
			return
		}

		response.Success(w, entity.HealthResponse{
			Status:  "ready",
			Service: serviceName,
		})
	})

	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	analyzeapi.RegisterRoutes(r, analyzeHandler)

	return r
}
