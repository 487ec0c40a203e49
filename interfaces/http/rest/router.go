package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"clothing-api/infrastructure/config"
	"clothing-api/interfaces/http/rest/handlers"
	"clothing-api/interfaces/http/rest/middleware"
	"clothing-api/pkg/common"
	"clothing-api/pkg/errors"
	"clothing-api/pkg/observability"
)

// Messages returned by the service routes.
const (
	MessageRunning       = "Clothing API is running"
	MessageReady         = "Clothing API is ready"
	MessageRouteNotFound = "Route not found"
)

// Allowed CORS methods and headers.
var (
	CORSMethods        = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	CORSHeaders        = []string{"Content-Type", "Accept", "X-Requested-With", "Authorization", "x-api-key"}
	CORSExposedHeaders = []string{"Content-Length", "X-Request-Id"}
)

// Router creates and configures the HTTP router
type Router struct {
	cfg          *config.Config
	service      handlers.ClothingService
	errorHandler *errors.ErrorHandler
	metrics      *observability.Collector
	tracer       *observability.Tracer
	logger       *zap.Logger
}

// NewRouter creates a new router instance. metrics and tracer may be nil.
func NewRouter(
	cfg *config.Config,
	service handlers.ClothingService,
	errorHandler *errors.ErrorHandler,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:          cfg,
		service:      service,
		errorHandler: errorHandler,
		metrics:      metrics,
		tracer:       tracer,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(rt.tracer.Middleware)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))
	router.Use(rt.errorHandler.Middleware)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{rt.cfg.CORSOrigin},
		AllowedMethods:   CORSMethods,
		AllowedHeaders:   CORSHeaders,
		ExposedHeaders:   CORSExposedHeaders,
		AllowCredentials: rt.cfg.CORSCredentials,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.cfg.EnableMetrics && rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	router.Route("/clothing", func(r chi.Router) {
		clothingHandler := handlers.NewClothingHandler(rt.service, rt.errorHandler, rt.logger)
		r.Get("/", clothingHandler.ListClothing)
		r.Post("/", clothingHandler.CreateClothing)
		r.Get("/{id}", clothingHandler.GetClothing)
		r.Put("/{id}", clothingHandler.UpdateClothing)
		r.Delete("/{id}", clothingHandler.DeleteClothing)
	})

	router.NotFound(rt.routeNotFound)
	router.MethodNotAllowed(rt.routeNotFound)

	return router
}

// NewServer builds the HTTP server with the configured timeouts
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  cfg.ServerTimeout(),
		WriteTimeout: cfg.ServerTimeout(),
		IdleTimeout:  cfg.ServerKeepAlive(),
	}
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, common.Envelope{
		Success:     true,
		Message:     MessageRunning,
		Environment: rt.cfg.Environment,
	})
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, common.Envelope{
		Success: true,
		Message: MessageReady,
	})
}

func (rt *Router) routeNotFound(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusNotFound, common.Failure(MessageRouteNotFound))
}
