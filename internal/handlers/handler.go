package handlers

import (
	"net/http"

	"irrigation_valve/internal/logger"
	"irrigation_valve/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SignalSource reports the quality of the link the Control Surface is served over.
type SignalSource interface {
	SignalQuality() (int, bool)
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	signal   SignalSource
	metrics  http.Handler
}

// Option configures optional Handler collaborators.
type Option func(*Handler)

// WithSignal adds signal_quality to status documents.
func WithSignal(src SignalSource) Option {
	return func(h *Handler) { h.signal = src }
}

// WithMetrics serves h on /metrics.
func WithMetrics(metrics http.Handler) Option {
	return func(h *Handler) { h.metrics = metrics }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	h.registerValveRoutes(router)

	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	// Status stream over WebSocket (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

// registerValveRoutes keeps the flat GET-only surface that field tools and scripts call.
func (h *Handler) registerValveRoutes(r *gin.Engine) {
	r.GET("/status", h.getStatus)
	r.GET("/toggle", h.toggle)
	r.GET("/mode", h.setMode)
	r.GET("/schedule", h.setSchedule)
}
