package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"payment-relay/pkg/middleware"
)

type RouterOptions struct {
	ServiceName   string
	AllowedOrigin string

	// RateLimiter guards the token endpoint when set.
	RateLimiter gin.HandlerFunc
}

// NewRouter wires the routes and middleware. CORS wraps the whole engine so
// preflight requests are answered before gin routing.
func NewRouter(h *TokenHandler, log *zap.Logger, opts RouterOptions) http.Handler {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Metrics())
	router.Use(otelgin.Middleware(opts.ServiceName))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	router.GET("/health", Health)
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	token := []gin.HandlerFunc{}
	if opts.RateLimiter != nil {
		token = append(token, opts.RateLimiter)
	}
	token = append(token, h.AuthorizeToken)
	router.POST("/api/authorize-token", token...)

	return handlers.CORS(
		handlers.AllowedOrigins([]string{opts.AllowedOrigin}),
		handlers.AllowedMethods([]string{http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(router)
}
