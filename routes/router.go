package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	handlers "storefront/internal/handlers/shared"
	"storefront/internal/middleware"
	"storefront/internal/utils"
	"storefront/pkg/logger"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Account *handlers.AccountHandler
	Coupon  *handlers.CouponHandler
	Product *handlers.ProductHandler
	Health  *handlers.HealthHandler
}

type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	TrustedProxies []string
	// UploadsDir is served under UploadsURL when local storage is used.
	UploadsDir string
	UploadsURL string
}

// NewRouter builds the engine with global middleware and every route group.
func NewRouter(h *Handlers, config RouterConfig, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = utils.MaxMultipartMemory
	_ = router.SetTrustedProxies(config.TrustedProxies)

	// Global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.CORSMiddleware(config.AllowedOrigins))

	if h.Health != nil {
		router.GET("/health", h.Health.Health)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if config.UploadsDir != "" && config.UploadsURL != "" {
		router.Static(config.UploadsURL, config.UploadsDir)
	}

	root := router.Group("")
	{
		SetupAuthRoutes(root, h.Auth)
		SetupAccountRoutes(root, h.Account, config.JWTSecret)
		SetupCouponRoutes(root, h.Coupon, config.JWTSecret)
	}

	api := router.Group("/api")
	{
		SetupProductRoutes(api, h.Product, config.JWTSecret)
	}

	return router
}
