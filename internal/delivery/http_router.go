package delivery

import (
	"time"

	"adintel/internal/delivery/middleware"
	"adintel/pkg/logger"
	"adintel/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type HTTPRouter struct {
	handlers *HTTPHandlers
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewHTTPRouter(handlers *HTTPHandlers, logger *logger.Logger, metrics *metrics.Metrics) *HTTPRouter {
	return &HTTPRouter{
		handlers: handlers,
		logger:   logger,
		metrics:  metrics,
	}
}

func (r *HTTPRouter) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.Recovery(r.logger))
	router.Use(middleware.Metrics(r.metrics))
	// Scans block on the acquisition collaborator, which polls for minutes.
	router.Use(middleware.Timeout(10 * time.Minute))

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Content-Type", "X-Request-ID"}
	config.ExposeHeaders = []string{"X-Request-ID"}

	router.Use(cors.New(config))

	// Health endpoint
	router.GET("/health", r.handlers.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/", r.handlers.GetAPIInfo)
		v1.GET("", r.handlers.GetAPIInfo)

		// Scan endpoints
		scan := v1.Group("/scan")
		{
			scan.POST("/run", r.handlers.RunScan)
			scan.GET("/groups", r.handlers.GetGroups)
			scan.GET("/report", r.handlers.GetReport)
		}

		// Brand bookmark endpoints
		brands := v1.Group("/brands")
		{
			brands.GET("", r.handlers.ListBrands)
			brands.POST("", r.handlers.AddBrand)
			brands.DELETE("/:name", r.handlers.DeleteBrand)
		}
	}

	// Prometheus metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	return router
}
