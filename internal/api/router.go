package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"appointment-workers/internal/common/logger"
)

type RouterConfig struct {
	Mode               string
	ServiceName        string
	AllowOrigins       []string
	AppointmentHandler *AppointmentHandler
	ReadinessChecks    map[string]ReadinessCheck
	Logger             logger.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Logger))
	if cfg.ServiceName != "" {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", HealthCheck)
	router.GET("/ready", ReadyHandler(cfg.ReadinessChecks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		h := cfg.AppointmentHandler
		api.GET("/schedules", h.ListSchedules)
		api.GET("/calendar-events", h.ListCalendarEvents)
		api.GET("/data", h.GetDocument)
		api.POST("/feasibility", h.EvaluateFeasibility)
		api.POST("/snapshot/refresh", h.RefreshSnapshot)
	}

	return router
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}
		log.Info("http request", map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}
