package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/fusion-resume/internal/config"
	"github.com/khoahotran/fusion-resume/pkg/logger"
)

// ReadinessCheck reports whether a backing dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type RouterDeps struct {
	Config       config.Config
	Logger       logger.Logger
	BlurbHandler *BlurbHandler
	Redis        *redis.Client
	Gatherer     prometheus.Gatherer
	Ready        ReadinessCheck
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(deps.Logger))
	router.Use(CORSMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(ErrorMiddleware(deps.Logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	router.GET("/ready", func(c *gin.Context) {
		if deps.Ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ready(ctx); err != nil {
				deps.Logger.Warn("Readiness check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	if rl := deps.Config.RateLimit; rl.Enabled {
		api.Use(RedisRateLimitMiddleware(deps.Redis, rl.RPS, rl.Burst, rl.Window))
	}
	deps.BlurbHandler.RegisterRoutes(api)

	return router
}
