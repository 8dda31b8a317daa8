package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/yourname/bloomhealth/internal/auth"
	"github.com/yourname/bloomhealth/internal/config"
	"github.com/yourname/bloomhealth/internal/metrics"
)

const streamPath = "/api/health/stream"

func NewRouter(app App, cfg *config.Config, provider auth.Provider, collector *metrics.Collector) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), RequestLogger(app.Logger()))
	r.Use(collector.Middleware())
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.BestSpeed, gzip.WithExcludedPaths([]string{streamPath})))

	r.GET("/metrics", gin.WrapH(collector.Handler()))

	api := r.Group("/api", auth.AuthMiddleware(provider, cfg))
	{
		api.GET("/me", GetMe(app))
		api.POST("/samples", PostSample(app))
		api.PUT("/profile", PutProfile(app))

		h := api.Group("/health")
		h.POST("/session", PostSession(app))
		h.DELETE("/session", DeleteSession(app))
		h.GET("/snapshot", GetSnapshot(app))
		h.GET("/status", GetStatus(app))
		h.GET("/dashboard", GetDashboard(app))
		h.POST("/refresh", PostRefresh(app))
		h.POST("/push", PostPush(app))
		h.GET("/stream", GetStream(app))
	}
	return r
}
