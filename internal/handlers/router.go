package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warbler-app/warbler/internal/metrics"
	"github.com/warbler-app/warbler/internal/middleware"
	"github.com/warbler-app/warbler/internal/services"
	"github.com/warbler-app/warbler/internal/session"
	"github.com/warbler-app/warbler/pkg/logger"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth       *services.AuthService
	Graph      *services.GraphService
	Engagement *services.EngagementService
	Feed       *services.FeedService
	Activity   *services.ActivityService
	Sessions   *session.Manager
}

// NewRouter wires middleware and every /api/v1 route.
func NewRouter(svc Services, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.SessionAuth(svc.Sessions, svc.Auth, log))

	NewAuthHandler(svc.Auth, svc.Sessions, log).RegisterRoutes(api)
	NewUserHandler(svc.Auth, svc.Graph, svc.Feed, svc.Activity, svc.Sessions, log).RegisterRoutes(api)
	NewFeedHandler(svc.Feed, svc.Engagement, log).RegisterRoutes(api)

	return router
}
