package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"neighborly/internal/handler"
	"neighborly/internal/repository"
	"neighborly/pkg/mq"
	"neighborly/pkg/rbac"
)

type Router struct {
	Engine *gin.Engine
}

type Handlers struct {
	Auth           *handler.AuthHandler
	Group          *handler.GroupHandler
	Request        *handler.RequestHandler
	Recommendation *handler.RecommendationHandler
	Social         *handler.SocialHandler
	Intake         *handler.IntakeHandler
	Admin          *handler.AdminHandler
}

func NewRouter(h Handlers, users *repository.UserRepository, jwtSecret string, db *pgxpool.Pool, publisher *mq.Publisher) *Router {
	r := gin.Default()
	r.Use(TraceMiddleware(), MetricsMiddleware())

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if publisher != nil && !publisher.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/groups", h.Group.ListGroups)
		auth.POST("/groups", h.Group.CreateGroup)
		auth.POST("/groups/:id/join", h.Group.JoinGroup)
		auth.GET("/groups/:id/requests", h.Request.ListGroupRequests)

		auth.POST("/requests", h.Request.CreateRequest)
		auth.GET("/requests/:id", h.Request.GetRequest)
		auth.GET("/requests/:id/recommendations", h.Recommendation.ListRequestRecommendations)
		auth.POST("/requests/:id/recommendations", h.Recommendation.CreateForRequest)

		auth.POST("/recommendations", h.Recommendation.CreateRecommendation)
		auth.POST("/recommendations/:id/thanks", h.Recommendation.Thank)
		auth.POST("/recommendations/:id/saves", h.Recommendation.Save)

		auth.POST("/users/:id/follow", h.Social.Follow)
		auth.DELETE("/users/:id/follow", h.Social.Unfollow)
		auth.GET("/me/feed", h.Social.Feed)
		auth.GET("/me/notifications", h.Social.ListNotifications)
		auth.POST("/notifications/:id/read", h.Social.MarkNotificationRead)
	}

	// Admin（需要相应权限）
	admin := r.Group("/")
	admin.Use(AuthMiddleware(jwtSecret))
	{
		admin.POST("/intake/run",
			RequirePermission(users, rbac.PermissionRunIntake), h.Intake.Run)
		admin.POST("/admin/outbox/replay",
			RequirePermission(users, rbac.PermissionReplayOutbox), h.Admin.ReplayOutboxEvent)
		admin.POST("/admin/outbox/replay-failed",
			RequirePermission(users, rbac.PermissionReplayOutbox), h.Admin.ReplayFailedEvents)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
