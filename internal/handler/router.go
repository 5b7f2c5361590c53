package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/middleware"
)

// RouterConfig carries the handlers and secrets the router is built from
type RouterConfig struct {
	Notifications *NotificationHandler
	Documents     *DocumentHandler
	Internal      *InternalHandler
	JWTSecret     string
	ServiceKey    string
	// FilesDir, when set, is served under /files for locally stored documents
	FilesDir string
	Logger   *zap.Logger
}

// NewRouter wires every route onto a gin engine
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger(cfg.Logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	if cfg.FilesDir != "" {
		router.Static("/files", cfg.FilesDir)
	}

	v1 := router.Group("/api/v1")
	{
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(cfg.JWTSecret, cfg.Logger))

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", cfg.Notifications.GetNotifications)
			notifications.GET("/unread-count", cfg.Notifications.GetUnreadCount)
			notifications.PATCH("/read-all", cfg.Notifications.MarkAllAsRead)
			notifications.PATCH("/:id/read", cfg.Notifications.MarkAsRead)
			notifications.DELETE("/:id", cfg.Notifications.Delete)
		}

		documents := authed.Group("/documents")
		{
			documents.POST("", cfg.Documents.Upload)
			documents.DELETE("", cfg.Documents.Delete)
		}

		internal := v1.Group("/internal")
		internal.Use(middleware.ServiceAuth(cfg.ServiceKey, cfg.Logger))
		{
			internal.POST("/notifications", cfg.Internal.CreateNotification)
			internal.POST("/notifications/case-assigned", cfg.Internal.CaseAssigned)
			internal.POST("/notifications/payment-status", cfg.Internal.PaymentStatus)
			internal.POST("/notifications/promised-payment", cfg.Internal.PromisedPayment)
			internal.POST("/reminders/run", cfg.Internal.RunReminders)
		}
	}

	return router
}
