package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/dealgrid/dealgrid-backend/internal/http/handlers"
	httpMW "github.com/dealgrid/dealgrid-backend/internal/http/middleware"
)

type RouterConfig struct {
	Mode        string
	CORSOrigins string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	ThreadHandler    *httpH.ThreadHandler
	MessageHandler   *httpH.MessageHandler
	PresenceHandler  *httpH.PresenceHandler
	ReadStateHandler *httpH.ReadStateHandler
	ActionHandler    *httpH.ActionHandler
	RealtimeHandler  *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	protected := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Threads
		if cfg.ThreadHandler != nil {
			protected.POST("/threads", cfg.ThreadHandler.OpenThread)
			protected.GET("/threads", cfg.ThreadHandler.ListThreads)
			protected.GET("/threads/:id", cfg.ThreadHandler.GetThread)
			protected.POST("/threads/:id/close", cfg.ThreadHandler.CloseThread)
		}

		// Messages
		if cfg.MessageHandler != nil {
			protected.POST("/threads/:id/messages", cfg.MessageHandler.SendMessage)
			protected.GET("/threads/:id/messages", cfg.MessageHandler.ListMessages)
			protected.DELETE("/threads/:id/messages/:message_id", cfg.MessageHandler.DeleteMessage)
		}

		// Read state
		if cfg.ReadStateHandler != nil {
			protected.POST("/threads/:id/read", cfg.ReadStateHandler.MarkRead)
			protected.GET("/threads/:id/unread", cfg.ReadStateHandler.UnreadCount)
		}

		// Typing
		if cfg.PresenceHandler != nil {
			protected.POST("/threads/:id/typing", cfg.PresenceHandler.SetTyping)
			protected.GET("/threads/:id/typing", cfg.PresenceHandler.ListTyping)
		}

		// Negotiation actions
		if cfg.ActionHandler != nil {
			protected.POST("/threads/:id/actions", cfg.ActionHandler.EmitAction)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
			protected.POST("/sse/subscribe", cfg.RealtimeHandler.SSESubscribe)
			protected.POST("/sse/unsubscribe", cfg.RealtimeHandler.SSEUnsubscribe)
		}
	}

	return r
}
