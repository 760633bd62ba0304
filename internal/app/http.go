package app

import (
	"github.com/gin-gonic/gin"

	"github.com/dealgrid/dealgrid-backend/internal/http"
	httpH "github.com/dealgrid/dealgrid-backend/internal/http/handlers"
	httpMW "github.com/dealgrid/dealgrid-backend/internal/http/middleware"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
	"github.com/dealgrid/dealgrid-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Thread    *httpH.ThreadHandler
	Message   *httpH.MessageHandler
	Presence  *httpH.PresenceHandler
	ReadState *httpH.ReadStateHandler
	Action    *httpH.ActionHandler
	Realtime  *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Thread:    httpH.NewThreadHandler(log, services.Threads),
		Message:   httpH.NewMessageHandler(log, services.Messages),
		Presence:  httpH.NewPresenceHandler(log, services.Presence),
		ReadState: httpH.NewReadStateHandler(log, services.ReadState),
		Action:    httpH.NewActionHandler(log, services.Actions),
		Realtime:  httpH.NewRealtimeHandler(log, sseHub, services.Threads),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func wireRouter(cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Mode:        cfg.Mode,
		CORSOrigins: cfg.CORSOrigins,

		AuthMiddleware: middleware.Auth,

		HealthHandler:    handlers.Health,
		ThreadHandler:    handlers.Thread,
		MessageHandler:   handlers.Message,
		PresenceHandler:  handlers.Presence,
		ReadStateHandler: handlers.ReadState,
		ActionHandler:    handlers.Action,
		RealtimeHandler:  handlers.Realtime,
	})
}
