package app

import (
	"gorm.io/gorm"

	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
	"github.com/dealgrid/dealgrid-backend/internal/realtime"
	"github.com/dealgrid/dealgrid-backend/internal/services"
)

type Services struct {
	Runner    services.TxRunner
	Notifier  services.ChatNotifier
	Bridge    services.NotificationBridge
	Threads   services.ThreadService
	Messages  services.MessageService
	Presence  services.PresenceService
	ReadState services.ReadStateService
	Actions   services.ActionService
}

func wireServices(db *gorm.DB, log *logger.Logger, repos Repos, hub *realtime.SSEHub, clients Clients) Services {
	log.Info("Wiring services...")

	// With a bus every instance publishes through Redis and receives its own
	// events back through the forwarder; without one, broadcast locally.
	var emitter services.SSEEmitter
	if clients.SSEBus != nil {
		emitter = &services.RedisEmitter{Bus: clients.SSEBus}
	} else {
		emitter = &services.HubEmitter{Hub: hub}
	}

	runner := services.NewGormTxRunner(db)
	notifier := services.NewChatNotifier(emitter)
	bridge := services.NewNotificationBridge(log, clients.Feed, hub)

	return Services{
		Runner:    runner,
		Notifier:  notifier,
		Bridge:    bridge,
		Threads:   services.NewThreadService(log, runner, repos.Threads, repos.Messages, notifier, bridge),
		Messages:  services.NewMessageService(log, runner, repos.Threads, repos.Messages, notifier, bridge),
		Presence:  services.NewPresenceService(log, repos.Threads, repos.Typing, notifier),
		ReadState: services.NewReadStateService(log, repos.Threads, repos.Messages, repos.Markers),
		Actions:   services.NewActionService(log, runner, repos.Threads, repos.Messages, notifier, bridge),
	}
}
