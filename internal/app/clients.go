package app

import (
	"fmt"
	"strings"

	"github.com/dealgrid/dealgrid-backend/internal/notify"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
	"github.com/dealgrid/dealgrid-backend/internal/realtime/bus"
)

// Clients holds the optional Redis-backed pieces. Without REDIS_ADDR the
// process runs single-node: fan-out stays in-process and feed events are
// skipped.
type Clients struct {
	SSEBus bus.Bus
	Feed   notify.FeedPublisher
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Warn("REDIS_ADDR not set; running without bus and feed")
		return Clients{}, nil
	}

	b, err := bus.NewRedisBus(log, cfg.RedisAddr, cfg.SSEChannel)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis bus: %w", err)
	}
	feed, err := notify.NewRedisFeed(log, cfg.RedisAddr, cfg.FeedStream)
	if err != nil {
		_ = b.Close()
		return Clients{}, fmt.Errorf("init redis feed: %w", err)
	}
	return Clients{SSEBus: b, Feed: feed}, nil
}
