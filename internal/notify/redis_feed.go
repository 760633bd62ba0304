package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dealgrid/dealgrid-backend/internal/domain/notification"
	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
)

// redisFeed appends events to a Redis stream consumed by the feed service.
// MaxLen keeps the stream bounded; the consumer group is expected to keep up
// well inside that window.
type redisFeed struct {
	log    *logger.Logger
	rdb    *goredis.Client
	stream string
}

func NewRedisFeed(log *logger.Logger, addr, stream string) (FeedPublisher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	if strings.TrimSpace(stream) == "" {
		stream = "notifications"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisFeed{
		log:    log.With("service", "RedisFeed"),
		rdb:    rdb,
		stream: stream,
	}, nil
}

func (f *redisFeed) Publish(ctx context.Context, ev notification.Event) error {
	if f == nil || f.rdb == nil {
		return fmt.Errorf("redis feed not initialized")
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return f.rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: f.stream,
		MaxLen: 100000,
		Approx: true,
		Values: map[string]any{
			"user_id":    ev.UserID.String(),
			"event":      ev.Event,
			"dedupe_key": ev.DedupeKey,
			"payload":    string(raw),
		},
	}).Err()
}

func (f *redisFeed) Close() error {
	if f == nil || f.rdb == nil {
		return nil
	}
	return f.rdb.Close()
}
