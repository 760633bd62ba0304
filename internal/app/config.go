package app

import (
	"time"

	"github.com/dealgrid/dealgrid-backend/internal/pkg/logger"
	"github.com/dealgrid/dealgrid-backend/internal/utils"
)

type Config struct {
	Mode         string
	Port         string
	JWTSecretKey string
	CORSOrigins  string

	RedisAddr  string
	SSEChannel string
	FeedStream string

	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Mode:         utils.GetEnv("APP_MODE", "development", log),
		Port:         utils.GetEnv("PORT", "8080", log),
		JWTSecretKey: utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		CORSOrigins:  utils.GetEnv("CORS_ORIGINS", "", log),
		RedisAddr:    utils.GetEnv("REDIS_ADDR", "", log),
		SSEChannel:   utils.GetEnv("REDIS_SSE_CHANNEL", "sse", log),
		FeedStream:   utils.GetEnv("REDIS_FEED_STREAM", "notifications", log),

		ShutdownTimeout: time.Duration(utils.GetEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10, log)) * time.Second,
	}
}
