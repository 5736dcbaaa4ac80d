package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	appconfig "github.com/wolfman30/survey-assistant/internal/config"
	"github.com/wolfman30/survey-assistant/internal/session"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore picks the session backend. The redis backend also
// returns a distributed turn lock so replicas can share conversants.
func BuildSessionStore(cfg *appconfig.Config, redisClient redis.UniversalClient, logger *logging.Logger) (session.Store, session.Locker, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.SessionBackend {
	case "redis":
		if redisClient == nil {
			return nil, nil, fmt.Errorf("bootstrap: SESSION_BACKEND=redis but redis is unavailable at %q", cfg.RedisAddr)
		}
		logger.Info("using redis session store", "ttl", cfg.SessionTTL)
		store := session.NewRedisStore(redisClient, cfg.SessionTTL, otel.Tracer("survey-assistant/session"))
		return store, session.NewRedisLocker(redisClient, cfg.SessionLockTTL), nil
	case "", "memory":
		logger.Info("using in-memory session store", "max_entries", cfg.SessionMaxEntries, "ttl", cfg.SessionTTL)
		return session.NewMemoryStore(cfg.SessionMaxEntries, cfg.SessionTTL), session.NewKeyedMutex(), nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
}
