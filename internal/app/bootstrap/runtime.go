package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/locus-venue/internal/config"
	"github.com/wolfman30/locus-venue/internal/sessionstore"
	"github.com/wolfman30/locus-venue/internal/webchat"
	"github.com/wolfman30/locus-venue/pkg/logging"
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

// BuildSessionStore selects the visit store named by SESSION_STORE. An
// unreachable Redis falls back to memory so the widget keeps working on a
// single instance. The returned closer releases the backing client.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, loadAWS AWSLoader, logger *logging.Logger) (sessionstore.Store[*webchat.Visit], func() error, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() error { return nil }

	kind, err := sessionstore.ParseKind(cfg.SessionStore)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap: %w", err)
	}

	switch kind {
	case sessionstore.KindRedis:
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			logger.Warn("redis session store unavailable; using memory store", "addr", cfg.RedisAddr)
			return sessionstore.NewMemory[*webchat.Visit](cfg.SessionTTL), noop, nil
		}
		logger.Info("using redis session store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL.String())
		return sessionstore.NewRedis[*webchat.Visit](client, cfg.SessionTTL), client.Close, nil

	case sessionstore.KindDynamo:
		if loadAWS == nil {
			return nil, nil, fmt.Errorf("bootstrap: dynamodb session store needs AWS config")
		}
		awsCfg, err := loadAWS(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		if strings.TrimSpace(cfg.SessionTable) == "" {
			return nil, nil, fmt.Errorf("bootstrap: SESSION_TABLE is required for the dynamodb session store")
		}
		logger.Info("using dynamodb session store", "table", cfg.SessionTable, "ttl", cfg.SessionTTL.String())
		return sessionstore.NewDynamo[*webchat.Visit](dynamodb.NewFromConfig(awsCfg), cfg.SessionTable, cfg.SessionTTL), noop, nil

	default:
		logger.Info("using in-memory session store", "ttl", cfg.SessionTTL.String())
		return sessionstore.NewMemory[*webchat.Visit](cfg.SessionTTL), noop, nil
	}
}
