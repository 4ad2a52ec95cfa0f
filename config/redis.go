package config

import (
	"context"
	"time"

	"spooky-styles/logger"

	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 2 * time.Second

// ConnectRedis returns nil only when Redis is switched off or misconfigured;
// callers treat a nil client as "running without cache". An unreachable
// server still yields a client: go-redis reconnects on demand, and health
// reports it as down until it answers.
func ConnectRedis(ctx context.Context, cfg RedisConfig, log *logger.Logger) *redis.Client {
	if !cfg.Enabled {
		log.Info().Msg("redis disabled, running without cache")
		return nil
	}

	var opt *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to parse Redis URL, running without cache")
			return nil
		}
		opt = parsed
	} else {
		opt = &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       0,
		}
	}
	opt.DialTimeout = redisDialTimeout

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", opt.Addr).Msg("redis unreachable at startup, will keep retrying")
		return client
	}

	log.Info().Msg("redis connected")
	return client
}
