package app

import (
	"context"
	"errors"

	"claimwise-auth/internal/config"
	"claimwise-auth/internal/db"
	"claimwise-auth/internal/events"
	"claimwise-auth/internal/logger"
	"claimwise-auth/internal/redis"
	"claimwise-auth/internal/session"

	"github.com/nats-io/nats.go"
)

type Infra struct {
	DB       *db.DB
	Redis    *redis.Client // nil when sessions live in memory
	NATS     *nats.Conn    // nil when events are disabled
	Sessions session.Store
	Events   events.Publisher
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	dsn := cfg.DatabaseDSN
	if cfg.UserStoreDriver == string(db.SQLite) {
		dsn = cfg.SQLitePath
	}

	database, err := db.Open(ctx, cfg.UserStoreDriver, dsn)
	if err != nil {
		return nil, err
	}
	infra := &Infra{DB: database, Events: events.Nop{}}

	logger.Info("database ready", map[string]any{"driver": cfg.UserStoreDriver})

	if !cfg.MemorySessions() {
		redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			_ = infra.Close()
			return nil, err
		}
		infra.Redis = redisClient
		infra.Sessions = session.NewRedisStore(redisClient.Client)
		logger.Info("redis ready", map[string]any{"addr": cfg.RedisAddr})
	} else {
		infra.Sessions = session.NewMemoryStore()
		logger.Warn("SESSION_STORE=memory, sessions are lost on restart", nil)
	}

	if cfg.NATSURL != "" {
		nc, err := events.Connect(cfg.NATSURL)
		if err != nil {
			_ = infra.Close()
			return nil, err
		}
		infra.NATS = nc
		infra.Events = events.NewNATSPublisher(nc, cfg.NATSSubject)
		logger.Info("nats ready", map[string]any{
			"url":     cfg.NATSURL,
			"subject": cfg.NATSSubject,
		})
	}

	return infra, nil
}

// Close releases every connection opened by setupInfra.
func (i *Infra) Close() error {
	var errs []error
	if i.NATS != nil {
		if err := i.NATS.Drain(); err != nil {
			errs = append(errs, err)
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
