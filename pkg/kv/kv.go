package kv

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/pkg/config"
	"stickerstreet/pkg/db"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/redis"
)

var ErrNotFound = errors.New("kv: key not found")

// WatchFunc receives the current value of a watched key. ok is false when the
// key was removed.
type WatchFunc func(value string, ok bool)

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Watch calls fn whenever key changes, until stop is called or ctx ends.
	Watch(ctx context.Context, key string, fn WatchFunc) (stop func(), err error)
	Close() error
}

type Params struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    config.IConfig
	Logger    logger.Logger
}

var Module = fx.Provide(NewFx)

func NewFx(p Params) (Store, error) {
	store, err := New(context.Background(), p.Config, p.Logger)
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error { return store.Close() },
	})
	return store, nil
}

// New picks the driver named by storage.driver.
func New(ctx context.Context, cfg config.IConfig, log logger.Logger) (Store, error) {
	driver := cfg.GetString("storage.driver")
	log.Info(ctx, "kv: opening store", zap.String("driver", driver))

	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(cfg.GetString("storage.dir"), log)
	case "redis":
		client, err := redis.New(cfg)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, log), nil
	case "postgres":
		conn, err := db.New(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return NewPostgres(conn, log), nil
	default:
		return nil, fmt.Errorf("kv: unknown storage driver %q", driver)
	}
}
