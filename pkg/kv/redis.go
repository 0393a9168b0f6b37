package kv

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/redis"
)

const redisChangedPrefix = "changed."

type redisStore struct {
	client   redis.Client
	logger   logger.Logger
	watchers *watchers
}

// NewRedis keeps values as plain keys and announces each write on a per-key
// channel so other instances can refresh.
func NewRedis(client redis.Client, log logger.Logger) Store {
	return &redisStore{client: client, logger: log, watchers: newWatchers()}
}

func (r *redisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Find(ctx, key)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *redisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Save(ctx, key, value, 0); err != nil {
		return err
	}
	r.announce(ctx, key)
	return nil
}

func (r *redisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Delete(ctx, key); err != nil {
		return err
	}
	r.announce(ctx, key)
	return nil
}

func (r *redisStore) announce(ctx context.Context, key string) {
	if err := r.client.Publish(ctx, redisChangedPrefix+key, key); err != nil {
		r.logger.Warn(ctx, "kv: publish change failed", zap.String("key", key), zap.Error(err))
	}
}

// Watch shares one subscription per key between all its watchers.
func (r *redisStore) Watch(ctx context.Context, key string, fn WatchFunc) (func(), error) {
	return r.watchers.add(ctx, key, fn, func() (func(), error) {
		return r.subscribe(key)
	})
}

func (r *redisStore) subscribe(key string) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())

	msgs, closeFn, err := r.client.Subscribe(ctx, redisChangedPrefix+key)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("kv: watch %s: %w", key, err)
	}

	go func() {
		defer func() { _ = closeFn() }()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				r.watchers.refresh(ctx, key, r.Get, r.logger)
			}
		}
	}()

	return cancel, nil
}

func (r *redisStore) Close() error {
	r.watchers.close()
	return r.client.Close()
}
