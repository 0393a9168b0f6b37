package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stickerstreet/pkg/config"
)

var ErrNotFound = errors.New("not found")

type Client interface {
	Save(ctx context.Context, key string, value any, dur time.Duration) error
	Find(ctx context.Context, key string) (value string, err error)
	Delete(ctx context.Context, key string) (err error)
	Publish(ctx context.Context, channel string, message string) error
	Subscribe(ctx context.Context, channel string) (msgs <-chan string, closeFn func() error, err error)
	Key(key string) string
	Close() error
}

type client struct {
	redis  redis.UniversalClient
	prefix string
}

func New(cfg config.IConfig) (Client, error) {
	timeout := 5 * time.Second

	conn := redis.NewUniversalClient(&redis.UniversalOptions{
		ClientName:   cfg.GetString("redis.clientName"),
		Addrs:        cfg.GetStringSlice("redis.addrs"),
		Username:     cfg.GetString("redis.username"),
		Password:     cfg.GetString("redis.password"),
		DB:           cfg.GetInt("redis.db"),
		PoolSize:     cfg.GetInt("redis.poolSize"),
		MaxRedirects: cfg.GetInt("redis.maxRedirects"),
		DialTimeout:  timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return Wrap(conn, cfg.GetString("redis.prefix")), nil
}

// Wrap adapts an existing connection.
func Wrap(conn redis.UniversalClient, prefix string) Client {
	return &client{redis: conn, prefix: prefix}
}

func (c *client) Key(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + "." + key
}

func (c *client) Save(ctx context.Context, key string, value any, dur time.Duration) error {
	if err := c.redis.Set(ctx, c.Key(key), value, dur).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

func (c *client) Find(ctx context.Context, key string) (string, error) {
	value, err := c.redis.Get(ctx, c.Key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get key: %w", err)
	}
	return value, nil
}

func (c *client) Delete(ctx context.Context, key string) error {
	if err := c.redis.Del(ctx, c.Key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

func (c *client) Publish(ctx context.Context, channel, message string) error {
	if err := c.redis.Publish(ctx, c.Key(channel), message).Err(); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	return nil
}

// Subscribe streams payloads published on channel until closeFn is called or
// ctx ends.
func (c *client) Subscribe(ctx context.Context, channel string) (<-chan string, func() error, error) {
	sub := c.redis.Subscribe(ctx, c.Key(channel))
	// wait for the subscription to be confirmed so no publish is missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	out := make(chan string)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, sub.Close, nil
}

func (c *client) Close() error {
	return c.redis.Close()
}
