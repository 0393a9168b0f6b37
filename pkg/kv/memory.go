package kv

import (
	"context"
	"sync"
)

type memory struct {
	m        sync.RWMutex
	values   map[string]string
	watchers *watchers
}

// NewMemory returns a process-local store. Watchers fire on every write.
func NewMemory() Store {
	return &memory{
		values:   map[string]string{},
		watchers: newWatchers(),
	}
}

func (c *memory) Get(_ context.Context, key string) (string, error) {
	c.m.RLock()
	defer c.m.RUnlock()

	v, ok := c.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (c *memory) Set(_ context.Context, key, value string) error {
	c.m.Lock()
	c.values[key] = value
	c.m.Unlock()

	c.watchers.dispatch(key, value, true)
	return nil
}

func (c *memory) Delete(_ context.Context, key string) error {
	c.m.Lock()
	delete(c.values, key)
	c.m.Unlock()

	c.watchers.dispatch(key, "", false)
	return nil
}

func (c *memory) Watch(ctx context.Context, key string, fn WatchFunc) (func(), error) {
	return c.watchers.add(ctx, key, fn, nil)
}

func (c *memory) Close() error {
	c.watchers.close()
	return nil
}
