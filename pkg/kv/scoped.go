package kv

import "context"

type scoped struct {
	Store
	prefix string
}

// Scoped namespaces every key under prefix. Closing a scoped store leaves the
// parent open.
func Scoped(store Store, prefix string) Store {
	if prefix == "" {
		return store
	}
	return &scoped{Store: store, prefix: prefix + ":"}
}

func (s *scoped) Get(ctx context.Context, key string) (string, error) {
	return s.Store.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.Store.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.Store.Delete(ctx, s.prefix+key)
}

func (s *scoped) Watch(ctx context.Context, key string, fn WatchFunc) (func(), error) {
	return s.Store.Watch(ctx, s.prefix+key, fn)
}

func (s *scoped) Close() error { return nil }
