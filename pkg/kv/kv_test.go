package kv

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/redis"
)

type recorder struct {
	mu     sync.Mutex
	values []string
	oks    []bool
}

func (r *recorder) fn(value string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, value)
	r.oks = append(r.oks, ok)
}

func (r *recorder) last() (string, bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return "", false, 0
	}
	return r.values[len(r.values)-1], r.oks[len(r.oks)-1], len(r.values)
}

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "a", `{"x":1}`))
	v, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, v)

	require.NoError(t, store.Set(ctx, "a", "2"))
	v, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "a"), "deleting a missing key is not an error")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryWatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	rec := &recorder{}

	stop, err := store.Watch(ctx, "pin", rec.fn)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "pin", "5678"))
	v, ok, n := rec.last()
	assert.Equal(t, "5678", v)
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	require.NoError(t, store.Set(ctx, "other", "x"))
	_, _, n = rec.last()
	assert.Equal(t, 1, n)

	require.NoError(t, store.Delete(ctx, "pin"))
	_, ok, _ = rec.last()
	assert.False(t, ok)

	stop()
	require.NoError(t, store.Set(ctx, "pin", "0000"))
	_, _, n = rec.last()
	assert.Equal(t, 2, n)
}

func TestScoped(t *testing.T) {
	ctx := context.Background()
	root := NewMemory()
	a := Scoped(root, "s1")
	b := Scoped(root, "s2")

	exerciseStore(t, a)

	require.NoError(t, a.Set(ctx, "cart", "[1]"))
	require.NoError(t, b.Set(ctx, "cart", "[2]"))

	v, err := a.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, "[1]", v)

	v, err = root.Get(ctx, "s2:cart")
	require.NoError(t, err)
	assert.Equal(t, "[2]", v)

	assert.Same(t, root, Scoped(root, ""))
}

func TestFileStore(t *testing.T) {
	store, err := NewFile(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestFileWatchSeesOtherWriter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	reader, err := NewFile(dir, logger.Nop())
	require.NoError(t, err)
	writer, err := NewFile(dir, logger.Nop())
	require.NoError(t, err)

	rec := &recorder{}
	stop, err := reader.Watch(ctx, "stickerstreet_admin_pin", rec.fn)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, writer.Set(ctx, "stickerstreet_admin_pin", `"4321"`))

	assert.Eventually(t, func() bool {
		v, ok, _ := rec.last()
		return ok && v == `"4321"`
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	conn := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewRedis(redis.Wrap(conn, "test"), logger.Nop())
	defer store.Close()

	exerciseStore(t, store)
	assert.False(t, mr.Exists("test.a"))
}

func TestRedisWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mr := miniredis.RunT(t)
	conn := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewRedis(redis.Wrap(conn, "test"), logger.Nop())
	defer store.Close()

	rec := &recorder{}
	stop, err := store.Watch(ctx, "pin", rec.fn)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, store.Set(ctx, "pin", "9999"))

	assert.Eventually(t, func() bool {
		v, ok, _ := rec.last()
		return ok && v == "9999"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMemoryWatchStopReleases(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewMemory().(*memory)
	for range 1000 {
		stop, err := store.Watch(ctx, "pin", func(string, bool) {})
		require.NoError(t, err)
		stop()
		stop()
	}
	assert.Equal(t, 0, store.watchers.count())

	watchCtx, watchCancel := context.WithCancel(ctx)
	_, err := store.Watch(watchCtx, "pin", func(string, bool) {})
	require.NoError(t, err)
	assert.Equal(t, 1, store.watchers.count())

	watchCancel()
	assert.Eventually(t, func() bool { return store.watchers.count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestFileWatchersShareOneNotifier(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFile(dir, logger.Nop())
	require.NoError(t, err)
	store := s.(*file)
	defer store.Close()

	var (
		mu    sync.Mutex
		calls int
		stops []func()
	)
	for range 200 {
		stop, err := store.Watch(ctx, "stickerstreet_admin_pin", func(value string, ok bool) {
			mu.Lock()
			calls++
			mu.Unlock()
		})
		require.NoError(t, err)
		stops = append(stops, stop)
	}
	notifier := store.notifier
	require.NotNil(t, notifier)

	writer, err := NewFile(dir, logger.Nop())
	require.NoError(t, err)
	defer writer.Close()
	require.NoError(t, writer.Set(ctx, "stickerstreet_admin_pin", `"1111"`))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls >= 200
	}, 2*time.Second, 10*time.Millisecond)
	assert.Same(t, notifier, store.notifier)

	for _, stop := range stops {
		stop()
	}
	assert.Equal(t, 0, store.watchers.count())
}

func TestRedisWatchersShareSubscription(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	conn := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewRedis(redis.Wrap(conn, "test"), logger.Nop())
	defer store.Close()

	a, b := &recorder{}, &recorder{}
	stopA, err := store.Watch(ctx, "pin", a.fn)
	require.NoError(t, err)
	stopB, err := store.Watch(ctx, "pin", b.fn)
	require.NoError(t, err)

	channel := "test." + redisChangedPrefix + "pin"
	assert.Equal(t, 1, mr.PubSubNumSub(channel)[channel])

	require.NoError(t, store.Set(ctx, "pin", "2468"))
	assert.Eventually(t, func() bool {
		va, oka, _ := a.last()
		vb, okb, _ := b.last()
		return oka && okb && va == "2468" && vb == "2468"
	}, 2*time.Second, 10*time.Millisecond)

	stopA()
	assert.Equal(t, 1, mr.PubSubNumSub(channel)[channel])
	stopB()
	assert.Eventually(t, func() bool {
		return mr.PubSubNumSub(channel)[channel] == 0
	}, 2*time.Second, 10*time.Millisecond)
}
