package chat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stickerstreet/internal/router"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/logger"
)

type fakeSource struct {
	calls atomic.Int32
	mu    sync.Mutex
	msgs  []structs.ChatMessage
	err   error
}

func (f *fakeSource) RefreshChat(context.Context) error {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeSource) Messages() []structs.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]structs.ChatMessage(nil), f.msgs...)
}

func (f *fakeSource) set(msgs ...structs.ChatMessage) {
	f.mu.Lock()
	f.msgs = msgs
	f.mu.Unlock()
}

type updates struct {
	mu   sync.Mutex
	seen [][]structs.ChatMessage
}

func (u *updates) add(msgs []structs.ChatMessage) {
	u.mu.Lock()
	u.seen = append(u.seen, msgs)
	u.mu.Unlock()
}

func (u *updates) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.seen)
}

func TestPollReportsChanges(t *testing.T) {
	src := &fakeSource{}
	src.set(structs.ChatMessage{From: structs.ChatFromBot, Text: "Salut"})
	up := &updates{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		Poll(ctx, src, 10*time.Millisecond, logger.Nop(), up.add)
	}()

	require.Eventually(t, func() bool { return src.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, up.count())

	src.set(
		structs.ChatMessage{From: structs.ChatFromBot, Text: "Salut"},
		structs.ChatMessage{From: structs.ChatFromUser, Text: "Bonjour"},
	)
	require.Eventually(t, func() bool { return up.count() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestPollKeepsGoingOnErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("offline")}
	up := &updates{}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	Poll(ctx, src, 10*time.Millisecond, logger.Nop(), up.add)

	assert.GreaterOrEqual(t, src.calls.Load(), int32(2))
	assert.Zero(t, up.count())
}

func TestTaskStop(t *testing.T) {
	src := &fakeSource{}
	task := NewTask(src, 5*time.Millisecond, logger.Nop(), nil)

	task.Start(context.Background())
	task.Start(context.Background())
	assert.True(t, task.Running())

	require.Eventually(t, func() bool { return src.calls.Load() >= 2 }, time.Second, time.Millisecond)

	task.Stop()
	assert.False(t, task.Running())

	after := src.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, src.calls.Load())

	task.Stop()
}

type fakeViews struct {
	current   router.Route
	listeners []func(router.Route)
}

func (v *fakeViews) Route() router.Route { return v.current }

func (v *fakeViews) OnRouteChange(fn func(router.Route)) {
	v.listeners = append(v.listeners, fn)
}

func (v *fakeViews) show(view router.View) {
	v.current = router.Route{View: view}
	for _, fn := range v.listeners {
		fn(v.current)
	}
}

func TestBindView(t *testing.T) {
	src := &fakeSource{}
	task := NewTask(src, 5*time.Millisecond, logger.Nop(), nil)
	views := &fakeViews{current: router.Route{View: router.ViewHome}}

	BindView(context.Background(), views, task)
	assert.False(t, task.Running())

	views.show(router.ViewChat)
	assert.True(t, task.Running())
	require.Eventually(t, func() bool { return src.calls.Load() >= 1 }, time.Second, time.Millisecond)

	views.show(router.ViewCart)
	assert.False(t, task.Running())
}
