package chat

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"stickerstreet/internal/router"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/logger"
)

const DefaultInterval = 4 * time.Second

// Source is a chat transcript that can be refreshed from the server.
type Source interface {
	RefreshChat(ctx context.Context) error
	Messages() []structs.ChatMessage
}

// Poll refreshes src right away and then every interval until ctx is done.
// onUpdate receives the transcript whenever it changed.
func Poll(ctx context.Context, src Source, interval time.Duration, log logger.Logger, onUpdate func([]structs.ChatMessage)) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	var (
		last []structs.ChatMessage
		seen bool
	)
	refresh := func() {
		if err := src.RefreshChat(ctx); err != nil {
			if ctx.Err() == nil {
				log.Debug(ctx, "chat: refresh failed", zap.Error(err))
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		msgs := src.Messages()
		if seen && slices.Equal(last, msgs) {
			return
		}
		last, seen = msgs, true
		if onUpdate != nil {
			onUpdate(msgs)
		}
	}

	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// Task is a poll loop that can be started and stopped repeatedly. Stop
// returns once the loop has exited, so no refresh lands after it.
type Task struct {
	src      Source
	interval time.Duration
	logger   logger.Logger
	onUpdate func([]structs.ChatMessage)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewTask(src Source, interval time.Duration, log logger.Logger, onUpdate func([]structs.ChatMessage)) *Task {
	return &Task{src: src, interval: interval, logger: log, onUpdate: onUpdate}
}

func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel, t.done = cancel, done

	go func() {
		defer close(done)
		Poll(ctx, t.src, t.interval, t.logger, t.onUpdate)
	}()
}

func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// RouteSource reports route changes.
type RouteSource interface {
	Route() router.Route
	OnRouteChange(fn func(router.Route))
}

// BindView runs t only while the chat view is shown.
func BindView(ctx context.Context, views RouteSource, t *Task) {
	follow := func(r router.Route) {
		if r.View == router.ViewChat {
			t.Start(ctx)
		} else {
			t.Stop()
		}
	}
	views.OnRouteChange(follow)
	follow(views.Route())
}
