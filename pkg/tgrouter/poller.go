package tgrouter

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

const (
	retryMin = 500 * time.Millisecond
	retryMax = 30 * time.Second
)

// ListenUpdate long-polls Telegram and serves updates until ctx is cancelled
// or Shutdown is called. It returns once every worker has finished its
// current update.
func (r *Router) ListenUpdate(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	r.stop = cancel
	r.mu.Unlock()
	defer close(r.done)

	updates := make(chan tgbotapi.Update, r.opts.workers)
	go r.poll(ctx, updates)

	finished := make(chan struct{}, r.opts.workers)
	for range r.opts.workers {
		go func() {
			r.work(ctx, updates)
			finished <- struct{}{}
		}()
	}
	for range r.opts.workers {
		<-finished
	}
}

// Shutdown stops polling and waits for the workers until ctx expires.
func (r *Router) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	stop := r.stop
	r.mu.Unlock()
	if stop == nil {
		return nil
	}

	r.logger.Info(ctx, "tgrouter: shutting down")
	stop()

	select {
	case <-r.done:
		r.logger.Info(ctx, "tgrouter: stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "tgrouter: shutdown timeout exceeded")
		return ctx.Err()
	}
}

func (r *Router) work(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			r.HandleUpdate(ctx, &update)
		}
	}
}

// poll feeds updates until ctx ends. An in-flight getUpdates call is not
// interrupted; its result is dropped and redelivered on the next start.
func (r *Router) poll(ctx context.Context, out chan<- tgbotapi.Update) {
	defer close(out)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = r.opts.pollTimeout
	wait := backoff{min: retryMin, max: retryMax}

	for ctx.Err() == nil {
		batch, err := r.bot.GetUpdates(cfg)
		if err != nil {
			delay := wait.next()
			r.logger.Warn(ctx, "tgrouter: getUpdates failed", zap.Duration("retry_in", delay), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}
		wait.reset()

		for _, update := range batch {
			select {
			case <-ctx.Done():
				return
			case out <- update:
				cfg.Offset = update.UpdateID + 1
			}
		}
	}
}

// backoff doubles from min up to max and adds up to 10% jitter.
type backoff struct {
	min, max time.Duration
	cur      time.Duration
}

func (b *backoff) next() time.Duration {
	if b.cur == 0 {
		b.cur = b.min
	}
	d := b.cur + time.Duration(rand.Int63n(int64(b.cur/10)+1))
	b.cur = min(b.cur*2, b.max)
	return d
}

func (b *backoff) reset() {
	b.cur = 0
}
