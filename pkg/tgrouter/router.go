package tgrouter

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/tgrouter/interfaces"
)

var Module = fx.Provide(NewFactory, NewKVState)

const (
	defaultWorkers     = 16
	defaultPollTimeout = 30
)

type Handler func(*Ctx)

// Factory builds a Router bound to one bot. A nil bot gives a router that
// only serves HandleUpdate, which is what tests use.
type Factory func(*tgbotapi.BotAPI, ...Option) *Router

// Router dispatches Telegram updates to the first route whose filter
// matches. Updates are served by a fixed set of workers fed by one poller.
type Router struct {
	*RouterGroup

	bot    *tgbotapi.BotAPI
	logger logger.Logger
	opts   options
	ctxs   sync.Pool

	mu   sync.Mutex
	stop context.CancelFunc
	done chan struct{}
}

type options struct {
	workers     int
	pollTimeout int
	state       interfaces.State
}

type Option func(*options)

// Workers sets how many updates are handled concurrently.
func Workers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// PollTimeout sets the getUpdates long-poll timeout in seconds.
func PollTimeout(seconds int) Option {
	return func(o *options) {
		if seconds > 0 {
			o.pollTimeout = seconds
		}
	}
}

// StateStore replaces the conversation state backend.
func StateStore(s interfaces.State) Option {
	return func(o *options) {
		o.state = s
	}
}

func NewFactory(log logger.Logger, state interfaces.State) Factory {
	return func(bot *tgbotapi.BotAPI, opts ...Option) *Router {
		o := options{workers: defaultWorkers, pollTimeout: defaultPollTimeout, state: state}
		for _, opt := range opts {
			opt(&o)
		}

		r := &Router{bot: bot, logger: log, opts: o, done: make(chan struct{})}
		r.ctxs.New = func() any {
			return &Ctx{bot: bot, Context: context.Background(), stateDB: o.state}
		}
		r.RouterGroup = &RouterGroup{root: true, logger: log, stateDB: o.state}
		return r
	}
}

func (r *Router) Use(middlewares ...Middleware) {
	r.RouterGroup.Use(middlewares...)
}

// HandleUpdate serves one update on the calling goroutine.
func (r *Router) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	c := r.ctxs.Get().(*Ctx)
	c.reset()
	c.update = update
	c.Context = ctx

	if rt := r.match(c); rt != nil {
		r.logger.Debug(ctx, "tgrouter: route matched", zap.Stringer("type", rt.rtype), zap.Int("update", update.UpdateID))
		c.handlers = rt.handlers
		c.next()
	}

	c.update = nil
	c.Context = context.Background()
	r.ctxs.Put(c)
}

// match returns the first route accepting c. Conversation state is loaded on
// the first conversation route reached, so plain commands never touch it.
func (r *Router) match(c *Ctx) *Route {
	for i := range r.routes {
		rt := &r.routes[i]
		if rt.rtype == ConversationRoute && c.state == nil {
			r.State(c)
		}
		if rt.filter(c) {
			return rt
		}
	}
	return nil
}
