package session

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/internal/admin"
	"stickerstreet/internal/chat"
	"stickerstreet/internal/persist"
	"stickerstreet/internal/router"
	"stickerstreet/internal/storefront"
	"stickerstreet/internal/structs"
	"stickerstreet/internal/ws"
	"stickerstreet/pkg/apiclient"
	"stickerstreet/pkg/config"
	"stickerstreet/pkg/kv"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/metrics"
)

var Module = fx.Provide(New)

const (
	defaultIdleTimeout = 30 * time.Minute

	// AnonymousID serves read-only requests that carry no session token.
	AnonymousID = "anonymous"

	telegramPrefix = "tg-"
	linkPrefix     = "session_link:"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.IConfig
	Logger    logger.Logger
	API       apiclient.Client
	KV        kv.Store
	Hub       *ws.Hub
	Validator *admin.Validator
	Uploader  admin.Uploader
}

// Session is one shopper: a storefront store with its notifications, admin
// editor and chat poller.
type Session struct {
	ID     string
	Store  *storefront.Store
	Toasts *storefront.Toasts
	Editor *admin.Editor
	Chat   *chat.Task

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() {
	s.Chat.Stop()
	s.Store.Close()
}

type Options struct {
	TransitionDelay time.Duration
	PollInterval    time.Duration
	ToastTTL        time.Duration
	IdleTimeout     time.Duration
}

// Registry keeps one Session per id. Cart, favorites and profile are stored
// under the session's own prefix; the admin PIN is shared by all sessions.
type Registry struct {
	api       apiclient.Client
	kv        kv.Store
	hub       *ws.Hub
	validator *admin.Validator
	uploader  admin.Uploader
	logger    logger.Logger
	opts      Options
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
	links    map[string]string
	anon     *Session
}

func New(p Params) *Registry {
	idle := p.Config.GetDuration("session.idle_timeout")
	if idle <= 0 {
		idle = defaultIdleTimeout
	}

	r := NewRegistry(p.API, p.KV, p.Hub, p.Validator, p.Uploader, p.Logger, Options{
		TransitionDelay: p.Config.GetDuration("router.transition_delay"),
		PollInterval:    p.Config.GetDuration("chat.poll_interval"),
		ToastTTL:        p.Config.GetDuration("notify.ttl"),
		IdleTimeout:     idle,
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go r.sweepLoop(idle / 2)
			return nil
		},
		OnStop: func(context.Context) error {
			r.Shutdown()
			return nil
		},
	})
	return r
}

func NewRegistry(api apiclient.Client, store kv.Store, hub *ws.Hub, v *admin.Validator, u admin.Uploader, log logger.Logger, opts Options) *Registry {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		api:       api,
		kv:        store,
		hub:       hub,
		validator: v,
		uploader:  u,
		logger:    log,
		opts:      opts,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		sessions:  make(map[string]*Session),
		links:     make(map[string]string),
	}
}

func NewID() string {
	return ksuid.New().String()
}

// TelegramID is the session id of a Telegram user.
func TelegramID(userID int64) string {
	return telegramPrefix + strconv.FormatInt(userID, 10)
}

// Reserved reports ids that clients may not pick as their own token.
func Reserved(id string) bool {
	return id == AnonymousID || strings.HasPrefix(id, telegramPrefix)
}

// Open returns the session for id, creating and starting it on first use.
func (r *Registry) Open(ctx context.Context, id string) *Session {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		s.touch(r.now())
		return s
	}
	r.mu.Unlock()

	s := r.build(ctx, id, kv.Scoped(r.kv, "session:"+id))

	r.mu.Lock()
	if existing, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		s.close()
		existing.touch(r.now())
		return existing
	}
	r.sessions[id] = s
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	r.logger.Info(ctx, "session: opened", zap.String("session", id))
	return s
}

// Anonymous returns the shared session for requests without a token. Its cart,
// favorites and profile live in memory only and it is never swept.
func (r *Registry) Anonymous(ctx context.Context) *Session {
	r.mu.Lock()
	if r.anon != nil {
		s := r.anon
		r.mu.Unlock()
		return s
	}
	r.mu.Unlock()

	s := r.build(ctx, AnonymousID, kv.NewMemory())

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.anon != nil {
		s.close()
		return r.anon
	}
	r.anon = s
	return s
}

// Link points token at the session of a Telegram user whose init data was
// verified. Requests carrying token are served by that session from then on.
func (r *Registry) Link(ctx context.Context, token string, userID int64) string {
	id := TelegramID(userID)

	r.mu.Lock()
	r.links[token] = id
	r.mu.Unlock()

	if err := r.kv.Set(ctx, linkPrefix+token, id); err != nil {
		r.logger.Error(ctx, "->kv.Set", zap.String("session", token), zap.Error(err))
	}
	r.logger.Info(ctx, "session: linked to telegram", zap.String("session", id))
	return id
}

// Resolve returns the id of the session serving token.
func (r *Registry) Resolve(ctx context.Context, token string) string {
	r.mu.Lock()
	id, linked := r.links[token]
	_, open := r.sessions[token]
	r.mu.Unlock()

	switch {
	case linked:
		return id
	case open:
		return token
	}

	id, err := r.kv.Get(ctx, linkPrefix+token)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			r.logger.Warn(ctx, "->kv.Get", zap.String("session", token), zap.Error(err))
		}
		return token
	}

	r.mu.Lock()
	r.links[token] = id
	r.mu.Unlock()
	return id
}

func (r *Registry) build(ctx context.Context, id string, state kv.Store) *Session {
	toasts := storefront.NewToasts(r.opts.ToastTTL)
	p := persist.New(state, r.kv, r.logger)

	store := storefront.New(r.ctx, r.api, p, toasts, r.logger, storefront.Options{
		TransitionDelay: r.opts.TransitionDelay,
	})
	store.Start(ctx)

	s := &Session{
		ID:       id,
		Store:    store,
		Toasts:   toasts,
		Editor:   admin.NewEditor(store, r.validator, r.uploader, toasts, r.logger),
		lastSeen: r.now(),
	}

	if r.hub != nil {
		toasts.Subscribe(func(msg string) {
			r.hub.BroadcastToSession(id, ws.Event{Type: ws.EventToast, Data: msg})
		})
		store.OnRouteChange(func(rt router.Route) {
			r.hub.BroadcastToSession(id, ws.Event{Type: ws.EventRoute, Data: rt})
		})
	}

	s.Chat = chat.NewTask(store, r.opts.PollInterval, r.logger, func(msgs []structs.ChatMessage) {
		if r.hub != nil {
			r.hub.BroadcastToSession(id, ws.Event{Type: ws.EventChat, Data: msgs})
		}
	})
	chat.BindView(r.ctx, store, s.Chat)

	return s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) Close(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	if ok {
		s.close()
	}
}

// Sweep closes sessions idle for longer than the idle timeout. Sessions with an
// open socket are kept.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.opts.IdleTimeout)

	r.mu.Lock()
	var idle []string
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) && (r.hub == nil || r.hub.Connected(id) == 0) {
			idle = append(idle, id)
		}
	}
	r.mu.Unlock()

	for _, id := range idle {
		r.Close(id)
	}
	return len(idle)
}

func (r *Registry) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info(r.ctx, "session: closed idle sessions", zap.Int("count", n))
			}
		}
	}
}

func (r *Registry) Shutdown() {
	r.cancel()

	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	anon := r.anon
	r.anon = nil
	metrics.ActiveSessions.Set(0)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	if anon != nil {
		anon.close()
	}
}
