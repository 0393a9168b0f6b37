package middleware

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/internal/session"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/tgrouter"
)

var Module = fx.Provide(New)

type Params struct {
	fx.In
	Logger   logger.Logger
	Registry *session.Registry
}

type Middleware interface {
	AccountMw(next tgrouter.Handler) tgrouter.Handler
}

type mw struct {
	logger   logger.Logger
	registry *session.Registry
}

type sessionKey struct{}

func New(p Params) Middleware {
	return &mw{
		registry: p.Registry,
		logger:   p.Logger,
	}
}

// Current is the storefront session of the Telegram user behind ctx.
func Current(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey{}).(*session.Session)
	return s
}

// WithSession is used by tests to run commands without the middleware.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// AccountMw opens the session of the sender and links it to their Telegram
// account on first contact.
func (m *mw) AccountMw(next tgrouter.Handler) tgrouter.Handler {
	return func(c *tgrouter.Ctx) {
		from := c.Update().SentFrom()
		if from == nil {
			return
		}

		id := session.TelegramID(from.ID)
		ctx := m.logger.WithSession(c.Context, id)
		sess := m.registry.Open(ctx, id)

		if sess.Store.Profile().TelegramUserID == 0 {
			m.logger.Info(ctx, "linking telegram account", zap.Int64("tgid", from.ID))
			err := sess.Store.AutoConnect(ctx, "", &structs.TelegramUser{
				ID:        from.ID,
				FirstName: from.FirstName,
				LastName:  from.LastName,
				Username:  from.UserName,
			})
			if err != nil {
				m.logger.Warn(ctx, "failed to auto connect", zap.Error(err))
			}
		}

		c.Context = WithSession(ctx, sess)

		_ = c.Request(tgbotapi.NewChatAction(c.ChatID(), tgbotapi.ChatTyping))

		next(c)
	}
}
