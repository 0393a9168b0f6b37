package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/internal/responses"
	"stickerstreet/internal/session"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/reply"
)

var (
	Module = fx.Provide(NewMiddleware)
)

const (
	SessionHeader = "X-Session-ID"

	sessionKey = "session"
	tokenKey   = "session_token"
)

type (
	Middleware interface {
		Ctx() gin.HandlerFunc
		Session() gin.HandlerFunc
		Admin() gin.HandlerFunc
	}

	Params struct {
		fx.In

		Logger   logger.Logger
		Sessions *session.Registry
	}

	mw struct {
		logger   logger.Logger
		sessions *session.Registry
	}
)

func NewMiddleware(params Params) Middleware {
	return &mw{
		logger:   params.Logger,
		sessions: params.Sessions,
	}
}

func (m *mw) Ctx() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := m.logger.Context(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SessionID resolves the session token of a request from the session header,
// then the session query parameter. Reserved ids are refused and a new token
// is minted when none is usable; minted reports that case.
func SessionID(c *gin.Context) (token string, minted bool) {
	for _, id := range []string{c.GetHeader(SessionHeader), c.Query("session")} {
		if id = strings.TrimSpace(id); id != "" && !session.Reserved(id) {
			return id, false
		}
	}
	return session.NewID(), true
}

// Session attaches the session serving the request. Read-only requests with a
// freshly minted token share the anonymous session so no state is built until
// the client comes back with its token or changes something.
func (m *mw) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, minted := SessionID(c)
		ctx := m.logger.WithSession(c.Request.Context(), token)
		c.Request = c.Request.WithContext(ctx)

		var s *session.Session
		if minted && readOnly(c) {
			s = m.sessions.Anonymous(ctx)
		} else {
			s = m.sessions.Open(ctx, m.sessions.Resolve(ctx, token))
		}

		c.Header(SessionHeader, token)
		c.Set(tokenKey, token)
		c.Set(sessionKey, s)
		c.Next()
	}
}

func readOnly(c *gin.Context) bool {
	switch c.Request.Method {
	case http.MethodGet, http.MethodHead:
		return !c.IsWebsocket()
	}
	return false
}

// Admin rejects requests of sessions that did not unlock the admin panel.
func (m *mw) Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := Current(c)
		if s == nil || !s.Store.IsAdmin() {
			m.logger.Warn(c.Request.Context(), " admin route on a locked session", zap.String("path", c.FullPath()))

			response := responses.Forbidden
			response.Error = structs.ErrAdminLocked.Error()
			c.Abort()
			reply.Json(c.Writer, responses.ForbiddenCode, &response)
			return
		}
		c.Next()
	}
}

// Respond writes response with the session's visible toast as notice. It is
// meant to be deferred by handlers.
func Respond(c *gin.Context, response *structs.Response) {
	if s := Current(c); s != nil && response.Notice == "" {
		response.Notice = s.Toasts.Current()
	}
	reply.Json(c.Writer, http.StatusOK, response)
}

// Attach replaces the session serving the rest of the request.
func Attach(c *gin.Context, s *session.Session) {
	c.Set(sessionKey, s)
}

// Token is the client's session token, which may differ from the id of the
// session serving it once linked to a Telegram account.
func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// Current returns the session attached by Session.
func Current(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
