package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/apps/gateway/handlers/middleware"
	"stickerstreet/internal/chat"
	"stickerstreet/internal/structs"
	rtws "stickerstreet/internal/ws"
	"stickerstreet/pkg/config"
	"stickerstreet/pkg/logger"
)

var (
	Module = fx.Provide(New)
)

type (
	Handler interface {
		ChatWS(c *gin.Context)
		AdminWS(c *gin.Context)
	}

	Params struct {
		fx.In
		Hub    *rtws.Hub
		Logger logger.Logger
		Config config.IConfig
	}

	handler struct {
		hub      *rtws.Hub
		logger   logger.Logger
		interval time.Duration
		upgrader websocket.Upgrader
	}
)

func New(p Params) Handler {
	origins := p.Config.GetStringSlice("server.allowed_origins")
	return &handler{
		hub:      p.Hub,
		logger:   p.Logger,
		interval: p.Config.GetDuration("chat.poll_interval"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(strings.TrimSpace(o), origin) {
				return true
			}
		}
		return false
	}
}

// ChatWS streams the transcript while the socket is open and accepts
// outgoing messages as {"text": "..."} frames.
// GET /api/v1/chat/ws?session=<id>
func (h *handler) ChatWS(c *gin.Context) {
	s := middleware.Current(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error(c.Request.Context(), "connection websocket err", zap.Error(err))
		return
	}

	client := rtws.NewClient(s.ID, s.Store.IsAdmin(), conn, h.hub)
	push := func(msgs []structs.ChatMessage) {
		client.Send(rtws.Event{Type: rtws.EventChat, Data: msgs})
	}

	ctx, cancel := context.WithCancel(context.Background())
	ctx = h.logger.WithSession(ctx, s.ID)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		chat.Poll(ctx, s.Store, h.interval, h.logger, push)
	}()

	client.Run(func(frame []byte) {
		var msg structs.PostChatMessage
		if err := json.Unmarshal(frame, &msg); err != nil {
			msg.Text = string(frame)
		}
		_ = s.Store.SendChatMessage(ctx, msg.Text)
		push(s.Store.Messages())
	})

	cancel()
	wg.Wait()
}

// AdminWS receives order status changes made by any admin.
func (h *handler) AdminWS(c *gin.Context) {
	s := middleware.Current(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error(c.Request.Context(), "connection websocket err", zap.Error(err))
		return
	}

	rtws.NewClient(s.ID, true, conn, h.hub).Run(nil)
}
