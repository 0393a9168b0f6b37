package shop

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/apps/gateway/handlers/middleware"
	"stickerstreet/internal/pricing"
	"stickerstreet/internal/responses"
	"stickerstreet/internal/router"
	"stickerstreet/internal/session"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/logger"
)

var (
	Module = fx.Provide(New)
)

type (
	// Handler serves the session-wide state: route, theme, profile and
	// favorites.
	Handler interface {
		GetState(c *gin.Context)
		Navigate(c *gin.Context)
		ToggleTheme(c *gin.Context)
		GetProfile(c *gin.Context)
		UpdateContact(c *gin.Context)
		AutoConnect(c *gin.Context)
		ListFavorites(c *gin.Context)
		ToggleFavorite(c *gin.Context)
	}

	Params struct {
		fx.In
		Logger   logger.Logger
		Sessions *session.Registry
	}

	handler struct {
		logger   logger.Logger
		sessions *session.Registry
	}
)

func New(p Params) Handler {
	return &handler{
		logger:   p.Logger,
		sessions: p.Sessions,
	}
}

func State(s *session.Session) structs.State {
	route := s.Store.Route()
	total, count := s.Store.Totals()
	return structs.State{
		View:      string(route.View),
		ProductID: route.ProductID,
		Dark:      s.Store.Dark(),
		Admin:     s.Store.IsAdmin(),
		Filter:    s.Store.Filter(),
		Cart:      s.Store.Cart(),
		Totals:    structs.Totals{TotalXof: total, Count: count, Label: pricing.FormatXOF(total)},
		Favorites: s.Store.Favorites(),
		Profile:   s.Store.Profile(),
		Toast:     s.Toasts.Current(),
	}
}

func (h *handler) GetState(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
	)
	defer middleware.Respond(c, &response)

	response = responses.Success
	response.Payload = State(s)
}

// Navigate accepts either a fragment ("#/product/7") or a view name.
func (h *handler) Navigate(c *gin.Context) {
	var (
		response structs.Response
		request  structs.Navigate
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
	)
	defer middleware.Respond(c, &response)

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	route := router.Route{View: router.ParseView(request.View), ProductID: request.ID}
	if request.Fragment != "" {
		route = router.Parse(request.Fragment)
	}
	s.Store.Navigate(route.View, route.ProductID)

	response = responses.Success
	response.Payload = router.Fragment(route.View, route.ProductID)
}

func (h *handler) ToggleTheme(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
	)
	defer middleware.Respond(c, &response)

	response = responses.Success
	response.Payload = gin.H{"dark": s.Store.ToggleTheme()}
}

func (h *handler) GetProfile(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
	)
	defer middleware.Respond(c, &response)

	response = responses.Success
	response.Payload = s.Store.Profile()
}

func (h *handler) UpdateContact(c *gin.Context) {
	var (
		response structs.Response
		request  structs.UpdateContact
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
	)
	defer middleware.Respond(c, &response)

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	response = responses.Success
	response.Payload = s.Store.UpdateContact(ctx, request.Name, request.Phone, request.Address)
}

func (h *handler) AutoConnect(c *gin.Context) {
	var (
		response structs.Response
		request  structs.AutoConnect
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
	)
	defer middleware.Respond(c, &response)

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	if err := s.Store.AutoConnect(ctx, request.InitData, request.User); err != nil {
		if !errors.Is(err, structs.ErrMissingTelegram) {
			h.logger.Error(ctx, " err on s.Store.AutoConnect", zap.Error(err))
		}
		_, response = responses.FromError(err)
		return
	}

	// only signed init data proves the account; the unsafe user does not
	if userID := s.Store.Profile().TelegramUserID; strings.TrimSpace(request.InitData) != "" && userID > 0 {
		s = h.link(c, s, userID)
	}

	response = responses.Success
	response.Payload = s.Store.Profile()
}

// link moves the client's token onto the Telegram user's own session, shared
// with the bot, and returns it.
func (h *handler) link(c *gin.Context, s *session.Session, userID int64) *session.Session {
	ctx := c.Request.Context()
	token := middleware.Token(c)

	id := h.sessions.Link(ctx, token, userID)
	if id == s.ID {
		return s
	}

	linked := h.sessions.Open(ctx, id)
	if linked.Store.Profile().TelegramUserID != userID {
		linked.Store.AdoptTelegram(ctx, s.Store.Profile())
	}
	middleware.Attach(c, linked)

	if s.ID == token {
		h.sessions.Close(s.ID)
	}
	return linked
}

func (h *handler) ListFavorites(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
	)
	defer middleware.Respond(c, &response)

	response = responses.Success
	response.Payload = s.Store.FavoriteProducts()
}

func (h *handler) ToggleFavorite(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
		id       = cast.ToInt64(c.Param("id"))
	)
	defer middleware.Respond(c, &response)

	if id <= 0 {
		response = responses.BadRequest
		return
	}

	response = responses.Success
	response.Payload = gin.H{"id": id, "favorite": s.Store.ToggleFavorite(c.Request.Context(), id)}
}
