package cart

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/apps/gateway/handlers/middleware"
	"stickerstreet/internal/pricing"
	"stickerstreet/internal/responses"
	"stickerstreet/internal/session"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/logger"
)

var (
	Module = fx.Provide(New)
)

type (
	Handler interface {
		GetCart(c *gin.Context)
		AddItem(c *gin.Context)
		UpdateQuantity(c *gin.Context)
		RemoveItem(c *gin.Context)
	}

	Params struct {
		fx.In
		Logger logger.Logger
	}

	handler struct {
		logger logger.Logger
	}
)

func New(p Params) Handler {
	return &handler{
		logger: p.Logger,
	}
}

type cartView struct {
	Items  []structs.CartItem `json:"items"`
	Totals structs.Totals     `json:"totals"`
}

func view(s *session.Session) cartView {
	total, count := s.Store.Totals()
	return cartView{
		Items:  s.Store.Cart(),
		Totals: structs.Totals{TotalXof: total, Count: count, Label: pricing.FormatXOF(total)},
	}
}

func (h *handler) GetCart(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
	)
	defer middleware.Respond(c, &response)

	response = responses.Success
	response.Payload = view(s)
}

func (h *handler) AddItem(c *gin.Context) {
	var (
		response structs.Response
		request  structs.AddToCart
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
	)
	defer middleware.Respond(c, &response)

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	p, ok := s.Store.Product(request.ProductID)
	if !ok {
		response = responses.NotFound
		return
	}
	if !p.HasSize(request.Size) {
		response = responses.BadRequest
		response.Error = "unknown size " + request.Size
		return
	}

	s.Store.AddItem(ctx, p, request.Size, request.Qty, request.Design)

	response = responses.Success
	response.Payload = view(s)
}

func (h *handler) UpdateQuantity(c *gin.Context) {
	var (
		response structs.Response
		request  structs.UpdateQuantity
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
		index    = cast.ToInt(c.Param("index"))
	)
	defer middleware.Respond(c, &response)

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	if err := s.Store.UpdateQuantity(ctx, index, request.Qty); err != nil {
		_, response = responses.FromError(err)
		response.Payload = view(s)
		return
	}

	response = responses.Success
	response.Payload = view(s)
}

func (h *handler) RemoveItem(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
		index    = cast.ToInt(c.Param("index"))
	)
	defer middleware.Respond(c, &response)

	s.Store.RemoveItem(c.Request.Context(), index)

	response = responses.Success
	response.Payload = view(s)
}
