package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/apps/gateway/handlers/middleware"
	editor "stickerstreet/internal/admin"
	"stickerstreet/internal/responses"
	"stickerstreet/internal/structs"
	"stickerstreet/internal/ws"
	"stickerstreet/pkg/logger"
)

var (
	Module = fx.Provide(New)
)

type (
	Handler interface {
		Unlock(c *gin.Context)
		Lock(c *gin.Context)
		ChangePin(c *gin.Context)
		SaveProduct(c *gin.Context)
		DeleteProduct(c *gin.Context)
		SaveBanner(c *gin.Context)
		DeleteBanner(c *gin.Context)
		ListOrders(c *gin.Context)
		UpdateOrderStatus(c *gin.Context)
		ValidateImage(c *gin.Context)
	}

	Params struct {
		fx.In
		Logger    logger.Logger
		Hub       *ws.Hub
		Validator *editor.Validator
	}

	handler struct {
		logger    logger.Logger
		hub       *ws.Hub
		validator *editor.Validator
	}
)

func New(p Params) Handler {
	return &handler{
		logger:    p.Logger,
		hub:       p.Hub,
		validator: p.Validator,
	}
}

func (h *handler) Unlock(c *gin.Context) {
	var (
		response structs.Response
		request  structs.AdminPin
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
	)
	defer middleware.Respond(c, &response)

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	if err := s.Store.UnlockAdmin(request.Pin); err != nil {
		h.logger.Warn(ctx, " admin unlock refused")
		_, response = responses.FromError(err)
		return
	}

	response = responses.Success
}

func (h *handler) Lock(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
	)
	defer middleware.Respond(c, &response)

	s.Store.LockAdmin()
	response = responses.Success
}

func (h *handler) ChangePin(c *gin.Context) {
	var (
		response structs.Response
		request  structs.AdminPin
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
	)
	defer middleware.Respond(c, &response)

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	if err := s.Store.ChangeAdminPin(ctx, request.Pin); err != nil {
		_, response = responses.FromError(err)
		return
	}

	response = responses.Success
}

// SaveProduct creates the product, or updates it when the form has an id.
// ?force=1 submits despite rejected visuals.
func (h *handler) SaveProduct(c *gin.Context) {
	var (
		response structs.Response
		request  editor.ProductForm
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
		force    = cast.ToBool(c.Query("force"))
	)
	defer middleware.Respond(c, &response)

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}
	if id := cast.ToInt64(c.Param("id")); id > 0 {
		request.ID = id
	}

	p, err := s.Editor.SubmitProduct(ctx, request, force)
	if err != nil {
		_, response = responses.FromError(err)
		return
	}

	response = responses.Success
	response.Payload = p
}

func (h *handler) DeleteProduct(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
	)
	defer middleware.Respond(c, &response)

	if err := s.Editor.DeleteProduct(ctx, cast.ToInt64(c.Param("id"))); err != nil {
		h.logger.Error(ctx, " err on s.Editor.DeleteProduct", zap.Error(err))
		_, response = responses.FromError(err)
		return
	}

	response = responses.Success
}

func (h *handler) SaveBanner(c *gin.Context) {
	var (
		response structs.Response
		request  editor.BannerForm
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
		force    = cast.ToBool(c.Query("force"))
	)
	defer middleware.Respond(c, &response)

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}
	if id := cast.ToInt64(c.Param("id")); id > 0 {
		request.ID = id
	}

	b, err := s.Editor.SubmitBanner(ctx, request, force)
	if err != nil {
		_, response = responses.FromError(err)
		return
	}

	response = responses.Success
	response.Payload = b
}

func (h *handler) DeleteBanner(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
	)
	defer middleware.Respond(c, &response)

	if err := s.Editor.DeleteBanner(ctx, cast.ToInt64(c.Param("id"))); err != nil {
		h.logger.Error(ctx, " err on s.Editor.DeleteBanner", zap.Error(err))
		_, response = responses.FromError(err)
		return
	}

	response = responses.Success
}

func (h *handler) ListOrders(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
	)
	defer middleware.Respond(c, &response)

	s.Store.LoadOrders(c.Request.Context())

	response = responses.Success
	response.Payload = s.Store.Orders()
}

// UpdateOrderStatus also tells every admin socket about the change.
func (h *handler) UpdateOrderStatus(c *gin.Context) {
	var (
		response structs.Response
		request  structs.UpdateOrderStatus
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
		orderID  = c.Param("id")
	)
	defer middleware.Respond(c, &response)

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	if err := s.Store.UpdateOrderStatus(ctx, orderID, request.Status); err != nil {
		_, response = responses.FromError(err)
		return
	}

	h.hub.BroadcastToAdmins(ws.Event{
		Type: ws.EventOrderStatus,
		Data: gin.H{"id": orderID, "status": request.Status},
	})

	response = responses.Success
	response.Payload = s.Store.Orders()
}

// ValidateImage checks an image reference without submitting anything.
func (h *handler) ValidateImage(c *gin.Context) {
	var (
		response structs.Response
		request  structs.ValidateImage
		ctx      = c.Request.Context()
	)
	defer middleware.Respond(c, &response)

	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.Warn(ctx, " error parse request", zap.Error(err))
		response = responses.BadRequest
		return
	}

	rules := editor.ProductVisualRules
	if request.Kind == "banner" {
		rules = editor.BannerRules
	}

	response = responses.Success
	response.Payload = h.validator.Validate(ctx, request.Src, rules)
}
