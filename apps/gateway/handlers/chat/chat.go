package chat

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/apps/gateway/handlers/middleware"
	"stickerstreet/internal/responses"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/logger"
)

var (
	Module = fx.Provide(New)
)

type (
	Handler interface {
		GetMessages(c *gin.Context)
		PostMessage(c *gin.Context)
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

// GetMessages refreshes the transcript, keeping the local one when the API
// is unreachable.
func (h *handler) GetMessages(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
	)
	defer middleware.Respond(c, &response)

	_ = s.Store.RefreshChat(c.Request.Context())

	response = responses.Success
	response.Payload = s.Store.Messages()
}

// PostMessage always answers with the transcript; a failed send shows up in
// it as a bot message.
func (h *handler) PostMessage(c *gin.Context) {
	var (
		response structs.Response
		request  structs.PostChatMessage
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
	if err := s.Store.SendChatMessage(ctx, request.Text); err != nil {
		_, response = responses.FromError(err)
	}
	response.Payload = s.Store.Messages()
}
