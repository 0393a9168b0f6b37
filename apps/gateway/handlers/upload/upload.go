package upload

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/apps/gateway/handlers/middleware"
	"stickerstreet/internal/admin"
	"stickerstreet/internal/responses"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/logger"
)

var (
	Module = fx.Provide(New)
)

type (
	Handler interface {
		ProductVisual(c *gin.Context)
		BannerImage(c *gin.Context)
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

// readFile loads the "file" part, one byte past the size limit so oversized
// files are still detected.
func (h *handler) readFile(c *gin.Context) (structs.File, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return structs.File{}, err
	}
	f, err := fh.Open()
	if err != nil {
		return structs.File{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, admin.MaxImageBytes+1))
	if err != nil {
		return structs.File{}, err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType, _, _ = strings.Cut(http.DetectContentType(data), ";")
	}
	return structs.File{Name: fh.Filename, ContentType: contentType, Data: data}, nil
}

type imported struct {
	URL   string `json:"url"`
	Local bool   `json:"local"`
}

func (h *handler) ProductVisual(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
		force    = cast.ToBool(c.PostForm("force"))
		n        = cast.ToInt(c.DefaultPostForm("n", "1"))
	)
	defer middleware.Respond(c, &response)

	file, err := h.readFile(c)
	if err != nil {
		h.logger.Warn(ctx, " error read upload", zap.Error(err))
		response = responses.BadRequest
		return
	}

	url, err := s.Editor.ImportProductVisual(ctx, n, file, force)
	if err != nil {
		_, response = responses.FromError(err)
		return
	}

	response = responses.Success
	response.Payload = imported{URL: url, Local: strings.HasPrefix(url, "data:")}
}

func (h *handler) BannerImage(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
		ctx      = c.Request.Context()
		force    = cast.ToBool(c.PostForm("force"))
	)
	defer middleware.Respond(c, &response)

	file, err := h.readFile(c)
	if err != nil {
		h.logger.Warn(ctx, " error read upload", zap.Error(err))
		response = responses.BadRequest
		return
	}

	url, err := s.Editor.ImportBannerImage(ctx, file, force)
	if err != nil {
		_, response = responses.FromError(err)
		return
	}

	response = responses.Success
	response.Payload = imported{URL: url, Local: strings.HasPrefix(url, "data:")}
}
