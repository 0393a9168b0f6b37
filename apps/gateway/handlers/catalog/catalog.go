package catalog

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/fx"

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
		ListProducts(c *gin.Context)
		GetProduct(c *gin.Context)
		ShowProduct(c *gin.Context)
		ListBanners(c *gin.Context)
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

// ListProducts returns the catalog, narrowed to ?cat= when given.
func (h *handler) ListProducts(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
	)
	defer middleware.Respond(c, &response)

	if cat := strings.TrimSpace(c.Query("cat")); cat != "" {
		s.Store.SetFilter(cat)
	}

	response = responses.Success
	response.Payload = s.Store.FilteredProducts()
}

func (h *handler) GetProduct(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
		id       = cast.ToInt64(c.Param("id"))
	)
	defer middleware.Respond(c, &response)

	p, ok := s.Store.Product(id)
	if !ok {
		response = responses.NotFound
		return
	}

	response = responses.Success
	response.Payload = p
}

// ShowProduct selects a product and opens its view.
func (h *handler) ShowProduct(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
		id       = cast.ToInt64(c.Param("id"))
	)
	defer middleware.Respond(c, &response)

	p, ok := s.Store.Product(id)
	if !ok {
		response = responses.NotFound
		return
	}
	s.Store.ShowProduct(p)

	response = responses.Success
	response.Payload = p
}

// ListBanners returns the marquee of ?section= (home by default).
func (h *handler) ListBanners(c *gin.Context) {
	var (
		response structs.Response
		s        = middleware.Current(c)
		section  = c.DefaultQuery("section", structs.BannerSectionHome)
	)
	defer middleware.Respond(c, &response)

	response = responses.Success
	if c.Query("all") != "" && s.Store.IsAdmin() {
		response.Payload = s.Store.Banners()
		return
	}
	response.Payload = s.Store.SectionBanners(section)
}
