package router

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/apps/gateway/handlers/admin"
	"stickerstreet/apps/gateway/handlers/cart"
	"stickerstreet/apps/gateway/handlers/catalog"
	"stickerstreet/apps/gateway/handlers/chat"
	"stickerstreet/apps/gateway/handlers/middleware"
	"stickerstreet/apps/gateway/handlers/order"
	"stickerstreet/apps/gateway/handlers/shop"
	"stickerstreet/apps/gateway/handlers/upload"
	"stickerstreet/apps/gateway/handlers/ws"
	"stickerstreet/pkg/config"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/metrics"
)

var Module = fx.Options(
	fx.Provide(NewEngine),
	fx.Invoke(Serve),
)

type Params struct {
	fx.In

	middleware.Middleware
	Catalog catalog.Handler
	Shop    shop.Handler
	Cart    cart.Handler
	Order   order.Handler
	Admin   admin.Handler
	Upload  upload.Handler
	Chat    chat.Handler
	WS      ws.Handler
}

func NewEngine(params Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), metrics.Middleware())
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api/v1")
	api.Use(params.Ctx(), gin.Logger(), params.Session())

	api.GET("/state", params.Shop.GetState)
	api.POST("/navigate", params.Shop.Navigate)
	api.POST("/theme", params.Shop.ToggleTheme)

	productGroup := api.Group("/products")
	{
		productGroup.GET("", params.Catalog.ListProducts)
		productGroup.GET("/:id", params.Catalog.GetProduct)
		productGroup.POST("/:id/show", params.Catalog.ShowProduct)
	}
	api.GET("/banners", params.Catalog.ListBanners)

	cartGroup := api.Group("/cart")
	{
		cartGroup.GET("", params.Cart.GetCart)
		cartGroup.POST("", params.Cart.AddItem)
		cartGroup.PATCH("/:index", params.Cart.UpdateQuantity)
		cartGroup.DELETE("/:index", params.Cart.RemoveItem)
	}

	profileGroup := api.Group("/profile")
	{
		profileGroup.GET("", params.Shop.GetProfile)
		profileGroup.PUT("", params.Shop.UpdateContact)
		profileGroup.POST("/telegram", params.Shop.AutoConnect)
	}

	favoriteGroup := api.Group("/favorites")
	{
		favoriteGroup.GET("", params.Shop.ListFavorites)
		favoriteGroup.POST("/:id", params.Shop.ToggleFavorite)
	}

	orderGroup := api.Group("/orders")
	{
		orderGroup.GET("", params.Order.ListOrders)
		orderGroup.GET("/statuses", params.Order.Statuses)
		orderGroup.POST("/checkout", params.Order.Checkout)
	}

	payGroup := api.Group("/pay")
	{
		payGroup.GET("/momo", params.Order.MomoOperators)
		payGroup.GET("/ton/quote", params.Order.TonQuote)
		payGroup.GET("/ton/qr", params.Order.TonQR)
	}

	chatGroup := api.Group("/chat")
	{
		chatGroup.GET("", params.Chat.GetMessages)
		chatGroup.POST("", params.Chat.PostMessage)
		chatGroup.GET("/ws", params.WS.ChatWS)
	}

	api.POST("/admin/unlock", params.Admin.Unlock)

	adminGroup := api.Group("/admin")
	adminGroup.Use(params.Middleware.Admin())
	{
		adminGroup.POST("/lock", params.Admin.Lock)
		adminGroup.PUT("/pin", params.Admin.ChangePin)

		adminGroup.POST("/products", params.Admin.SaveProduct)
		adminGroup.PATCH("/products/:id", params.Admin.SaveProduct)
		adminGroup.DELETE("/products/:id", params.Admin.DeleteProduct)

		adminGroup.POST("/banners", params.Admin.SaveBanner)
		adminGroup.PATCH("/banners/:id", params.Admin.SaveBanner)
		adminGroup.DELETE("/banners/:id", params.Admin.DeleteBanner)

		adminGroup.GET("/orders", params.Admin.ListOrders)
		adminGroup.PUT("/orders/:id/status", params.Admin.UpdateOrderStatus)

		adminGroup.POST("/images/validate", params.Admin.ValidateImage)
		adminGroup.POST("/upload/product", params.Upload.ProductVisual)
		adminGroup.POST("/upload/banner", params.Upload.BannerImage)

		adminGroup.GET("/ws", params.WS.AdminWS)
	}

	return r
}

type ServeParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.IConfig
	Logger    logger.Logger
	Engine    *gin.Engine
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.SessionHeader},
		AllowCredentials: true,
	}
}

func Serve(params ServeParams) {
	addr := net.JoinHostPort(params.Config.GetString("server.host"), params.Config.GetString("server.port"))
	server := &http.Server{
		Addr:    addr,
		Handler: cors.New(corsOptions(params.Config.GetStringSlice("server.allowed_origins"))).Handler(params.Engine),
	}

	params.Lifecycle.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				params.Logger.Info(ctx, "Starting application")
				go func() {
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						params.Logger.Error(context.Background(), "Err on ListenAndServe", zap.Error(err))
					}
				}()

				params.Logger.Info(ctx, "Application starting on", zap.String("addr", addr))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				params.Logger.Info(ctx, "Application stopped")
				return server.Shutdown(ctx)
			},
		},
	)
}
