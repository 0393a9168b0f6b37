package handlers

import (
	"go.uber.org/fx"

	"stickerstreet/apps/gateway/handlers/admin"
	"stickerstreet/apps/gateway/handlers/cart"
	"stickerstreet/apps/gateway/handlers/catalog"
	"stickerstreet/apps/gateway/handlers/chat"
	"stickerstreet/apps/gateway/handlers/middleware"
	"stickerstreet/apps/gateway/handlers/order"
	"stickerstreet/apps/gateway/handlers/shop"
	"stickerstreet/apps/gateway/handlers/upload"
	"stickerstreet/apps/gateway/handlers/ws"
)

var Module = fx.Options(
	middleware.Module,
	catalog.Module,
	shop.Module,
	cart.Module,
	order.Module,
	admin.Module,
	upload.Module,
	chat.Module,
	ws.Module,
)
