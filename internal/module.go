package internal

import (
	"go.uber.org/fx"

	"stickerstreet/internal/admin"
	"stickerstreet/internal/payment"
	"stickerstreet/internal/session"
	"stickerstreet/internal/ws"
)

var Module = fx.Options(
	ws.Module,
	admin.Module,
	payment.Module,
	session.Module,
)
