package gateway

import (
	"go.uber.org/fx"

	"stickerstreet/apps/gateway/handlers"
)

var Module = fx.Options(
	handlers.Module,
)
