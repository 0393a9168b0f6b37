package pkg

import (
	"go.uber.org/fx"

	"stickerstreet/pkg/apiclient"
	"stickerstreet/pkg/config"
	"stickerstreet/pkg/filemanager"
	"stickerstreet/pkg/kv"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/reply"
	"stickerstreet/pkg/tgrouter"
)

var Module = fx.Options(
	config.Module,
	logger.Module,
	reply.Module,
	kv.Module,
	apiclient.Module,
	filemanager.Module,
	tgrouter.Module,
)
