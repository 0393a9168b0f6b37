package reply

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/pkg/logger"
)

var Module = fx.Invoke(New)

var iLogger = logger.Nop()

type Params struct {
	fx.In
	Logger logger.Logger
}

func New(params Params) {
	iLogger = params.Logger
}

func Json(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		iLogger.Error(context.TODO(), "err on json.Marshal", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		iLogger.Warn(context.TODO(), "err on write reply", zap.Error(err))
	}
}

// Blob writes binary content such as a QR code image.
func Blob(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		iLogger.Warn(context.TODO(), "err on write blob", zap.Error(err))
	}
}
