package admin

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"path/filepath"
	"strings"

	"github.com/segmentio/ksuid"
	"go.uber.org/fx"

	"stickerstreet/internal/structs"
	"stickerstreet/pkg/apiclient"
	"stickerstreet/pkg/config"
	"stickerstreet/pkg/filemanager"
)

var Module = fx.Options(
	fx.Provide(NewUploader),
	fx.Provide(func(cfg config.IConfig) *Validator {
		return NewValidator(cfg.GetDuration("admin.validation_timeout"))
	}),
)

const (
	FolderProducts = "products"
	FolderBanners  = "banners"
)

var errNoURL = errors.New("URL image introuvable")

// Uploader stores an image remotely and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file structs.File, folder string) (string, error)
}

type Params struct {
	fx.In

	Config config.IConfig
	API    apiclient.Client
	Files  filemanager.File
}

func NewUploader(p Params) Uploader {
	if p.Config.GetString("upload.driver") == "s3" {
		return &s3Uploader{files: p.Files}
	}
	return &apiUploader{api: p.API}
}

type apiUploader struct {
	api apiclient.Client
}

func (u *apiUploader) Upload(ctx context.Context, file structs.File, folder string) (string, error) {
	res, err := u.api.UploadBlob(ctx, file, folder)
	if err != nil {
		return "", err
	}
	if res.URL == "" {
		return "", errNoURL
	}
	return res.URL, nil
}

type s3Uploader struct {
	files filemanager.File
}

func (u *s3Uploader) Upload(ctx context.Context, file structs.File, folder string) (string, error) {
	return u.files.Upload(ctx, bytes.NewReader(file.Data), folder, objectName(file), file.ContentType)
}

func objectName(file structs.File) string {
	ext := strings.ToLower(filepath.Ext(file.Name))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(file.ContentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	return ksuid.New().String() + ext
}
