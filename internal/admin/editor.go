package admin

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stickerstreet/internal/catalog"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/logger"
)

const (
	maxVisuals   = 3
	defaultEmoji = "📦"

	msgMissingFields = "Remplis nom, description, tailles, prix XOF et au moins 1 visuel"
	msgMissingBanner = "Image de bannière requise"
	msgNotImage      = "Fichier image requis"
	msgTooLarge      = "Image trop lourde (max 5MB)"
)

// Catalog is the admin side of a storefront session.
type Catalog interface {
	CreateProduct(ctx context.Context, payload structs.ProductPayload) (structs.Product, error)
	UpdateProduct(ctx context.Context, id int64, payload structs.ProductPayload) (structs.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	CreateBanner(ctx context.Context, payload structs.BannerPayload) (structs.Banner, error)
	UpdateBanner(ctx context.Context, id int64, payload structs.BannerPayload) (structs.Banner, error)
	DeleteBanner(ctx context.Context, id int64) error
}

type Notifier interface {
	Notify(msg string)
}

// SizeRow overrides the base prices for one size. Zero fields inherit the
// form's base value.
type SizeRow struct {
	Price float64 `json:"price"`
	Ton   float64 `json:"ton"`
	Xof   float64 `json:"xof"`
}

type ProductForm struct {
	ID      int64              `json:"id"`
	Name    string             `json:"name"`
	Cat     string             `json:"cat"`
	Desc    string             `json:"desc"`
	Emoji   string             `json:"emoji"`
	Grad    string             `json:"grad"`
	Sizes   string             `json:"sizes"`
	Price   float64            `json:"price"`
	Ton     float64            `json:"ton"`
	Xof     float64            `json:"xof"`
	Custom  bool               `json:"custom"`
	Visuals []string           `json:"visuals"`
	Rows    map[string]SizeRow `json:"pricesBySize"`
}

// ParseSizes splits a comma-separated size list.
func ParseSizes(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonZero(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func (f ProductForm) visuals() []string {
	var out []string
	for _, v := range f.Visuals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
		if len(out) == maxVisuals {
			break
		}
	}
	return out
}

// Payload builds the request body, or ErrMissingFields.
func (f ProductForm) Payload() (structs.ProductPayload, error) {
	name := strings.TrimSpace(f.Name)
	desc := strings.TrimSpace(f.Desc)
	sizes := ParseSizes(f.Sizes)
	visuals := f.visuals()

	if name == "" || desc == "" || len(sizes) == 0 || f.Xof <= 0 || len(visuals) == 0 {
		return structs.ProductPayload{}, structs.ErrMissingFields
	}

	bySize := make(map[string]structs.SizePrice, len(sizes))
	for _, size := range sizes {
		row := f.Rows[size]
		bySize[size] = structs.SizePrice{
			Price: structs.AmountPtr(firstNonZero(row.Price, f.Price)),
			Ton:   structs.AmountPtr(firstNonZero(row.Ton, f.Ton)),
			Xof:   structs.AmountPtr(firstNonZero(row.Xof, f.Xof)),
		}
	}

	cat := strings.TrimSpace(f.Cat)
	if cat == "" {
		cat = catalog.CategoryStickers
	}
	emoji := strings.TrimSpace(f.Emoji)
	if emoji == "" {
		emoji = defaultEmoji
	}

	return structs.ProductPayload{
		Name:         name,
		Cat:          cat,
		Xof:          f.Xof,
		Price:        f.Price,
		Ton:          f.Ton,
		Sizes:        sizes,
		Desc:         desc,
		Custom:       f.Custom,
		Emoji:        emoji,
		Grad:         f.Grad,
		Visuals:      visuals,
		Img:          visuals[0],
		PricesBySize: bySize,
	}, nil
}

type BannerForm struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Image   string `json:"image"`
	Link    string `json:"link"`
	Section string `json:"section"`
	Active  bool   `json:"active"`
}

func (f BannerForm) Payload() (structs.BannerPayload, error) {
	image := strings.TrimSpace(f.Image)
	if image == "" {
		return structs.BannerPayload{}, structs.ErrMissingFields
	}
	section := strings.TrimSpace(f.Section)
	if section != structs.BannerSectionProfile {
		section = structs.BannerSectionHome
	}
	return structs.BannerPayload{
		Title:   strings.TrimSpace(f.Title),
		Image:   image,
		Link:    strings.TrimSpace(f.Link),
		Section: section,
		Active:  f.Active,
	}, nil
}

// Editor runs the admin forms of one session: images are checked before any
// write, and imports never fail just because the upload service is down.
type Editor struct {
	catalog   Catalog
	validator *Validator
	uploader  Uploader
	notifier  Notifier
	logger    logger.Logger
}

func NewEditor(c Catalog, v *Validator, u Uploader, n Notifier, log logger.Logger) *Editor {
	return &Editor{catalog: c, validator: v, uploader: u, notifier: n, logger: log}
}

// gate reports a failed check. With force the submission goes on after a
// warning.
func (e *Editor) gate(check Check, label string, force bool) error {
	if check.OK {
		return nil
	}
	msg := label + ": " + check.Message
	if !force {
		e.notifier.Notify(msg)
		return fmt.Errorf("%w: %s", structs.ErrImageRejected, msg)
	}
	e.notifier.Notify("⚠️ " + msg + " (forçage activé)")
	return nil
}

func (e *Editor) SubmitProduct(ctx context.Context, form ProductForm, force bool) (structs.Product, error) {
	payload, err := form.Payload()
	if err != nil {
		e.notifier.Notify(msgMissingFields)
		return structs.Product{}, err
	}

	for i, src := range payload.Visuals {
		check := e.validator.Validate(ctx, src, ProductVisualRules)
		if err := e.gate(check, fmt.Sprintf("Visuel %d", i+1), force); err != nil {
			return structs.Product{}, err
		}
	}

	if form.ID == 0 {
		return e.catalog.CreateProduct(ctx, payload)
	}
	return e.catalog.UpdateProduct(ctx, form.ID, payload)
}

func (e *Editor) SubmitBanner(ctx context.Context, form BannerForm, force bool) (structs.Banner, error) {
	payload, err := form.Payload()
	if err != nil {
		e.notifier.Notify(msgMissingBanner)
		return structs.Banner{}, err
	}

	check := e.validator.Validate(ctx, payload.Image, BannerRules)
	if err := e.gate(check, "Bannière", force); err != nil {
		return structs.Banner{}, err
	}

	if form.ID == 0 {
		return e.catalog.CreateBanner(ctx, payload)
	}
	return e.catalog.UpdateBanner(ctx, form.ID, payload)
}

func (e *Editor) DeleteProduct(ctx context.Context, id int64) error {
	if err := e.catalog.DeleteProduct(ctx, id); err != nil {
		e.notifier.Notify("Erreur suppression produit")
		return err
	}
	return nil
}

func (e *Editor) DeleteBanner(ctx context.Context, id int64) error {
	if err := e.catalog.DeleteBanner(ctx, id); err != nil {
		e.notifier.Notify("Erreur suppression bannière")
		return err
	}
	return nil
}

func (e *Editor) checkFile(file structs.File) error {
	if !strings.HasPrefix(file.ContentType, "image/") {
		e.notifier.Notify(msgNotImage)
		return structs.ErrNotImage
	}
	if len(file.Data) > MaxImageBytes {
		e.notifier.Notify(msgTooLarge)
		return structs.ErrImageTooLarge
	}
	return nil
}

// upload stores the file remotely, or embeds it as a data URL when the
// upload fails.
func (e *Editor) upload(ctx context.Context, file structs.File, folder, fallbackMsg string) (url string, local bool) {
	url, err := e.uploader.Upload(ctx, file, folder)
	if err == nil {
		return url, false
	}
	e.logger.Warn(ctx, "->uploader.Upload", zap.String("folder", folder), zap.String("file", file.Name), zap.Error(err))
	e.notifier.Notify(fallbackMsg)
	return DataURL(file.ContentType, file.Data), true
}

// ImportProductVisual checks and uploads the n-th visual (1-based) and returns
// the reference to put in the form.
func (e *Editor) ImportProductVisual(ctx context.Context, n int, file structs.File, force bool) (string, error) {
	if err := e.checkFile(file); err != nil {
		return "", err
	}

	check := e.validator.ValidateBytes(ctx, file.Data, ProductVisualRules)
	if err := e.gate(check, fmt.Sprintf("Visuel %d", n), force); err != nil {
		return "", err
	}

	url, local := e.upload(ctx, file, FolderProducts, "Upload Blob indisponible, image ajoutée en mode local")
	if !local {
		e.notifier.Notify(fmt.Sprintf("Visuel %d importé ✓", n))
	}
	return url, nil
}

func (e *Editor) ImportBannerImage(ctx context.Context, file structs.File, force bool) (string, error) {
	if err := e.checkFile(file); err != nil {
		return "", err
	}

	check := e.validator.ValidateBytes(ctx, file.Data, BannerRules)
	if err := e.gate(check, "Bannière", force); err != nil {
		return "", err
	}

	url, local := e.upload(ctx, file, FolderBanners, "Upload Blob indisponible, bannière ajoutée en mode local")
	if !local {
		e.notifier.Notify("Image bannière importée ✓")
	}
	return url, nil
}
