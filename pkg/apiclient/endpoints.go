package apiclient

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"stickerstreet/internal/structs"
)

const AdminKeyHeader = "X-Admin-Key"

type Client interface {
	Products(ctx context.Context) ([]structs.Product, error)
	Product(ctx context.Context, id int64) (structs.Product, error)
	CreateProduct(ctx context.Context, payload structs.ProductPayload) (structs.Product, error)
	PatchProduct(ctx context.Context, id int64, payload structs.ProductPayload) (structs.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	Banners(ctx context.Context) ([]structs.Banner, error)
	CreateBanner(ctx context.Context, payload structs.BannerPayload) (structs.Banner, error)
	PatchBanner(ctx context.Context, id int64, payload structs.BannerPayload) (structs.Banner, error)
	DeleteBanner(ctx context.Context, id int64) error

	// Orders lists every order when telegramUserID is 0.
	Orders(ctx context.Context, telegramUserID int64) ([]structs.Order, error)
	CreateOrder(ctx context.Context, items []structs.OrderItem, profile *structs.Profile) (structs.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status structs.OrderStatus) (structs.Order, error)

	Chat(ctx context.Context) ([]structs.ChatMessage, error)
	PostChatMessage(ctx context.Context, text string) ([]structs.ChatMessage, error)

	AuthTelegram(ctx context.Context, user structs.TelegramUser) (structs.AuthResult, error)
	AuthTelegramMiniApp(ctx context.Context, initData string, user *structs.TelegramUser) (structs.AuthResult, error)

	CreateStarsInvoice(ctx context.Context, items []structs.OrderItem, totalXof float64, profile *structs.Profile) (structs.StarsInvoice, error)
	Momo(ctx context.Context) ([]structs.MomoOperator, error)
	TonRate(ctx context.Context, totalXof float64) (structs.TonRate, error)

	UploadBlob(ctx context.Context, file structs.File, folder string) (structs.UploadResult, error)
}

func (c *client) Products(ctx context.Context) ([]structs.Product, error) {
	var out []structs.Product
	err := c.do(ctx, call{op: "products.list", fallback: "Erreur chargement produits", method: http.MethodGet, path: "/products"}, &out)
	return out, err
}

func (c *client) Product(ctx context.Context, id int64) (structs.Product, error) {
	var out structs.Product
	err := c.do(ctx, call{
		op: "products.get", fallback: "Erreur chargement produit", withStatus: true,
		method: http.MethodGet, path: "/products/" + strconv.FormatInt(id, 10),
	}, &out)
	return out, err
}

func (c *client) CreateProduct(ctx context.Context, payload structs.ProductPayload) (structs.Product, error) {
	var out structs.Product
	err := c.do(ctx, call{
		op: "products.create", fallback: "Erreur ajout produit", withStatus: true,
		method: http.MethodPost, path: "/products", body: payload, admin: true,
	}, &out)
	return out, err
}

func (c *client) PatchProduct(ctx context.Context, id int64, payload structs.ProductPayload) (structs.Product, error) {
	var out structs.Product
	err := c.do(ctx, call{
		op: "products.patch", fallback: "Erreur modification produit", withStatus: true,
		method: http.MethodPatch, path: "/products/" + strconv.FormatInt(id, 10), body: payload, admin: true,
	}, &out)
	return out, err
}

func (c *client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		op: "products.delete", fallback: "Erreur suppression produit", withStatus: true,
		method: http.MethodDelete, path: "/products/" + strconv.FormatInt(id, 10), admin: true,
	}, nil)
}

func (c *client) Banners(ctx context.Context) ([]structs.Banner, error) {
	var out []structs.Banner
	err := c.do(ctx, call{op: "banners.list", fallback: "Erreur chargement bannières", method: http.MethodGet, path: "/banners"}, &out)
	return out, err
}

func (c *client) CreateBanner(ctx context.Context, payload structs.BannerPayload) (structs.Banner, error) {
	var out structs.Banner
	err := c.do(ctx, call{
		op: "banners.create", fallback: "Erreur ajout bannière", withStatus: true,
		method: http.MethodPost, path: "/banners", body: payload, admin: true,
	}, &out)
	return out, err
}

func (c *client) PatchBanner(ctx context.Context, id int64, payload structs.BannerPayload) (structs.Banner, error) {
	var out structs.Banner
	err := c.do(ctx, call{
		op: "banners.patch", fallback: "Erreur modification bannière", withStatus: true,
		method: http.MethodPatch, path: "/banners/" + strconv.FormatInt(id, 10), body: payload, admin: true,
	}, &out)
	return out, err
}

func (c *client) DeleteBanner(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		op: "banners.delete", fallback: "Erreur suppression bannière", withStatus: true,
		method: http.MethodDelete, path: "/banners/" + strconv.FormatInt(id, 10), admin: true,
	}, nil)
}

func (c *client) Orders(ctx context.Context, telegramUserID int64) ([]structs.Order, error) {
	var query url.Values
	if telegramUserID != 0 {
		query = url.Values{"telegram_user_id": {strconv.FormatInt(telegramUserID, 10)}}
	}

	var out []structs.Order
	err := c.do(ctx, call{
		op: "orders.list", fallback: "Erreur chargement commandes",
		method: http.MethodGet, path: "/orders", query: query,
	}, &out)
	return out, err
}

func (c *client) CreateOrder(ctx context.Context, items []structs.OrderItem, profile *structs.Profile) (structs.Order, error) {
	body := structs.CreateOrder{Items: items}
	if profile != nil {
		body.ClientName = profile.Name
		body.ClientPhone = profile.Phone
		body.ClientAddress = profile.Address
		body.TelegramUserID = profile.TelegramUserID
	}

	var out structs.Order
	err := c.do(ctx, call{
		op: "orders.create", fallback: "Erreur création commande", withStatus: true,
		method: http.MethodPost, path: "/orders", body: body,
	}, &out)
	return out, err
}

func (c *client) UpdateOrderStatus(ctx context.Context, orderID string, status structs.OrderStatus) (structs.Order, error) {
	var out structs.Order
	err := c.do(ctx, call{
		op: "orders.status", fallback: "Erreur mise à jour statut",
		method: http.MethodPatch, path: "/orders/" + url.PathEscape(orderID) + "/status",
		body: structs.UpdateOrderStatus{Status: status}, admin: true,
	}, &out)
	return out, err
}

func (c *client) Chat(ctx context.Context) ([]structs.ChatMessage, error) {
	var out []structs.ChatMessage
	err := c.do(ctx, call{
		op: "chat.list", fallback: "Erreur chargement chat", withStatus: true,
		method: http.MethodGet, path: "/chat",
	}, &out)
	return out, err
}

func (c *client) PostChatMessage(ctx context.Context, text string) ([]structs.ChatMessage, error) {
	var out []structs.ChatMessage
	err := c.do(ctx, call{
		op: "chat.post", fallback: "Erreur envoi message", withStatus: true,
		method: http.MethodPost, path: "/chat", body: structs.PostChatMessage{Text: text},
	}, &out)
	return out, err
}

func (c *client) AuthTelegram(ctx context.Context, user structs.TelegramUser) (structs.AuthResult, error) {
	var out structs.AuthResult
	err := c.do(ctx, call{
		op: "auth.telegram", fallback: "Erreur authentification Telegram",
		method: http.MethodPost, path: "/auth/telegram", body: user,
	}, &out)
	return out, err
}

// AuthTelegramMiniApp prefers initData and falls back to the unsafe user. With
// neither it fails without sending anything.
func (c *client) AuthTelegramMiniApp(ctx context.Context, initData string, user *structs.TelegramUser) (structs.AuthResult, error) {
	var body structs.MiniAppAuth
	if strings.TrimSpace(initData) != "" {
		body.InitData = initData
	}
	if user != nil && user.ID != 0 {
		body.InitDataUnsafeUser = user
	}
	if body.InitData == "" && body.InitDataUnsafeUser == nil {
		return structs.AuthResult{}, structs.ErrMissingTelegram
	}

	var out structs.AuthResult
	err := c.do(ctx, call{
		op: "auth.miniapp", fallback: "Erreur connexion Mini App",
		method: http.MethodPost, path: "/auth/telegram-miniapp", body: body,
	}, &out)
	return out, err
}

func (c *client) CreateStarsInvoice(ctx context.Context, items []structs.OrderItem, totalXof float64, profile *structs.Profile) (structs.StarsInvoice, error) {
	body := structs.StarsInvoiceRequest{Items: items, TotalXof: totalXof}
	if profile != nil {
		body.ClientName = profile.Name
		body.ClientPhone = profile.Phone
		body.ClientAddress = profile.Address
	}

	var out structs.StarsInvoice
	err := c.do(ctx, call{
		op: "invoice.stars", fallback: "Erreur création facture Stars", withStatus: true,
		method: http.MethodPost, path: "/invoice/stars", body: body,
	}, &out)
	return out, err
}

func (c *client) Momo(ctx context.Context) ([]structs.MomoOperator, error) {
	var out []structs.MomoOperator
	err := c.do(ctx, call{op: "momo.list", fallback: "Erreur chargement paiements", method: http.MethodGet, path: "/momo"}, &out)
	return out, err
}

func (c *client) TonRate(ctx context.Context, totalXof float64) (structs.TonRate, error) {
	var out structs.TonRate
	err := c.do(ctx, call{
		op: "rates.ton", fallback: "Taux TON indisponible",
		method: http.MethodGet, path: "/rates/ton",
		query: url.Values{"total_xof": {strconv.FormatFloat(totalXof, 'f', -1, 64)}},
	}, &out)
	return out, err
}

func (c *client) UploadBlob(ctx context.Context, file structs.File, folder string) (structs.UploadResult, error) {
	if folder == "" {
		folder = "uploads"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+escapeQuotes(file.Name)+`"`)
	if file.ContentType != "" {
		header.Set("Content-Type", file.ContentType)
	}

	var out structs.UploadResult
	cl := call{
		op: "upload.blob", fallback: "Erreur upload image", withStatus: true,
		method: http.MethodPost, path: "/upload/blob", admin: true,
	}

	part, err := w.CreatePart(header)
	if err != nil {
		return out, c.fail(ctx, cl, 0, err)
	}
	if _, err = part.Write(file.Data); err != nil {
		return out, c.fail(ctx, cl, 0, err)
	}
	if err = w.WriteField("folder", folder); err != nil {
		return out, c.fail(ctx, cl, 0, err)
	}
	if err = w.Close(); err != nil {
		return out, c.fail(ctx, cl, 0, err)
	}

	cl.raw = &buf
	cl.contentType = w.FormDataContentType()

	err = c.do(ctx, cl, &out)
	return out, err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
