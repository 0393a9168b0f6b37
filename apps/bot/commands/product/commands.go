package product

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cast"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/apps/bot/middleware"
	"stickerstreet/internal/pricing"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/tgrouter"
	"stickerstreet/pkg/tgrouter/callback"
)

var Module = fx.Provide(New)

const (
	QueryProduct = "prod"
	QueryAdd     = "add"
)

type Params struct {
	fx.In
	Logger logger.Logger
}

type Commands struct {
	logger logger.Logger
}

func New(p Params) Commands {
	return Commands{logger: p.Logger}
}

func reply(c *tgrouter.Ctx, text string) {
	_ = c.Send(tgbotapi.NewMessage(c.ChatID(), text))
}

// Catalog lists every product as a button opening its sheet.
func (cmd *Commands) Catalog(c *tgrouter.Ctx) {
	store := middleware.Current(c.Context).Store
	products := store.Products()
	if len(products) == 0 {
		store.LoadCatalog(c.Context)
		products = store.Products()
	}
	if len(products) == 0 {
		reply(c, "Le catalogue est vide pour le moment")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(products))
	for _, p := range products {
		label := fmt.Sprintf("%s %s · %s", p.Emoji, p.Name, pricing.FormatXOF(float64(p.Xof)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callback.Data(QueryProduct, cast.ToString(p.ID))),
		))
	}

	msg := tgbotapi.NewMessage(c.ChatID(), "🛍 Catalogue StickerStreet")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_ = c.Send(msg)
}

func productArg(c *tgrouter.Ctx, n int) []string {
	return callback.Args(c.Update().CallbackQuery.Data, n)
}

// SizeButtons offers one add-to-cart button per size with its resolved price.
func SizeButtons(p structs.Product) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(p.Sizes))
	for _, size := range p.Sizes {
		prices := pricing.ResolvePrice(p, size)
		label := fmt.Sprintf("➕ %s · %s", size, pricing.FormatXOF(prices.Xof))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callback.Data(QueryAdd, cast.ToString(p.ID), size)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (cmd *Commands) ShowProduct(c *tgrouter.Ctx) {
	c.Answer("")
	args := productArg(c, 1)
	if len(args) == 0 {
		return
	}
	id, err := cast.ToInt64E(args[0])
	if err != nil {
		cmd.logger.Warn(c.Context, "bad product callback", zap.String("data", c.Update().CallbackQuery.Data))
		return
	}

	sess := middleware.Current(c.Context)
	p, ok := sess.Store.Product(id)
	if !ok {
		reply(c, "Produit introuvable")
		return
	}
	sess.Store.ShowProduct(p)

	text := fmt.Sprintf("%s %s\n\n%s\n\nTailles : %s", p.Emoji, p.Name, p.Desc, strings.Join(p.Sizes, ", "))
	msg := tgbotapi.NewMessage(c.ChatID(), text)
	if len(p.Sizes) > 0 {
		msg.ReplyMarkup = SizeButtons(p)
	}
	_ = c.Send(msg)
}

func (cmd *Commands) AddToCart(c *tgrouter.Ctx) {
	args := productArg(c, 2)
	if len(args) != 2 {
		c.Answer("")
		return
	}
	id, err := cast.ToInt64E(args[0])
	if err != nil {
		c.Answer("")
		return
	}

	store := middleware.Current(c.Context).Store
	p, ok := store.Product(id)
	if !ok || !p.HasSize(args[1]) {
		c.Answer("Produit introuvable")
		return
	}

	store.AddItem(c.Context, p, args[1], 1, nil)
	total, count := store.Totals()
	c.Answer(p.Name + " ajouté ✓")
	reply(c, fmt.Sprintf("🛒 Panier : %d article(s) · %s\n/order pour commander", count, pricing.FormatXOF(total)))
}
