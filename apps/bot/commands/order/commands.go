package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/apps/bot/middleware"
	"stickerstreet/internal/catalog"
	"stickerstreet/internal/payment"
	"stickerstreet/internal/pricing"
	"stickerstreet/internal/structs"
	"stickerstreet/pkg/apiclient"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/tgrouter"
	"stickerstreet/pkg/tgrouter/callback"
)

var Module = fx.Provide(New)

const (
	QueryPay    = "pay"
	QueryCancel = "cancel"
)

type Params struct {
	fx.In
	Logger  logger.Logger
	Payment *payment.Service
}

type Commands struct {
	logger  logger.Logger
	payment *payment.Service
}

func New(p Params) Commands {
	return Commands{
		logger:  p.Logger,
		payment: p.Payment,
	}
}

func reply(c *tgrouter.Ctx, text string) {
	_ = c.Send(tgbotapi.NewMessage(c.ChatID(), text))
}

// qrTransfer stands for a TON transfer made by scanning the QR code sent
// with the summary; nothing is signed from the bot.
type qrTransfer struct{}

func (qrTransfer) Address() string { return "qr" }

func (qrTransfer) Settled() bool { return true }

func (qrTransfer) SendTransaction(_ context.Context, _ structs.TonTransaction) error { return nil }

// Summary renders the cart lines and total.
func Summary(items []structs.CartItem) string {
	var b strings.Builder
	b.WriteString("🧾 Ta commande\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "%s %s (%s) × %d · %s\n", it.Emoji, it.Name, it.Sz, it.Qty, pricing.FormatXOF(it.Xof*float64(it.Qty)))
	}
	total, count := pricing.Totals(items)
	fmt.Fprintf(&b, "\nTotal : %s pour %d article(s)", pricing.FormatXOF(total), count)
	return b.String()
}

func (cmd *Commands) Order(c *tgrouter.Ctx) {
	store := middleware.Current(c.Context).Store
	cart := store.Cart()
	if len(cart) == 0 {
		reply(c, "Ton panier est vide. /catalog pour découvrir nos stickers")
		return
	}

	buttons := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("✅ Confirmer (Mobile Money)", callback.Data(QueryPay, string(structs.PaymentMomo))),
	}

	if merchant := cmd.payment.Merchant(); merchant != "" {
		total, _ := store.Totals()
		if rate, err := cmd.payment.TonQuote(c.Context, total); err == nil {
			cmd.sendTonQR(c, merchant, rate)
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData("💎 J'ai payé en TON", callback.Data(QueryPay, string(structs.PaymentTon))))
		} else {
			cmd.logger.Warn(c.Context, "ton quote unavailable", zap.Error(err))
		}
	}

	msg := tgbotapi.NewMessage(c.ChatID(), Summary(cart))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(buttons...),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Annuler", QueryCancel)),
	)
	_ = c.Send(msg)
}

func (cmd *Commands) sendTonQR(c *tgrouter.Ctx, merchant string, rate structs.TonRate) {
	png, err := payment.TransferQR(merchant, rate.AmountTon)
	if err != nil {
		cmd.logger.Warn(c.Context, "failed to render ton qr", zap.Error(err))
		return
	}

	photo := tgbotapi.NewPhoto(c.ChatID(), tgbotapi.FileBytes{Name: "ton.png", Bytes: png})
	photo.Caption = fmt.Sprintf("💎 %.4f TON à envoyer à %s", rate.AmountTon, merchant)
	_ = c.Send(photo)
}

// Pay places the order with the method carried by the callback.
func (cmd *Commands) Pay(c *tgrouter.Ctx) {
	args := callback.Args(c.Update().CallbackQuery.Data, 1)
	if len(args) == 0 {
		c.Answer("")
		return
	}
	method := structs.PaymentMethod(args[0])

	var bridges payment.Bridges
	if method == structs.PaymentTon {
		bridges.Wallet = qrTransfer{}
	}

	store := middleware.Current(c.Context).Store
	order, err := cmd.payment.Pay(c.Context, method, store, bridges)
	if err != nil {
		c.Answer("")
		cmd.logger.Warn(c.Context, "bot checkout failed", zap.Error(err))
		reply(c, FailureText(err))
		return
	}

	c.Answer("Commande envoyée ✓")
	icon, label := catalog.StatusLabel(order.Status)
	reply(c, fmt.Sprintf("Commande %s enregistrée ✓\n%s %s", order.ID, icon, label))
}

// FailureText explains a failed checkout to the user.
func FailureText(err error) string {
	switch {
	case errors.Is(err, structs.ErrEmptyCart):
		return "Ton panier est vide"
	case errors.Is(err, structs.ErrRateUnavailable):
		return "Taux TON indisponible, réessaie plus tard"
	case errors.Is(err, structs.ErrMerchantMissing):
		return "Paiement TON indisponible"
	case errors.Is(err, structs.ErrUnknownMethod):
		return "Mode de paiement inconnu"
	}
	var reqErr *apiclient.RequestError
	if errors.As(err, &reqErr) && strings.TrimSpace(reqErr.Message) != "" {
		return "Erreur : " + reqErr.Message
	}
	return "Erreur : réessaie ou contacte le support"
}

func (cmd *Commands) Cancel(c *tgrouter.Ctx) {
	c.Answer("")
	reply(c, "Commande annulée, ton panier est conservé")
}

func (cmd *Commands) Orders(c *tgrouter.Ctx) {
	store := middleware.Current(c.Context).Store
	store.LoadOrders(c.Context)
	orders := store.Orders()
	if len(orders) == 0 {
		reply(c, "Aucune commande pour le moment")
		return
	}

	var b strings.Builder
	b.WriteString("📦 Mes commandes\n")
	for _, o := range orders {
		icon, label := catalog.StatusLabel(o.Status)
		fmt.Fprintf(&b, "\n%s · %s %s · %s", o.ID, icon, label, pricing.FormatXOF(o.TotalXof))
	}
	reply(c, b.String())
}
