package clients

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/apps/bot/middleware"
	"stickerstreet/pkg/config"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/tgrouter"
)

var Module = fx.Provide(New)

const (
	StateName    = "register_name"
	StatePhone   = "register_phone"
	StateAddress = "register_address"
)

const (
	textWelcome   = "Bienvenue chez StickerStreet 👋\nStickers, posters et designs sur mesure, livrés chez toi."
	textOpenShop  = "🛍 Ouvrir la boutique"
	textAskName   = "Comment tu t'appelles ?"
	textAskPhone  = "Ton numéro de téléphone ?"
	textAskAddr   = "Ton adresse de livraison ?"
	textShareTel  = "📱 Partager mon numéro"
	textSaved     = "Profil enregistré ✓"
	textSupport   = "Écris ton message ici, l'équipe StickerStreet te répond au plus vite."
	textSent      = "Message envoyé au support ✓"
	textRetry     = "Une erreur est survenue, réessaie plus tard"
	textEmptyText = "Envoie un message texte"
)

type Params struct {
	fx.In
	Logger logger.Logger
	Config config.IConfig
}

type Commands struct {
	logger    logger.Logger
	webAppURL string
}

func New(p Params) Commands {
	return Commands{
		logger:    p.Logger,
		webAppURL: strings.TrimSpace(p.Config.GetString("bot.webapp_url")),
	}
}

func reply(c *tgrouter.Ctx, text string) {
	_ = c.Send(tgbotapi.NewMessage(c.ChatID(), text))
}

func (cmd *Commands) Start(c *tgrouter.Ctx) {
	cmd.logger.Info(c.Context, "start command", zap.Int64("user_tgid", c.UserID()))
	_ = c.ClearState()

	msg := tgbotapi.NewMessage(c.ChatID(), textWelcome)
	if cmd.webAppURL != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(textOpenShop, cmd.webAppURL)),
		)
	}
	_ = c.Send(msg)
}

func (cmd *Commands) Register(c *tgrouter.Ctx) {
	if err := c.UpdateState(StateName, nil); err != nil {
		cmd.logger.Error(c.Context, "failed to update state", zap.Error(err))
		reply(c, textRetry)
		return
	}
	reply(c, textAskName)
}

func (cmd *Commands) RegisterName(c *tgrouter.Ctx) {
	name := strings.TrimSpace(c.Update().Message.Text)
	if name == "" {
		reply(c, textAskName)
		return
	}

	if err := c.UpdateState(StatePhone, map[string]string{"name": name}); err != nil {
		cmd.logger.Error(c.Context, "failed to update state", zap.Error(err))
		reply(c, textRetry)
		return
	}

	msg := tgbotapi.NewMessage(c.ChatID(), textAskPhone)
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(textShareTel)),
	)
	_ = c.Send(msg)
}

func (cmd *Commands) RegisterPhone(c *tgrouter.Ctx) {
	m := c.Update().Message
	phone := strings.TrimSpace(m.Text)
	if m.Contact != nil {
		phone = m.Contact.PhoneNumber
	}
	if phone == "" {
		reply(c, textAskPhone)
		return
	}

	_, data, err := c.GetState()
	if err != nil {
		cmd.logger.Error(c.Context, "failed to get state", zap.Error(err))
		reply(c, textRetry)
		return
	}
	data["phone"] = phone
	if err = c.UpdateState(StateAddress, data); err != nil {
		cmd.logger.Error(c.Context, "failed to update state", zap.Error(err))
		reply(c, textRetry)
		return
	}

	msg := tgbotapi.NewMessage(c.ChatID(), textAskAddr)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_ = c.Send(msg)
}

func (cmd *Commands) RegisterAddress(c *tgrouter.Ctx) {
	address := strings.TrimSpace(c.Update().Message.Text)
	if address == "" {
		reply(c, textAskAddr)
		return
	}

	_, data, err := c.GetState()
	if err != nil {
		cmd.logger.Error(c.Context, "failed to get state", zap.Error(err))
		reply(c, textRetry)
		return
	}

	sess := middleware.Current(c.Context)
	sess.Store.UpdateContact(c.Context, data["name"], data["phone"], address)
	_ = c.ClearState()

	reply(c, textSaved)
}

func (cmd *Commands) Support(c *tgrouter.Ctx) {
	reply(c, textSupport)
}

// Chat forwards free text to the support conversation of the session.
func (cmd *Commands) Chat(c *tgrouter.Ctx) {
	text := strings.TrimSpace(c.Update().Message.Text)
	if text == "" {
		reply(c, textEmptyText)
		return
	}

	sess := middleware.Current(c.Context)
	if err := sess.Store.SendChatMessage(c.Context, text); err != nil {
		cmd.logger.Warn(c.Context, "failed to send chat message", zap.Error(err))
		reply(c, textRetry)
		return
	}
	reply(c, textSent)
}
