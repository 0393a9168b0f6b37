package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"

	"stickerstreet/apps/bot/commands/clients"
	"stickerstreet/apps/bot/commands/order"
	"stickerstreet/apps/bot/commands/product"
	"stickerstreet/apps/bot/middleware"
	"stickerstreet/pkg/config"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/tgrouter"
)

var Module = fx.Options(
	clients.Module,
	product.Module,
	order.Module,

	middleware.Module,

	fx.Invoke(NewBot),
)

type Params struct {
	fx.In
	fx.Lifecycle

	Logger     logger.Logger
	Config     config.IConfig
	Factory    tgrouter.Factory
	Middleware middleware.Middleware

	ClientsCmd clients.Commands
	ProductCmd product.Commands
	OrderCmd   order.Commands
}

func NewBot(p Params) error {
	token := p.Config.GetString("bot.token")
	if token == "" {
		p.Logger.Warn(context.Background(), "telegram bot token is not set, bot disabled")
		return nil
	}
	tb, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("failed to initialize bot: %w", err)
	}
	registerClientCommands(tb)

	r := p.Factory(tb, tgrouter.Workers(p.Config.GetInt("bot.workers")))
	Routes(r, p)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go r.ListenUpdate(context.Background())
			p.Logger.Info(ctx, "bot started!")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := r.Shutdown(ctx)
			p.Logger.Info(ctx, "bot stopped!")
			return err
		},
	})

	return nil
}

// Routes registers the bot commands on r. Commands and callbacks come first
// so they always interrupt a conversation.
func Routes(r *tgrouter.Router, p Params) {
	bot := r.Group()
	bot.Use(p.Middleware.AccountMw)

	tgrouter.On(bot, tgrouter.Cmd("start"), p.ClientsCmd.Start)
	tgrouter.On(bot, tgrouter.Cmd("catalog"), p.ProductCmd.Catalog)
	tgrouter.On(bot, tgrouter.Cmd("order"), p.OrderCmd.Order)
	tgrouter.On(bot, tgrouter.Cmd("orders"), p.OrderCmd.Orders)
	tgrouter.On(bot, tgrouter.Cmd("register"), p.ClientsCmd.Register)
	tgrouter.On(bot, tgrouter.Cmd("support"), p.ClientsCmd.Support)

	tgrouter.On(bot, tgrouter.Callback(product.QueryProduct), p.ProductCmd.ShowProduct)
	tgrouter.On(bot, tgrouter.Callback(product.QueryAdd), p.ProductCmd.AddToCart)
	tgrouter.On(bot, tgrouter.Callback(order.QueryPay), p.OrderCmd.Pay)
	tgrouter.On(bot, tgrouter.Callback(order.QueryCancel), p.OrderCmd.Cancel)

	tgrouter.On(bot, tgrouter.State(clients.StateName), p.ClientsCmd.RegisterName)
	tgrouter.On(bot, tgrouter.State(clients.StatePhone), p.ClientsCmd.RegisterPhone)
	tgrouter.On(bot, tgrouter.State(clients.StateAddress), p.ClientsCmd.RegisterAddress)

	tgrouter.On(bot, tgrouter.Text(), p.ClientsCmd.Chat)
}

func registerClientCommands(tb *tgbotapi.BotAPI) {
	cfg := tgbotapi.NewSetMyCommands([]tgbotapi.BotCommand{
		{Command: "start", Description: "Accueil et boutique"},
		{Command: "catalog", Description: "Voir le catalogue"},
		{Command: "order", Description: "Passer commande"},
		{Command: "orders", Description: "Mes commandes"},
		{Command: "register", Description: "Mes coordonnées"},
		{Command: "support", Description: "Contacter le support"},
	}...)

	_, _ = tb.Request(cfg)
}
