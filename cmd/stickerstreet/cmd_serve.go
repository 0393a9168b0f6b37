package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"stickerstreet/apps/bot"
	"stickerstreet/apps/gateway"
	"stickerstreet/cmd/stickerstreet/router"
	"stickerstreet/internal"
	"stickerstreet/pkg"
)

var withoutBot bool

// stickerstreet serve: HTTP shell and Telegram bot.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Mini App shell and the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []fx.Option{
			pkg.Module,
			internal.Module,
			gateway.Module,
			router.Module,
		}
		if !withoutBot {
			opts = append(opts, bot.Module)
		}

		app := fx.New(opts...)
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&withoutBot, "no-bot", false, "serve HTTP only")
}
