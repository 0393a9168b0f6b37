package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stickerstreet/pkg/config"
	"stickerstreet/pkg/logger"
	"stickerstreet/pkg/migration"
)

// stickerstreet migrate: create the tables of the postgres storage driver.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.NewConfig()
		log := logger.New(cfg.GetString("log.level"))

		fmt.Println("Running migrations…")
		return migration.Up(cmd.Context(), cfg, log)
	},
}
