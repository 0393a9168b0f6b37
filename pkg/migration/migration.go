package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"stickerstreet/pkg/config"
	"stickerstreet/pkg/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Up applies the schema of the postgres storage driver.
func Up(ctx context.Context, cfg config.IConfig, log logger.Logger) error {
	url := cfg.GetString("database.migration")
	if url == "" {
		return errors.New("database.migration is not set")
	}

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		log.Error(ctx, "err from migrate.NewWithSourceInstance", zap.Error(err))
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Error(ctx, "err from up migration", zap.Error(err))
		return err
	}

	log.Info(ctx, "migrations applied")
	return nil
}
