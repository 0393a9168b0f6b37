package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"stickerstreet/pkg/db"
	"stickerstreet/pkg/logger"
)

const postgresChannel = "kv_changed"

type postgres struct {
	db       db.Querier
	logger   logger.Logger
	watchers *watchers
}

// NewPostgres stores entries in kv_entries and fans changes out through
// LISTEN/NOTIFY.
func NewPostgres(conn db.Querier, log logger.Logger) Store {
	return &postgres{db: conn, logger: log, watchers: newWatchers()}
}

func (p *postgres) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := p.db.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", wrapPgErr("get", key, err)
	}
	return value, nil
}

func (p *postgres) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()`

	if _, err := p.db.Exec(ctx, query, key, value); err != nil {
		return wrapPgErr("set", key, err)
	}
	p.notify(ctx, key)
	return nil
}

func (p *postgres) Delete(ctx context.Context, key string) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return wrapPgErr("delete", key, err)
	}
	p.notify(ctx, key)
	return nil
}

func (p *postgres) notify(ctx context.Context, key string) {
	if _, err := p.db.Exec(ctx, `SELECT pg_notify($1, $2)`, postgresChannel, key); err != nil {
		p.logger.Warn(ctx, "kv: notify failed", zap.String("key", key), zap.Error(err))
	}
}

// Watch shares one LISTEN connection per key between all its watchers.
func (p *postgres) Watch(ctx context.Context, key string, fn WatchFunc) (func(), error) {
	return p.watchers.add(ctx, key, fn, func() (func(), error) {
		return p.listen(key)
	})
}

func (p *postgres) listen(key string) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())

	payloads, err := p.db.Listen(ctx, postgresChannel)
	if err != nil {
		cancel()
		return nil, err
	}

	go func() {
		for changed := range payloads {
			if changed == key {
				p.watchers.refresh(ctx, key, p.Get, p.logger)
			}
		}
	}()

	return cancel, nil
}

func (p *postgres) Close() error {
	p.watchers.close()
	p.db.Close()
	return nil
}

func wrapPgErr(op, key string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("kv: %s %s: table missing, run the migrate command: %w", op, key, err)
	}
	return fmt.Errorf("kv: %s %s: %w", op, key, err)
}
