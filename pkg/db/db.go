package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"stickerstreet/pkg/config"
	"stickerstreet/pkg/logger"
)

type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...interface{}) pgx.Row
	// Listen delivers NOTIFY payloads of channel until ctx ends.
	Listen(ctx context.Context, channel string) (<-chan string, error)
	Close()
}

type dbConn struct {
	dbPool *pgxpool.Pool
	logger logger.Logger
}

func New(ctx context.Context, cfg config.IConfig, log logger.Logger) (Querier, error) {
	dsn := cfg.GetString("database.dsn")

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Error(ctx, "Err on pgxpool.New", zap.Error(err))
		return nil, err
	}

	if err = pool.Ping(ctx); err != nil {
		log.Error(ctx, "Err on db.Ping", zap.Error(err))
		pool.Close()
		return nil, err
	}

	log.Info(ctx, "DB: Connected successfully")

	return &dbConn{dbPool: pool, logger: log}, nil
}

func (db *dbConn) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	db.logger.Debug(ctx, "DB: Exec sql", zap.String("sql", sql))
	return db.dbPool.Exec(ctx, sql, args...)
}

func (db *dbConn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	db.logger.Debug(ctx, "DB: QueryRow sql", zap.String("sql", sql))
	return db.dbPool.QueryRow(ctx, sql, args...)
}

func (db *dbConn) Listen(ctx context.Context, channel string) (<-chan string, error) {
	conn, err := db.dbPool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen conn: %w", err)
	}

	if _, err = conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer func() {
			// the connection still listens; drop it instead of returning it to the pool
			_ = conn.Conn().Close(context.Background())
			conn.Release()
		}()

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					db.logger.Warn(ctx, "DB: listen stopped", zap.String("channel", channel), zap.Error(err))
				}
				return
			}
			select {
			case out <- n.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (db *dbConn) Close() {
	db.dbPool.Close()
}
