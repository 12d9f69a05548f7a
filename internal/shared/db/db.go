package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridematch/internal/shared/config"
	"ridematch/internal/shared/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX — минимальный набор методов, общий для *pgxpool.Pool, pgx.Tx и pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	applicationName = "ridematch"
	pingTimeout     = 5 * time.Second
)

// poolConfig переводит DBConfig в настройки pgxpool
func poolConfig(cfg config.DBConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= pc.MaxConns {
		pc.MinConns = cfg.MinConns
	}
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.HealthCheckPeriod = time.Minute
	pc.ConnConfig.RuntimeParams["application_name"] = applicationName

	return pc, nil
}

// NewPool открывает пул и проверяет соединение ping'ом
func NewPool(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*pgxpool.Pool, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	log.Info(logger.Entry{
		Action:  "db_connected",
		Message: fmt.Sprintf("connected to %s:%d/%s", cfg.Host, cfg.Port, cfg.Database),
		Additional: map[string]any{
			"max_conns": pc.MaxConns,
			"min_conns": pc.MinConns,
		},
	})

	return pool, nil
}

// Close закрывает пул; nil допустим
func Close(pool *pgxpool.Pool, log *logger.Logger) {
	if pool == nil {
		return
	}
	pool.Close()
	log.Info(logger.Entry{Action: "db_closed", Message: "database pool closed"})
}

// IsUniqueViolation — 23505, нарушение UNIQUE. Возвращает имя constraint.
func IsUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}
