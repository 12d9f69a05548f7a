package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ridematch/internal/shared/config"
	"ridematch/internal/shared/logger"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	b, err := MigrationsFS.ReadFile("migrations/00001_init.sql")
	require.NoError(t, err)

	body := string(b)
	assert.True(t, strings.HasPrefix(body, "-- +goose Up"))
	assert.Contains(t, body, "uq_user_username_email")
	assert.Contains(t, body, "ck_ride_driver_assigned")
}

func TestMigrateRunsGooseOnEmbeddedDir(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(_ context.Context, _ *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, migrate(context.Background(), nil, logger.Nop()))
	assert.Equal(t, "migrations", gotDir)
}

func TestMigrateWrapsGooseError(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	boom := errors.New("boom")
	gooseUp = func(context.Context, *sql.DB, string) error { return boom }

	err := migrate(context.Background(), nil, logger.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_user_email"})
	name, ok := IsUniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "uq_user_email", name)

	_, ok = IsUniqueViolation(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)

	_, ok = IsUniqueViolation(errors.New("plain"))
	assert.False(t, ok)
}

func TestPoolConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Database
	cfg.MaxConns = 8
	cfg.MinConns = 3

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(3), pc.MinConns)
	assert.Equal(t, "ridematch", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, cfg.Host, pc.ConnConfig.Host)
	assert.Equal(t, uint16(cfg.Port), pc.ConnConfig.Port)
}

func TestPoolConfigIgnoresMinAboveMax(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Database
	cfg.MaxConns = 2
	cfg.MinConns = 5

	pc, err := poolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(2), pc.MaxConns)
	assert.Zero(t, pc.MinConns)
}
