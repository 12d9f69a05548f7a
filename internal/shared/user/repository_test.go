package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"ridematch/internal/shared/apperr"
	"ridematch/internal/shared/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(id, name, email string, role Role) *User {
	return &User{
		ID:           id,
		Username:     name,
		Email:        email,
		Role:         role,
		PasswordHash: "hash",
		CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPgRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRepository(mock, logger.Nop())
	u := newUser("u-1", "alice", "alice@example.com", RoleRider)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Username, u.Email, u.PasswordHash, "rider", u.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepositoryCreateMapsUniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{name: "email", constraint: "uq_user_email", want: ErrEmailTaken},
		{name: "username", constraint: "uq_user_username", want: ErrUsernameTaken},
		{name: "compound", constraint: "uq_user_username_email", want: ErrUsernameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectExec("INSERT INTO users").
				WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			err = NewPgRepository(mock, logger.Nop()).Create(context.Background(), newUser("u-1", "bob", "b@x.io", RoleDriver))
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, apperr.ErrConflict)
		})
	}
}

func TestPgRepositoryCreateOtherError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err = NewPgRepository(mock, logger.Nop()).Create(context.Background(), newUser("u-1", "bob", "b@x.io", RoleDriver))
	require.Error(t, err)
	assert.Nil(t, apperr.Kind(err))
}

func TestPgRepositoryFindByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "created_at"}).
		AddRow("u-1", "alice", "alice@example.com", "hash", "rider", created)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username = \\$1").WithArgs("alice").WillReturnRows(rows)

	u, err := NewPgRepository(mock, logger.Nop()).FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, RoleRider, u.Role)
	assert.Equal(t, created, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepositoryFindByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err = NewPgRepository(mock, logger.Nop()).FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMemoryRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, repo.Create(ctx, newUser("u-1", "alice", "alice@example.com", RoleRider)))
	require.ErrorIs(t, repo.Create(ctx, newUser("u-2", "alice", "other@example.com", RoleRider)), ErrUsernameTaken)
	require.ErrorIs(t, repo.Create(ctx, newUser("u-3", "carol", "alice@example.com", RoleDriver)), ErrEmailTaken)

	got, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	got.Username = "mutated"
	again, err := repo.FindByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
