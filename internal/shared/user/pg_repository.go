package user

import (
	"context"
	"errors"
	"fmt"

	"ridematch/internal/shared/db"
	"ridematch/internal/shared/logger"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, password_hash, role, created_at`

// PgRepository — Postgres реализация Repository
type PgRepository struct {
	db  db.DBTX
	log *logger.Logger
}

// NewPgRepository создает новый репозиторий пользователей
func NewPgRepository(conn db.DBTX, log *logger.Logger) *PgRepository {
	return &PgRepository{
		db:  conn,
		log: log,
	}
}

// Create вставляет пользователя, unique violation маппится в Conflict
func (r *PgRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt)
	if err != nil {
		if constraint, ok := db.IsUniqueViolation(err); ok {
			if constraint == "uq_user_email" {
				return ErrEmailTaken
			}
			return ErrUsernameTaken
		}
		r.log.Error(logger.Entry{
			Action:  "db_create_user_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"username": u.Username,
			},
		})
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PgRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PgRepository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var (
		u    User
		role string
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Role = Role(role)

	return &u, nil
}
