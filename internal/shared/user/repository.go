package user

import (
	"context"
	"fmt"

	"ridematch/internal/shared/apperr"
)

var (
	// ErrUserNotFound пользователь не найден
	ErrUserNotFound = fmt.Errorf("%w: user not found", apperr.ErrNotFound)

	// ErrUsernameTaken username уже занят
	ErrUsernameTaken = fmt.Errorf("%w: username already registered", apperr.ErrConflict)

	// ErrEmailTaken email уже занят
	ErrEmailTaken = fmt.Errorf("%w: email already registered", apperr.ErrConflict)
)

// Repository — хранилище пользователей
type Repository interface {
	// Create сохраняет нового пользователя.
	// Возвращает ErrUsernameTaken / ErrEmailTaken при нарушении уникальности.
	Create(ctx context.Context, u *User) error

	// FindByUsername возвращает ErrUserNotFound если не найден
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByEmail возвращает ErrUserNotFound если не найден
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID возвращает ErrUserNotFound если не найден
	FindByID(ctx context.Context, id string) (*User, error)
}
