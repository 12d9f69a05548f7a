package out

import (
	"context"

	"ridematch/internal/shared/auth"
	"ridematch/internal/shared/user"
)

// UserRepository — часть user.Repository, нужная регистрации и логину
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

// TokenIssuer — выпуск и проверка токенов (*auth.JWTService)
type TokenIssuer interface {
	GeneratePair(username string) (auth.TokenPair, error)
	ValidateToken(token string, want auth.TokenType) (*auth.Claims, error)
}
