package in

import (
	"context"

	"ridematch/internal/shared/auth"
)

type LoginInput struct {
	Username string
	Password string
}

// LoginUseCase — проверка пароля и выдача пары токенов
type LoginUseCase interface {
	Execute(ctx context.Context, input LoginInput) (auth.TokenPair, error)
}

// RefreshUseCase — обмен refresh токена на новую пару
type RefreshUseCase interface {
	Execute(ctx context.Context, refreshToken string) (auth.TokenPair, error)
}
