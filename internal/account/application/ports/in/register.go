package in

import (
	"context"

	"ridematch/internal/shared/user"
)

// RegisterInput — входные данные регистрации
type RegisterInput struct {
	Username string
	Email    string
	Password string // plain text, будет захеширован
	Role     string // rider | driver
}

// RegisterUseCase — создание учетной записи
type RegisterUseCase interface {
	Execute(ctx context.Context, input RegisterInput) (*user.User, error)
}
