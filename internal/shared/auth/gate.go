package auth

import (
	"context"
	"fmt"
	"strings"

	"ridematch/internal/shared/apperr"
	"ridematch/internal/shared/user"
)

const bearerPrefix = "Bearer "

var (
	ErrMissingCredential = fmt.Errorf("%w: missing credentials", apperr.ErrUnauthenticated)
	ErrBadCredential     = fmt.Errorf("%w: could not validate credentials", apperr.ErrUnauthenticated)
)

// UserLookup — то, что Gate нужно от хранилища пользователей
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*user.User, error)
}

// Gate превращает предъявленный токен в Identity
type Gate struct {
	jwt   *JWTService
	users UserLookup
}

func NewGate(jwt *JWTService, users UserLookup) *Gate {
	return &Gate{jwt: jwt, users: users}
}

// AuthenticateHeader — значение заголовка Authorization, обязателен префикс "Bearer ".
func (g *Gate) AuthenticateHeader(ctx context.Context, header string) (user.Identity, error) {
	if header == "" {
		return user.Identity{}, ErrMissingCredential
	}
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || strings.TrimSpace(token) == "" {
		return user.Identity{}, ErrBadCredential
	}
	return g.AuthenticateToken(ctx, token)
}

// AuthenticateToken — голый токен, например из query параметра при handshake.
// Любая ошибка проверки токена = Unauthenticated, отсутствие пользователя = NotFound.
func (g *Gate) AuthenticateToken(ctx context.Context, token string) (user.Identity, error) {
	if token == "" {
		return user.Identity{}, ErrMissingCredential
	}

	claims, err := g.jwt.ValidateToken(token, TokenAccess)
	if err != nil {
		return user.Identity{}, ErrBadCredential
	}

	u, err := g.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return user.Identity{}, err
	}
	return u.Identity(), nil
}
