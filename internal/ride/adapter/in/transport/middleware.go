package transport

import (
	"context"
	"net/http"

	"ridematch/internal/shared/httpx"
	"ridematch/internal/shared/logger"
	"ridematch/internal/shared/user"

	"github.com/go-chi/chi/v5/middleware"
)

type contextKey string

// ContextKeyIdentity — ключ контекста, под которым лежит user.Identity
const ContextKeyIdentity contextKey = "identity"

// Authenticator — проверка заголовка Authorization (*auth.Gate)
type Authenticator interface {
	AuthenticateHeader(ctx context.Context, header string) (user.Identity, error)
}

// WithIdentity кладет пользователя в контекст
func WithIdentity(ctx context.Context, id user.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

// IdentityFrom достает пользователя из контекста
func IdentityFrom(ctx context.Context) (user.Identity, bool) {
	id, ok := ctx.Value(ContextKeyIdentity).(user.Identity)
	return id, ok
}

// JWTMiddleware создает middleware для валидации Bearer токенов
func JWTMiddleware(gate Authenticator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := gate.AuthenticateHeader(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				log.Warn(logger.Entry{
					Action:    "jwt_validation_failed",
					Message:   err.Error(),
					RequestID: middleware.GetReqID(r.Context()),
					Error:     &logger.ErrObj{Msg: err.Error()},
				})
				httpx.RespondError(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
