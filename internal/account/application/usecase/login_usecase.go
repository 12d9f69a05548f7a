package usecase

import (
	"context"
	"errors"
	"fmt"

	"ridematch/internal/account/application/ports/in"
	"ridematch/internal/account/application/ports/out"
	"ridematch/internal/account/domain"
	"ridematch/internal/shared/auth"
	"ridematch/internal/shared/logger"
	"ridematch/internal/shared/user"

	"golang.org/x/crypto/bcrypt"
)

// LoginService реализует LoginUseCase
type LoginService struct {
	userRepo out.UserRepository
	tokens   out.TokenIssuer
	log      *logger.Logger
}

func NewLoginService(userRepo out.UserRepository, tokens out.TokenIssuer, log *logger.Logger) *LoginService {
	return &LoginService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log,
	}
}

// Execute сверяет пароль и выдает access + refresh токены.
// Неизвестный пользователь и неверный пароль неразличимы для клиента.
func (s *LoginService) Execute(ctx context.Context, input in.LoginInput) (auth.TokenPair, error) {
	u, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenPair{}, domain.ErrInvalidCredentials
		}
		return auth.TokenPair{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		s.log.Warn(logger.Entry{
			Action:  "login_failed",
			Message: "password mismatch",
			Additional: map[string]any{
				"username": input.Username,
			},
		})
		return auth.TokenPair{}, domain.ErrInvalidCredentials
	}

	pair, err := s.tokens.GeneratePair(u.Username)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:  "user_logged_in",
		Message: u.Username,
		Additional: map[string]any{
			"user_id": u.ID,
		},
	})

	return pair, nil
}

// RefreshService реализует RefreshUseCase
type RefreshService struct {
	userRepo out.UserRepository
	tokens   out.TokenIssuer
	log      *logger.Logger
}

func NewRefreshService(userRepo out.UserRepository, tokens out.TokenIssuer, log *logger.Logger) *RefreshService {
	return &RefreshService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log,
	}
}

// Execute принимает только refresh токен живого пользователя
func (s *RefreshService) Execute(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	claims, err := s.tokens.ValidateToken(refreshToken, auth.TokenRefresh)
	if err != nil {
		s.log.Warn(logger.Entry{
			Action:  "refresh_rejected",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return auth.TokenPair{}, auth.ErrBadCredential
	}

	if _, err := s.userRepo.FindByUsername(ctx, claims.Subject); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenPair{}, auth.ErrBadCredential
		}
		return auth.TokenPair{}, fmt.Errorf("find user: %w", err)
	}

	pair, err := s.tokens.GeneratePair(claims.Subject)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, nil
}
