package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"ridematch/internal/account/application/ports/in"
	"ridematch/internal/account/application/ports/out"
	"ridematch/internal/account/domain"
	"ridematch/internal/shared/logger"
	"ridematch/internal/shared/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// RegisterService реализует RegisterUseCase
type RegisterService struct {
	userRepo out.UserRepository
	log      *logger.Logger
	cost     int
	now      func() time.Time
}

// NewRegisterService создает новый сервис регистрации
func NewRegisterService(userRepo out.UserRepository, log *logger.Logger) *RegisterService {
	return &RegisterService{
		userRepo: userRepo,
		log:      log,
		cost:     bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Execute создает нового пользователя
func (s *RegisterService) Execute(ctx context.Context, input in.RegisterInput) (*user.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	role := user.Role(input.Role)

	if username == "" {
		return nil, domain.ErrUsernameRequired
	}
	if !emailRegex.MatchString(email) {
		return nil, domain.ErrInvalidEmail
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	// уникальность username и email проверяется до хеширования
	if taken, err := s.taken(ctx, username, email); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrAccountExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		s.log.Error(logger.Entry{
			Action:  "hash_password_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: string(passwordHash),
		CreatedAt:    s.now(),
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrUsernameTaken) || errors.Is(err, user.ErrEmailTaken) {
			return nil, domain.ErrAccountExists
		}
		s.log.Error(logger.Entry{
			Action:  "create_user_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"username": username,
				"role":     string(role),
			},
		})
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:  "user_registered",
		Message: fmt.Sprintf("user %s registered", u.Username),
		Additional: map[string]any{
			"user_id": u.ID,
			"role":    string(u.Role),
		},
	})

	return u, nil
}

func (s *RegisterService) taken(ctx context.Context, username, email string) (bool, error) {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return true, nil
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return false, fmt.Errorf("find user by username: %w", err)
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return false, fmt.Errorf("find user by email: %w", err)
	}

	return false, nil
}
