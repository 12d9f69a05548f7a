package domain

import (
	"fmt"

	"ridematch/internal/shared/apperr"
)

var (
	// ErrAccountExists username или email уже заняты
	ErrAccountExists = fmt.Errorf("%w: Username or Email already registered", apperr.ErrConflict)

	// ErrInvalidCredentials неверная пара username/password
	ErrInvalidCredentials = fmt.Errorf("%w: Invalid credentials", apperr.ErrUnauthenticated)

	ErrUsernameRequired = fmt.Errorf("%w: username is required", apperr.ErrValidation)
	ErrInvalidEmail     = fmt.Errorf("%w: invalid email format", apperr.ErrValidation)
	ErrInvalidRole      = fmt.Errorf("%w: role must be rider or driver", apperr.ErrValidation)
)

// Нарушения парольной политики. В ответ уходят все сразу.
const (
	PasswordTooShort  = "Password must be at least 8 characters"
	PasswordNoLetter  = "Password must contain at least one letter"
	PasswordNoNumber  = "Password must contain at least one number"
	PasswordNoSpecial = "Password must contain at least one special character"
)
