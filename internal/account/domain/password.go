package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"ridematch/internal/shared/apperr"
)

const (
	minPasswordLen  = 8
	specialPassword = `!@#$%^&*(),.?":{}|<>`
)

// ValidatePassword возвращает ErrValidation со списком всех нарушенных правил
func ValidatePassword(password string) error {
	var problems []string

	if utf8.RuneCountInString(password) < minPasswordLen {
		problems = append(problems, PasswordTooShort)
	}
	if !strings.ContainsFunc(password, isASCIILetter) {
		problems = append(problems, PasswordNoLetter)
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		problems = append(problems, PasswordNoNumber)
	}
	if !strings.ContainsAny(password, specialPassword) {
		problems = append(problems, PasswordNoSpecial)
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", apperr.ErrValidation, strings.Join(problems, "; "))
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
