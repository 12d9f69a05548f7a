package domain

import (
	"testing"

	"ridematch/internal/shared/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		password string
		problems []string
	}{
		{"abcdef1!", nil},
		{"Xy9{long-enough", nil},
		{"abc", []string{PasswordTooShort, PasswordNoNumber, PasswordNoSpecial}},
		{"abcdefgh", []string{PasswordNoNumber, PasswordNoSpecial}},
		{"12345678!", []string{PasswordNoLetter}},
		{"abcdefg1", []string{PasswordNoSpecial}},
		{"", []string{PasswordTooShort, PasswordNoLetter, PasswordNoNumber, PasswordNoSpecial}},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if tt.problems == nil {
			assert.NoError(t, err, tt.password)
			continue
		}
		require.ErrorIs(t, err, apperr.ErrValidation, tt.password)
		for _, p := range tt.problems {
			assert.Contains(t, err.Error(), p, tt.password)
		}
	}
}
