package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	t.Parallel()

	errRide := fmt.Errorf("%w: ride not found", ErrNotFound)
	wrapped := fmt.Errorf("find ride: %w", errRide)

	assert.Equal(t, ErrNotFound, Kind(wrapped))
	assert.Equal(t, ErrConflict, Kind(fmt.Errorf("%w: username taken", ErrConflict)))
	assert.Nil(t, Kind(errors.New("boom")))
	assert.Nil(t, Kind(nil))
}

func TestCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "INVALID_TRANSITION", Code(ErrInvalidTransition))
	assert.Equal(t, "VALIDATION_ERROR", Code(ErrValidation))
	assert.Equal(t, "INTERNAL", Code(nil))
}

func TestMessage(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("update status: %w", fmt.Errorf("%w: Ride already accepted", ErrInvalidTransition))
	assert.Equal(t, "Ride already accepted", Message(err))
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
