// Package apperr — общая таксономия ошибок сервиса.
//
// Доменные пакеты объявляют свои sentinel-ошибки поверх этих видов:
//
//	var ErrRideNotFound = fmt.Errorf("%w: ride not found", apperr.ErrNotFound)
//
// а транспортный слой по виду выбирает HTTP статус.
package apperr

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidAction     = errors.New("invalid action")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation error")
)

var kinds = []error{
	ErrUnauthenticated,
	ErrNotFound,
	ErrForbidden,
	ErrInvalidTransition,
	ErrInvalidAction,
	ErrConflict,
	ErrValidation,
}

// Kind возвращает вид ошибки из таксономии или nil, если err не классифицирована.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Code — машиночитаемый код вида для тела ответа.
func Code(kind error) string {
	switch kind {
	case ErrUnauthenticated:
		return "UNAUTHENTICATED"
	case ErrNotFound:
		return "NOT_FOUND"
	case ErrForbidden:
		return "FORBIDDEN"
	case ErrInvalidTransition:
		return "INVALID_TRANSITION"
	case ErrInvalidAction:
		return "INVALID_ACTION"
	case ErrConflict:
		return "CONFLICT"
	case ErrValidation:
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL"
	}
}

// Message отрезает префикс вида: "forbidden: Only drivers can accept rides" -> "Only drivers can accept rides".
func Message(err error) string {
	msg := err.Error()
	kind := Kind(err)
	if kind == nil {
		return msg
	}
	prefix := kind.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return msg
}
