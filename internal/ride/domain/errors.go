package domain

import (
	"errors"
	"fmt"

	"ridematch/internal/shared/apperr"
)

var (
	// ErrRideNotFound возвращается когда поездка не найдена
	ErrRideNotFound = fmt.Errorf("%w: ride not found", apperr.ErrNotFound)

	// ErrStaleRide — статус поменялся между чтением и записью (compare-and-set не прошел)
	ErrStaleRide = errors.New("ride was modified concurrently")

	ErrInvalidAction = fmt.Errorf("%w: Invalid action", apperr.ErrInvalidAction)

	// создание
	ErrOnlyRidersCreate = fmt.Errorf("%w: Only riders can create rides", apperr.ErrForbidden)
	ErrEmptyLocation    = fmt.Errorf("%w: pickup_location and dropoff_location are required", apperr.ErrValidation)
	ErrNegativePrice    = fmt.Errorf("%w: price must not be negative", apperr.ErrValidation)

	// accept
	ErrOnlyDriversAccept = fmt.Errorf("%w: Only drivers can accept rides", apperr.ErrForbidden)
	ErrAcceptCancelled   = fmt.Errorf("%w: Cannot accept a ride that is cancelled", apperr.ErrInvalidTransition)
	ErrAcceptCompleted   = fmt.Errorf("%w: Cannot accept a ride that is completed", apperr.ErrInvalidTransition)
	ErrAlreadyAccepted   = fmt.Errorf("%w: Ride already accepted", apperr.ErrInvalidTransition)

	// complete
	ErrOnlyDriversComplete = fmt.Errorf("%w: Only drivers can complete rides", apperr.ErrForbidden)
	ErrNotAssignedDriver   = fmt.Errorf("%w: Only the assigned driver can complete this ride", apperr.ErrForbidden)
	ErrCompleteCancelled   = fmt.Errorf("%w: Ride has been cancelled", apperr.ErrInvalidTransition)
	ErrAlreadyCompleted    = fmt.Errorf("%w: Ride is already completed", apperr.ErrInvalidTransition)
	ErrNotAccepted         = fmt.Errorf("%w: Ride must be accepted before completing", apperr.ErrInvalidTransition)

	// cancel
	ErrCancelCompleted  = fmt.Errorf("%w: Ride is already completed, cannot cancel", apperr.ErrInvalidTransition)
	ErrAlreadyCancelled = fmt.Errorf("%w: Ride is already cancelled", apperr.ErrInvalidTransition)
	ErrNotParticipant   = fmt.Errorf("%w: You are not authorized to cancel this ride", apperr.ErrForbidden)
)
