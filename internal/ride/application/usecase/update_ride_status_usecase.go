package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridematch/internal/ride/application/ports/in"
	"ridematch/internal/ride/application/ports/out"
	"ridematch/internal/ride/domain"
	"ridematch/internal/shared/logger"
)

// maxCASAttempts — сколько раз перечитываем поездку, если ее статус поменяли параллельно
const maxCASAttempts = 4

// UpdateRideStatusService реализует UpdateRideStatusUseCase
type UpdateRideStatusService struct {
	rideRepo   out.RideRepository
	dispatcher *Dispatcher
	log        *logger.Logger
	now        func() time.Time
}

func NewUpdateRideStatusService(rideRepo out.RideRepository, dispatcher *Dispatcher, log *logger.Logger) *UpdateRideStatusService {
	return &UpdateRideStatusService{
		rideRepo:   rideRepo,
		dispatcher: dispatcher,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Execute: прочитать → проверить переход → записать с compare-and-set по статусу.
// Если запись проиграла гонку, правила проверяются заново на свежем состоянии,
// так второй параллельный accept получает "Ride already accepted".
func (s *UpdateRideStatusService) Execute(ctx context.Context, input in.UpdateRideStatusInput) (*domain.Ride, error) {
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		current, err := s.rideRepo.FindByID(ctx, input.RideID)
		if err != nil {
			return nil, fmt.Errorf("find ride: %w", err)
		}

		next, err := current.Transition(input.Action, input.Actor, s.now())
		if err != nil {
			s.log.Info(logger.Entry{
				Action:  "ride_transition_rejected",
				Message: err.Error(),
				RideID:  input.RideID,
				Additional: map[string]any{
					"action": string(input.Action),
					"actor":  input.Actor.Username,
					"status": string(current.Status),
				},
			})
			return nil, err
		}

		err = s.rideRepo.UpdateStatus(ctx, next, current.Status)
		if errors.Is(err, domain.ErrStaleRide) {
			s.log.Debug(logger.Entry{
				Action:  "ride_cas_conflict",
				Message: "status changed concurrently, retrying",
				RideID:  input.RideID,
				Additional: map[string]any{
					"attempt": attempt,
				},
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update ride status: %w", err)
		}

		s.log.Info(logger.Entry{
			Action:  "ride_status_updated",
			Message: fmt.Sprintf("%s -> %s", current.Status, next.Status),
			RideID:  next.ID,
			Additional: map[string]any{
				"actor": input.Actor.Username,
			},
		})

		s.dispatcher.OnStatusChanged(ctx, current, next)
		return next, nil
	}

	return nil, fmt.Errorf("update ride status: %w", domain.ErrStaleRide)
}
