package usecase

import (
	"context"
	"fmt"
	"time"

	"ridematch/internal/ride/application/ports/in"
	"ridematch/internal/ride/application/ports/out"
	"ridematch/internal/ride/domain"
	"ridematch/internal/shared/logger"

	"github.com/google/uuid"
)

// CreateRideService реализует CreateRideUseCase
type CreateRideService struct {
	rideRepo   out.RideRepository
	dispatcher *Dispatcher
	log        *logger.Logger
	now        func() time.Time
}

// NewCreateRideService создает сервис создания поездки
func NewCreateRideService(rideRepo out.RideRepository, dispatcher *Dispatcher, log *logger.Logger) *CreateRideService {
	return &CreateRideService{
		rideRepo:   rideRepo,
		dispatcher: dispatcher,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Execute создает поездку в статусе pending и рассылает ее водителям.
// Ошибка рассылки не влияет на результат.
func (s *CreateRideService) Execute(ctx context.Context, input in.CreateRideInput) (*domain.Ride, error) {
	ride, err := domain.NewRide(uuid.NewString(), input.Creator, input.Pickup, input.Dropoff, input.Price, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		s.log.Error(logger.Entry{
			Action:  "create_ride_failed",
			Message: err.Error(),
			RideID:  ride.ID,
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"rider": input.Creator.Username,
			},
		})
		return nil, fmt.Errorf("create ride: %w", err)
	}

	s.log.Info(logger.Entry{
		Action:  "ride_created",
		Message: "ride requested",
		RideID:  ride.ID,
		Additional: map[string]any{
			"rider":   ride.RiderName,
			"pickup":  ride.Pickup,
			"dropoff": ride.Dropoff,
		},
	})

	s.dispatcher.OnRideCreated(ctx, ride)

	return ride, nil
}
