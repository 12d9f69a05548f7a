package in

import (
	"context"

	"ridematch/internal/ride/domain"
	"ridematch/internal/shared/user"
)

// CreateRideInput — входные данные для создания поездки
type CreateRideInput struct {
	Creator user.Identity
	Pickup  string
	Dropoff string
	Price   *float64
}

// CreateRideUseCase — создание поездки + рассылка водителям
type CreateRideUseCase interface {
	Execute(ctx context.Context, input CreateRideInput) (*domain.Ride, error)
}
