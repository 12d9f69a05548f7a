package in

import (
	"context"

	"ridematch/internal/ride/domain"
	"ridematch/internal/shared/user"
)

// UpdateRideStatusInput — запрошенный переход
type UpdateRideStatusInput struct {
	RideID string
	Action domain.Action
	Actor  user.Identity
}

// UpdateRideStatusUseCase — accept / complete / cancel
type UpdateRideStatusUseCase interface {
	Execute(ctx context.Context, input UpdateRideStatusInput) (*domain.Ride, error)
}
