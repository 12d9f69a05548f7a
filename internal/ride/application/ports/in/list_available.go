package in

import (
	"context"

	"ridematch/internal/ride/domain"
)

// ListAvailableUseCase — все поездки в статусе pending на момент вызова
type ListAvailableUseCase interface {
	Execute(ctx context.Context) ([]*domain.Ride, error)
}
