package out

import (
	"context"

	"ridematch/internal/ride/domain"
)

// RideRepository — хранилище поездок
type RideRepository interface {
	// Create сохраняет новую поездку
	Create(ctx context.Context, ride *domain.Ride) error

	// FindByID возвращает копию поездки или domain.ErrRideNotFound
	FindByID(ctx context.Context, rideID string) (*domain.Ride, error)

	// ListByStatus возвращает снимок поездок с указанным статусом, старые первыми
	ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Ride, error)

	// UpdateStatus записывает status/driver_id/updated_at только если текущий статус
	// в хранилище равен expected. Иначе domain.ErrStaleRide.
	UpdateStatus(ctx context.Context, ride *domain.Ride, expected domain.Status) error
}
