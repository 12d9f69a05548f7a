package usecase

import (
	"context"
	"fmt"

	"ridematch/internal/ride/application/ports/out"
	"ridematch/internal/ride/domain"
)

// ListAvailableService реализует ListAvailableUseCase
type ListAvailableService struct {
	rideRepo out.RideRepository
}

func NewListAvailableService(rideRepo out.RideRepository) *ListAvailableService {
	return &ListAvailableService{rideRepo: rideRepo}
}

func (s *ListAvailableService) Execute(ctx context.Context) ([]*domain.Ride, error) {
	rides, err := s.rideRepo.ListByStatus(ctx, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending rides: %w", err)
	}
	if rides == nil {
		rides = []*domain.Ride{}
	}
	return rides, nil
}
