package repo

import (
	"context"
	"sort"
	"sync"

	"ridematch/internal/ride/domain"
)

// RideMemoryRepository — in-memory RideRepository для STORAGE_BACKEND=memory.
// Наружу отдаются только копии, поэтому читатель никогда не видит наполовину обновленную поездку.
type RideMemoryRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride
}

func NewRideMemoryRepository() *RideMemoryRepository {
	return &RideMemoryRepository{rides: make(map[string]*domain.Ride)}
}

func (r *RideMemoryRepository) Create(_ context.Context, ride *domain.Ride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rides[ride.ID] = ride.Clone()
	return nil
}

func (r *RideMemoryRepository) FindByID(_ context.Context, rideID string) (*domain.Ride, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ride, ok := r.rides[rideID]
	if !ok {
		return nil, domain.ErrRideNotFound
	}
	return ride.Clone(), nil
}

func (r *RideMemoryRepository) ListByStatus(_ context.Context, status domain.Status) ([]*domain.Ride, error) {
	r.mu.RLock()
	rides := make([]*domain.Ride, 0)
	for _, ride := range r.rides {
		if ride.Status == status {
			rides = append(rides, ride.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(rides, func(i, j int) bool {
		if rides[i].CreatedAt.Equal(rides[j].CreatedAt) {
			return rides[i].ID < rides[j].ID
		}
		return rides[i].CreatedAt.Before(rides[j].CreatedAt)
	})
	return rides, nil
}

func (r *RideMemoryRepository) UpdateStatus(_ context.Context, ride *domain.Ride, expected domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rides[ride.ID]
	if !ok {
		return domain.ErrRideNotFound
	}
	if stored.Status != expected {
		return domain.ErrStaleRide
	}

	next := stored.Clone()
	next.Status = ride.Status
	next.DriverID = nil
	if ride.DriverID != nil {
		id := *ride.DriverID
		next.DriverID = &id
	}
	next.UpdatedAt = ride.UpdatedAt
	r.rides[ride.ID] = next
	return nil
}
