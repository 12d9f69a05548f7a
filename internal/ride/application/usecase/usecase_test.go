package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ridematch/internal/ride/adapter/out/repo"
	"ridematch/internal/ride/application/ports/in"
	"ridematch/internal/ride/application/ports/out"
	"ridematch/internal/ride/domain"
	"ridematch/internal/shared/apperr"
	"ridematch/internal/shared/logger"
	"ridematch/internal/shared/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = user.Identity{ID: "r-alice", Username: "alice", Role: user.RoleRider}
	bob   = user.Identity{ID: "d-bob", Username: "bob", Role: user.RoleDriver}
	carol = user.Identity{ID: "d-carol", Username: "carol", Role: user.RoleDriver}
)

type notification struct {
	role     user.Role
	userID   string
	username string
	payload  any
}

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []notification
	fail  error
	reach int
}

func (n *recordingNotifier) BroadcastToRole(_ context.Context, role user.Role, payload any) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{role: role, payload: payload})
	return n.reach, n.fail
}

func (n *recordingNotifier) NotifyUser(_ context.Context, userID, username string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{userID: userID, username: username, payload: payload})
	return n.fail
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Status
	fail   error
}

func (p *recordingPublisher) PublishRideEvent(_ context.Context, ride *domain.Ride) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ride.Status)
	return p.fail
}

// staleRepo проигрывает CAS первые n раз
type staleRepo struct {
	out.RideRepository
	mu    sync.Mutex
	n     int
	calls int
}

func (r *staleRepo) UpdateStatus(ctx context.Context, ride *domain.Ride, expected domain.Status) error {
	r.mu.Lock()
	r.calls++
	lose := r.calls <= r.n
	r.mu.Unlock()
	if lose {
		return domain.ErrStaleRide
	}
	return r.RideRepository.UpdateStatus(ctx, ride, expected)
}

type fixture struct {
	repo      out.RideRepository
	notifier  *recordingNotifier
	publisher *recordingPublisher
	create    *CreateRideService
	list      *ListAvailableService
	update    *UpdateRideStatusService
}

func newFixture(t *testing.T, rideRepo out.RideRepository) *fixture {
	t.Helper()
	if rideRepo == nil {
		rideRepo = repo.NewRideMemoryRepository()
	}
	f := &fixture{
		repo:      rideRepo,
		notifier:  &recordingNotifier{reach: 2},
		publisher: &recordingPublisher{},
	}
	d := NewDispatcher(f.notifier, f.publisher, logger.Nop())
	f.create = NewCreateRideService(rideRepo, d, logger.Nop())
	f.list = NewListAvailableService(rideRepo)
	f.update = NewUpdateRideStatusService(rideRepo, d, logger.Nop())
	return f
}

func (f *fixture) newRide(t *testing.T) *domain.Ride {
	t.Helper()
	ride, err := f.create.Execute(context.Background(), in.CreateRideInput{Creator: alice, Pickup: "A", Dropoff: "B"})
	require.NoError(t, err)
	return ride
}

func (f *fixture) act(rideID string, action domain.Action, actor user.Identity) (*domain.Ride, error) {
	return f.update.Execute(context.Background(), in.UpdateRideStatusInput{RideID: rideID, Action: action, Actor: actor})
}

func TestCreateRideBroadcastsToDrivers(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	ride := f.newRide(t)
	assert.Equal(t, domain.StatusPending, ride.Status)
	assert.Equal(t, "alice", ride.RiderName)
	assert.NotEmpty(t, ride.ID)

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, user.RoleDriver, sent[0].role)
	assert.Equal(t, domain.NewRideEventFor(ride), sent[0].payload)
	assert.Equal(t, []domain.Status{domain.StatusPending}, f.publisher.events)
}

func TestCreateRideRejectsDriver(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	_, err := f.create.Execute(context.Background(), in.CreateRideInput{Creator: bob, Pickup: "A", Dropoff: "B"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Empty(t, f.notifier.all())

	rides, err := f.list.Execute(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rides)
}

func TestCreateRideSurvivesNotifierFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.notifier.fail = errors.New("hub gone")
	f.publisher.fail = errors.New("broker gone")

	ride := f.newRide(t)

	stored, err := f.repo.FindByID(context.Background(), ride.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestListAvailableOnlyPending(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	rides, err := f.list.Execute(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rides)
	assert.Empty(t, rides)

	first := f.newRide(t)
	second := f.newRide(t)
	_, err = f.act(first.ID, domain.ActionAccept, bob)
	require.NoError(t, err)

	rides, err = f.list.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, rides, 1)
	assert.Equal(t, second.ID, rides[0].ID)
}

func TestRideLifecycleScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ride := f.newRide(t)

	_, err := f.act(ride.ID, domain.ActionAccept, alice)
	assert.ErrorIs(t, err, domain.ErrOnlyDriversAccept)

	accepted, err := f.act(ride.ID, domain.ActionAccept, bob)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, accepted.Status)
	require.NotNil(t, accepted.DriverID)
	assert.Equal(t, bob.ID, *accepted.DriverID)

	_, err = f.act(ride.ID, domain.ActionAccept, carol)
	assert.ErrorIs(t, err, domain.ErrAlreadyAccepted)

	_, err = f.act(ride.ID, domain.ActionComplete, carol)
	assert.ErrorIs(t, err, domain.ErrNotAssignedDriver)

	completed, err := f.act(ride.ID, domain.ActionComplete, bob)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)

	_, err = f.act(ride.ID, domain.ActionCancel, alice)
	assert.ErrorIs(t, err, domain.ErrCancelCompleted)

	assert.Equal(t,
		[]domain.Status{domain.StatusPending, domain.StatusAccepted, domain.StatusCompleted},
		f.publisher.events)
}

func TestStatusChangeNotifiesRiderAndDriver(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ride := f.newRide(t)

	_, err := f.act(ride.ID, domain.ActionAccept, bob)
	require.NoError(t, err)
	cancelled, err := f.act(ride.ID, domain.ActionCancel, alice)
	require.NoError(t, err)
	assert.Nil(t, cancelled.DriverID)

	sent := f.notifier.all()
	// new_ride + (rider, driver) за accept + (rider, бывший driver) за cancel
	require.Len(t, sent, 5)
	assert.Equal(t, "alice", sent[1].username)
	assert.Equal(t, bob.ID, sent[2].userID)
	assert.Equal(t, "alice", sent[3].username)
	assert.Equal(t, bob.ID, sent[4].userID)
	assert.Equal(t, domain.StatusChangedEventFor(cancelled), sent[4].payload)
}

func TestUpdateUnknownRide(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	_, err := f.act("nope", domain.ActionAccept, bob)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConcurrentAcceptHasSingleWinner(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ride := f.newRide(t)

	drivers := []user.Identity{bob, carol}
	errs := make([]error, len(drivers))
	var wg sync.WaitGroup
	for i, d := range drivers {
		i, d := i, d
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.act(ride.ID, domain.ActionAccept, d)
		}()
	}
	wg.Wait()

	var ok, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrAlreadyAccepted):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, lost)

	stored, err := f.repo.FindByID(context.Background(), ride.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, stored.Status)
}

func TestUpdateRetriesAfterStaleWrite(t *testing.T) {
	t.Parallel()
	flaky := &staleRepo{RideRepository: repo.NewRideMemoryRepository(), n: 2}
	f := newFixture(t, flaky)
	ride := f.newRide(t)

	got, err := f.act(ride.ID, domain.ActionAccept, bob)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, got.Status)
	assert.Equal(t, 3, flaky.calls)
}

func TestUpdateGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()
	flaky := &staleRepo{RideRepository: repo.NewRideMemoryRepository(), n: maxCASAttempts}
	f := newFixture(t, flaky)
	ride := f.newRide(t)

	_, err := f.act(ride.ID, domain.ActionAccept, bob)
	assert.ErrorIs(t, err, domain.ErrStaleRide)
	assert.Equal(t, maxCASAttempts, flaky.calls)
}
