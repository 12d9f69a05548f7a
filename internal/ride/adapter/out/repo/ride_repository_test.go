package repo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ridematch/internal/ride/domain"
	"ridematch/internal/shared/logger"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func pendingRide(id string, created time.Time) *domain.Ride {
	return &domain.Ride{
		ID:        id,
		RiderName: "alice",
		Pickup:    "A",
		Dropoff:   "B",
		Price:     ptr(10.0),
		Status:    domain.StatusPending,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func rideColumnsList() []string {
	return []string{"id", "rider_name", "driver_id", "pickup_location", "dropoff_location", "price", "status", "created_at", "updated_at"}
}

func TestPgCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRidePgRepository(mock, logger.Nop())
	ride := pendingRide("ride-1", t0)

	mock.ExpectExec("INSERT INTO rides").
		WithArgs(ride.ID, ride.RiderName, ride.DriverID, ride.Pickup, ride.Dropoff, ride.Price, "pending", ride.CreatedAt, ride.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), ride))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgFindByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRidePgRepository(mock, logger.Nop())

	mock.ExpectQuery("FROM rides WHERE id").
		WithArgs("ride-1").
		WillReturnRows(pgxmock.NewRows(rideColumnsList()).
			AddRow("ride-1", "alice", ptr("d-bob"), "A", "B", ptr(10.0), "accepted", t0, t0))

	ride, err := repo.FindByID(context.Background(), "ride-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, ride.Status)
	require.NotNil(t, ride.DriverID)
	assert.Equal(t, "d-bob", *ride.DriverID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgFindByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRidePgRepository(mock, logger.Nop())

	mock.ExpectQuery("FROM rides WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrRideNotFound)
}

func TestPgListByStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRidePgRepository(mock, logger.Nop())

	mock.ExpectQuery("ORDER BY created_at ASC").
		WithArgs("pending").
		WillReturnRows(pgxmock.NewRows(rideColumnsList()).
			AddRow("ride-1", "alice", (*string)(nil), "A", "B", ptr(10.0), "pending", t0, t0).
			AddRow("ride-2", "alice", (*string)(nil), "C", "D", (*float64)(nil), "pending", t0.Add(time.Second), t0.Add(time.Second)))

	rides, err := repo.ListByStatus(context.Background(), domain.StatusPending)
	require.NoError(t, err)
	require.Len(t, rides, 2)
	assert.Equal(t, "ride-1", rides[0].ID)
	assert.Nil(t, rides[1].Price)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgUpdateStatus(t *testing.T) {
	next := pendingRide("ride-1", t0)
	next.Status = domain.StatusAccepted
	next.DriverID = ptr("d-bob")
	next.UpdatedAt = t0.Add(time.Minute)

	tests := []struct {
		name     string
		affected int64
		exists   bool
		want     error
	}{
		{name: "applied", affected: 1},
		{name: "stale", affected: 0, exists: true, want: domain.ErrStaleRide},
		{name: "missing", affected: 0, exists: false, want: domain.ErrRideNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewRidePgRepository(mock, logger.Nop())

			mock.ExpectExec("UPDATE rides").
				WithArgs("accepted", next.DriverID, next.UpdatedAt, "ride-1", "pending").
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))
			if tt.affected == 0 {
				mock.ExpectQuery("SELECT EXISTS").
					WithArgs("ride-1").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(tt.exists))
			}

			err = repo.UpdateStatus(context.Background(), next, domain.StatusPending)
			if tt.want == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPgUpdateStatusDBError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRidePgRepository(mock, logger.Nop())
	boom := errors.New("connection reset")

	mock.ExpectExec("UPDATE rides").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "ride-1", "pending").
		WillReturnError(boom)

	err = repo.UpdateStatus(context.Background(), pendingRide("ride-1", t0), domain.StatusPending)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrStaleRide)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryReturnsCopies(t *testing.T) {
	repo := NewRideMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, pendingRide("ride-1", t0)))

	got, err := repo.FindByID(ctx, "ride-1")
	require.NoError(t, err)
	got.Status = domain.StatusCancelled
	*got.Price = 0

	again, err := repo.FindByID(ctx, "ride-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again.Status)
	assert.Equal(t, 10.0, *again.Price)

	_, err = repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrRideNotFound)
}

func TestMemoryListByStatusOrdersByCreation(t *testing.T) {
	repo := NewRideMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, pendingRide("late", t0.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, pendingRide("early", t0)))

	accepted := pendingRide("taken", t0)
	accepted.Status = domain.StatusAccepted
	accepted.DriverID = ptr("d-bob")
	require.NoError(t, repo.Create(ctx, accepted))

	rides, err := repo.ListByStatus(ctx, domain.StatusPending)
	require.NoError(t, err)
	require.Len(t, rides, 2)
	assert.Equal(t, "early", rides[0].ID)
	assert.Equal(t, "late", rides[1].ID)

	empty, err := repo.ListByStatus(ctx, domain.StatusCompleted)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryUpdateStatusCAS(t *testing.T) {
	repo := NewRideMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, pendingRide("ride-1", t0)))

	next := pendingRide("ride-1", t0)
	next.Status = domain.StatusAccepted
	next.DriverID = ptr("d-bob")

	require.NoError(t, repo.UpdateStatus(ctx, next, domain.StatusPending))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, next, domain.StatusPending), domain.ErrStaleRide)

	missing := pendingRide("ghost", t0)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, missing, domain.StatusPending), domain.ErrRideNotFound)

	// мутация аргумента после записи не должна протекать в хранилище
	*next.DriverID = "d-mallory"
	got, err := repo.FindByID(ctx, "ride-1")
	require.NoError(t, err)
	assert.Equal(t, "d-bob", *got.DriverID)
}

func TestMemoryConcurrentCASHasSingleWinner(t *testing.T) {
	repo := NewRideMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, pendingRide("ride-1", t0)))

	const workers = 16
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := pendingRide("ride-1", t0)
			next.Status = domain.StatusAccepted
			next.DriverID = ptr("d-bob")
			if repo.UpdateStatus(ctx, next, domain.StatusPending) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
