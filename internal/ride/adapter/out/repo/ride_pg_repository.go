package repo

import (
	"context"
	"errors"
	"fmt"

	"ridematch/internal/ride/domain"
	"ridematch/internal/shared/db"
	"ridematch/internal/shared/logger"

	"github.com/jackc/pgx/v5"
)

const rideColumns = `id, rider_name, driver_id, pickup_location, dropoff_location, price, status, created_at, updated_at`

// RidePgRepository — PostgreSQL репозиторий для работы с поездками
type RidePgRepository struct {
	db  db.DBTX
	log *logger.Logger
}

// NewRidePgRepository создает новый экземпляр репозитория
func NewRidePgRepository(conn db.DBTX, log *logger.Logger) *RidePgRepository {
	return &RidePgRepository{
		db:  conn,
		log: log,
	}
}

// Create создает новую поездку
func (r *RidePgRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		ride.ID,
		ride.RiderName,
		ride.DriverID,
		ride.Pickup,
		ride.Dropoff,
		ride.Price,
		string(ride.Status),
		ride.CreatedAt,
		ride.UpdatedAt,
	)
	if err != nil {
		r.log.Error(logger.Entry{
			Action:  "db_create_ride_failed",
			Message: err.Error(),
			RideID:  ride.ID,
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return fmt.Errorf("insert ride: %w", err)
	}

	return nil
}

// FindByID возвращает поездку по ID
func (r *RidePgRepository) FindByID(ctx context.Context, rideID string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.db.QueryRow(ctx, query, rideID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRideNotFound
		}
		r.log.Error(logger.Entry{
			Action:  "db_find_ride_by_id_failed",
			Message: err.Error(),
			RideID:  rideID,
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return nil, fmt.Errorf("query ride by id: %w", err)
	}

	return ride, nil
}

// ListByStatus возвращает поездки с определенным статусом, старые первыми
func (r *RidePgRepository) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE status = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("query rides by status: %w", err)
	}
	defer rows.Close()

	rides := make([]*domain.Ride, 0)
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride: %w", err)
		}
		rides = append(rides, ride)
	}

	return rides, rows.Err()
}

// UpdateStatus — compare-and-set: строка обновляется только если статус в базе все еще expected
func (r *RidePgRepository) UpdateStatus(ctx context.Context, ride *domain.Ride, expected domain.Status) error {
	query := `
		UPDATE rides
		SET status = $1, driver_id = $2, updated_at = $3
		WHERE id = $4
		  AND status = $5
	`

	result, err := r.db.Exec(ctx, query,
		string(ride.Status),
		ride.DriverID,
		ride.UpdatedAt,
		ride.ID,
		string(expected),
	)
	if err != nil {
		r.log.Error(logger.Entry{
			Action:  "db_update_ride_status_failed",
			Message: err.Error(),
			RideID:  ride.ID,
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return fmt.Errorf("update ride status: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE id = $1)`, ride.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check ride exists: %w", err)
		}
		if !exists {
			return domain.ErrRideNotFound
		}
		return domain.ErrStaleRide
	}

	return nil
}

func scanRide(row pgx.Row) (*domain.Ride, error) {
	var (
		ride   domain.Ride
		status string
	)
	err := row.Scan(
		&ride.ID,
		&ride.RiderName,
		&ride.DriverID,
		&ride.Pickup,
		&ride.Dropoff,
		&ride.Price,
		&status,
		&ride.CreatedAt,
		&ride.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ride.Status = domain.Status(status)
	return &ride, nil
}
