package domain

import (
	"strings"
	"time"

	"ridematch/internal/shared/user"
)

// Status — статус поездки
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal — из completed и cancelled переходов нет
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Action — запрошенный переход. Значения совпадают с тем, что приходит в ?status=
type Action string

const (
	ActionAccept   Action = "accepted"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancelled"
)

// ParseAction проверяет значение на границе; все остальное — ErrInvalidAction
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.TrimSpace(s)); a {
	case ActionAccept, ActionComplete, ActionCancel:
		return a, nil
	default:
		return "", ErrInvalidAction
	}
}

// Ride — основная сущность поездки.
// Инвариант: DriverID != nil ⟺ Status ∈ {accepted, completed}.
type Ride struct {
	ID        string    `json:"id"`
	RiderName string    `json:"rider_name"`
	DriverID  *string   `json:"driver_id"`
	Pickup    string    `json:"pickup_location"`
	Dropoff   string    `json:"dropoff_location"`
	Price     *float64  `json:"price"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRide — новая поездка в статусе pending. Только rider может создать поездку.
func NewRide(id string, creator user.Identity, pickup, dropoff string, price *float64, now time.Time) (*Ride, error) {
	if !creator.HasRole(user.RoleRider) {
		return nil, ErrOnlyRidersCreate
	}
	pickup, dropoff = strings.TrimSpace(pickup), strings.TrimSpace(dropoff)
	if pickup == "" || dropoff == "" {
		return nil, ErrEmptyLocation
	}
	if price != nil && *price < 0 {
		return nil, ErrNegativePrice
	}

	return &Ride{
		ID:        id,
		RiderName: creator.Username,
		Pickup:    pickup,
		Dropoff:   dropoff,
		Price:     price,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Clone — глубокая копия (указатели не разделяются)
func (r *Ride) Clone() *Ride {
	c := *r
	if r.DriverID != nil {
		d := *r.DriverID
		c.DriverID = &d
	}
	if r.Price != nil {
		p := *r.Price
		c.Price = &p
	}
	return &c
}

// AssignedTo — actor назначенный водитель поездки
func (r *Ride) AssignedTo(actorID string) bool {
	return r.DriverID != nil && *r.DriverID == actorID
}

// Transition проверяет переход и возвращает обновленную копию. Исходная поездка не меняется.
// Проверки идут по порядку, срабатывает первая.
func (r *Ride) Transition(action Action, actor user.Identity, now time.Time) (*Ride, error) {
	switch action {
	case ActionAccept:
		return r.accept(actor, now)
	case ActionComplete:
		return r.complete(actor, now)
	case ActionCancel:
		return r.cancel(actor, now)
	default:
		return nil, ErrInvalidAction
	}
}

func (r *Ride) accept(actor user.Identity, now time.Time) (*Ride, error) {
	if !actor.HasRole(user.RoleDriver) {
		return nil, ErrOnlyDriversAccept
	}
	switch r.Status {
	case StatusPending:
	case StatusCancelled:
		return nil, ErrAcceptCancelled
	case StatusCompleted:
		return nil, ErrAcceptCompleted
	default:
		return nil, ErrAlreadyAccepted
	}

	next := r.Clone()
	driverID := actor.ID
	next.DriverID = &driverID
	next.Status = StatusAccepted
	next.UpdatedAt = now
	return next, nil
}

func (r *Ride) complete(actor user.Identity, now time.Time) (*Ride, error) {
	if !actor.HasRole(user.RoleDriver) {
		return nil, ErrOnlyDriversComplete
	}
	// у pending и cancelled водителя нет, значит и назначенным никто не считается
	if !r.AssignedTo(actor.ID) {
		return nil, ErrNotAssignedDriver
	}
	switch r.Status {
	case StatusAccepted:
	case StatusCancelled:
		return nil, ErrCompleteCancelled
	case StatusCompleted:
		return nil, ErrAlreadyCompleted
	default:
		return nil, ErrNotAccepted
	}

	next := r.Clone()
	next.Status = StatusCompleted
	next.UpdatedAt = now
	return next, nil
}

func (r *Ride) cancel(actor user.Identity, now time.Time) (*Ride, error) {
	switch r.Status {
	case StatusCompleted:
		return nil, ErrCancelCompleted
	case StatusCancelled:
		return nil, ErrAlreadyCancelled
	}
	if !r.AssignedTo(actor.ID) && actor.Username != r.RiderName {
		return nil, ErrNotParticipant
	}

	next := r.Clone()
	next.Status = StatusCancelled
	next.DriverID = nil
	next.UpdatedAt = now
	return next, nil
}
