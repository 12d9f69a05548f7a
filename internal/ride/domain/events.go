package domain

// Имена событий в канале уведомлений
const (
	EventNewRide       = "new_ride"
	EventStatusChanged = "ride_status_changed"
)

// NewRideEvent — то, что получают водители при появлении поездки
type NewRideEvent struct {
	Event   string   `json:"event"`
	RideID  string   `json:"ride_id"`
	Pickup  string   `json:"pickup"`
	Dropoff string   `json:"dropoff"`
	Price   *float64 `json:"price"`
	Rider   string   `json:"rider"`
}

func NewRideEventFor(r *Ride) NewRideEvent {
	return NewRideEvent{
		Event:   EventNewRide,
		RideID:  r.ID,
		Pickup:  r.Pickup,
		Dropoff: r.Dropoff,
		Price:   r.Price,
		Rider:   r.RiderName,
	}
}

// StatusChangedEvent — уведомление участникам поездки после перехода
type StatusChangedEvent struct {
	Event    string  `json:"event"`
	RideID   string  `json:"ride_id"`
	Status   Status  `json:"status"`
	DriverID *string `json:"driver_id"`
}

func StatusChangedEventFor(r *Ride) StatusChangedEvent {
	return StatusChangedEvent{
		Event:    EventStatusChanged,
		RideID:   r.ID,
		Status:   r.Status,
		DriverID: r.DriverID,
	}
}

// RoutingKey — routing key события жизненного цикла в RabbitMQ
func RoutingKey(s Status) string {
	switch s {
	case StatusPending:
		return "ride.requested"
	case StatusAccepted:
		return "ride.accepted"
	case StatusCompleted:
		return "ride.completed"
	case StatusCancelled:
		return "ride.cancelled"
	default:
		return "ride.event"
	}
}
