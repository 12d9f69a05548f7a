package out

import (
	"context"

	"ridematch/internal/ride/domain"
)

// EventPublisher — публикация событий жизненного цикла поездки во внешний брокер
type EventPublisher interface {
	// PublishRideEvent публикует снимок поездки; routing key определяется статусом
	PublishRideEvent(ctx context.Context, ride *domain.Ride) error
}
