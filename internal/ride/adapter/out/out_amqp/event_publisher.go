package out_amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ridematch/internal/ride/domain"
	"ridematch/internal/shared/logger"
)

// Publisher — то, что нужно от *mq.RabbitMQ
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
}

// RideEventMessage — тело сообщения в exchange
type RideEventMessage struct {
	EventType  string       `json:"event_type"`
	Ride       *domain.Ride `json:"ride"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// RideEventPublisher публикует события поездок в RabbitMQ
type RideEventPublisher struct {
	mq       Publisher
	exchange string
	log      *logger.Logger
	now      func() time.Time
}

// NewRideEventPublisher создает новый publisher
func NewRideEventPublisher(mq Publisher, exchange string, log *logger.Logger) *RideEventPublisher {
	return &RideEventPublisher{
		mq:       mq,
		exchange: exchange,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PublishRideEvent публикует снимок поездки, routing key по статусу
func (p *RideEventPublisher) PublishRideEvent(ctx context.Context, ride *domain.Ride) error {
	routingKey := domain.RoutingKey(ride.Status)

	payload, err := json.Marshal(RideEventMessage{
		EventType:  routingKey,
		Ride:       ride,
		OccurredAt: p.now(),
	})
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	if err := p.mq.Publish(ctx, p.exchange, routingKey, payload); err != nil {
		p.log.Error(logger.Entry{
			Action:  "publish_ride_event_failed",
			Message: err.Error(),
			RideID:  ride.ID,
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"routing_key": routingKey,
			},
		})
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}

	p.log.Debug(logger.Entry{
		Action:  "ride_event_published",
		Message: routingKey,
		RideID:  ride.ID,
	})

	return nil
}
