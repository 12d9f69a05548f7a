package mq

import (
	"context"
	"fmt"

	"ridematch/internal/shared/logger"
)

// RideQueues — очереди событий жизненного цикла поездки; routing key = имя очереди
var RideQueues = []string{
	"ride.requested",
	"ride.accepted",
	"ride.completed",
	"ride.cancelled",
}

// SetupTopology объявляет topic exchange и очереди событий поездок
func SetupTopology(_ context.Context, mq *RabbitMQ, exchange string, log *logger.Logger) error {
	ch := mq.Channel()
	if ch == nil {
		return ErrChannelUnavailable
	}

	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // args
	); err != nil {
		return fmt.Errorf("declare %s: %w", exchange, err)
	}

	for _, q := range RideQueues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
		if err := ch.QueueBind(q, q, exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q, err)
		}
	}

	log.Info(logger.Entry{
		Action:  "topology_setup_complete",
		Message: "ride exchange and queues declared",
		Additional: map[string]any{
			"exchange": exchange,
			"queues":   RideQueues,
		},
	})

	return nil
}
