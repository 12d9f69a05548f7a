package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ridematch/internal/shared/config"
	"ridematch/internal/shared/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	// ErrChannelUnavailable — канал закрыт, еще не открыт или идет переподключение
	ErrChannelUnavailable = errors.New("rabbitmq channel not available")

	// ErrNotConfirmed — брокер ответил nack на публикацию
	ErrNotConfirmed = errors.New("rabbitmq did not confirm publish")
)

const (
	maxRetries     = 10
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	publishTimeout = 5 * time.Second
)

// RabbitMQ — подключение к брокеру с одним confirm-каналом для публикации.
// При потере соединения переподключается в фоне; пока связи нет, Publish
// возвращает ErrChannelUnavailable.
type RabbitMQ struct {
	url  string
	dial func(url string) (*amqp.Connection, error)
	log  *logger.Logger

	mu     sync.RWMutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
	done   chan struct{}
}

// NewRabbitMQ подключается с retry и экспоненциальной задержкой
func NewRabbitMQ(ctx context.Context, cfg config.MQConfig, log *logger.Logger) (*RabbitMQ, error) {
	mq := &RabbitMQ{
		url:  cfg.AMQPURL(),
		dial: amqp.Dial,
		log:  log,
		done: make(chan struct{}),
	}

	delay := initialBackoff
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := mq.connect()
		if err == nil {
			log.Info(logger.Entry{
				Action:  "rabbitmq_connected",
				Message: fmt.Sprintf("connected to %s:%d", cfg.Host, cfg.Port),
				Additional: map[string]any{
					"attempt": attempt,
				},
			})
			return mq, nil
		}

		log.Warn(logger.Entry{
			Action:  "rabbitmq_connection_attempt_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"attempt":      attempt,
				"max_retries":  maxRetries,
				"retry_in_sec": delay.Seconds(),
			},
		})

		if attempt == maxRetries {
			return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxRetries, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			delay = nextBackoff(delay)
		}
	}

	return nil, errors.New("unexpected error: retry loop completed without success")
}

// nextBackoff — x1.5, но не больше maxBackoff
func nextBackoff(d time.Duration) time.Duration {
	d = time.Duration(float64(d) * 1.5)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (mq *RabbitMQ) connect() error {
	conn, err := mq.dial(mq.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := openConfirmChannel(conn)
	if err != nil {
		_ = conn.Close()
		return err
	}

	mq.mu.Lock()
	if mq.closed {
		mq.mu.Unlock()
		_ = conn.Close()
		return ErrChannelUnavailable
	}
	mq.conn = conn
	mq.ch = ch
	mq.mu.Unlock()

	go mq.watch(conn, ch)
	return nil
}

func openConfirmChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}
	return ch, nil
}

// watch следит за соединением и каналом публикации
func (mq *RabbitMQ) watch(conn *amqp.Connection, ch *amqp.Channel) {
	supervise(
		conn.NotifyClose(make(chan *amqp.Error, 1)),
		ch.NotifyClose(make(chan *amqp.Error, 1)),
		func() (<-chan *amqp.Error, error) {
			next, err := mq.reopenChannel(conn)
			if err != nil {
				return nil, err
			}
			return next.NotifyClose(make(chan *amqp.Error, 1)), nil
		},
		func(cause *amqp.Error) {
			_ = conn.Close()
			mq.reconnect(cause)
		},
		mq.log,
	)
}

// supervise — цикл наблюдения. Канал, закрытый брокером (например, 404 на exchange),
// переоткрывается на том же соединении; упавшее соединение или неудачное
// переоткрытие уходят в reconnect. Штатное закрытие (nil или закрытый notify) завершает цикл.
func supervise(
	connClosed, chClosed <-chan *amqp.Error,
	reopen func() (<-chan *amqp.Error, error),
	reconnect func(cause *amqp.Error),
	log *logger.Logger,
) {
	for {
		select {
		case cause, ok := <-connClosed:
			if !ok || cause == nil {
				return
			}
			reconnect(cause)
			return

		case cause, ok := <-chClosed:
			if !ok || cause == nil {
				return
			}
			log.Warn(logger.Entry{
				Action:  "rabbitmq_channel_lost",
				Message: cause.Error(),
				Error:   &logger.ErrObj{Msg: cause.Error()},
			})

			next, err := reopen()
			if errors.Is(err, ErrChannelUnavailable) {
				return
			}
			if err != nil {
				reconnect(cause)
				return
			}
			chClosed = next
		}
	}
}

// reopenChannel открывает новый confirm-канал на живом соединении
func (mq *RabbitMQ) reopenChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	mq.mu.Lock()
	if mq.closed {
		mq.mu.Unlock()
		return nil, ErrChannelUnavailable
	}
	mq.ch = nil
	mq.mu.Unlock()

	ch, err := openConfirmChannel(conn)
	if err != nil {
		return nil, err
	}

	mq.mu.Lock()
	if mq.closed {
		mq.mu.Unlock()
		_ = ch.Close()
		return nil, ErrChannelUnavailable
	}
	mq.ch = ch
	mq.mu.Unlock()

	mq.log.Info(logger.Entry{Action: "rabbitmq_channel_reopened", Message: "publish channel restored"})
	return ch, nil
}

// reconnect переподключается с backoff, пока не получится или не будет вызван Close
func (mq *RabbitMQ) reconnect(cause *amqp.Error) {
	mq.mu.Lock()
	if mq.closed {
		mq.mu.Unlock()
		return
	}
	mq.ch = nil
	mq.mu.Unlock()

	mq.log.Warn(logger.Entry{
		Action:  "rabbitmq_connection_lost",
		Message: cause.Error(),
		Error:   &logger.ErrObj{Msg: cause.Error()},
	})

	delay := initialBackoff
	for {
		select {
		case <-mq.done:
			return
		case <-time.After(delay):
		}

		err := mq.connect()
		if err == nil {
			mq.log.Info(logger.Entry{Action: "rabbitmq_reconnected", Message: "connection restored"})
			return
		}
		if errors.Is(err, ErrChannelUnavailable) {
			return
		}
		delay = nextBackoff(delay)
	}
}

// Channel возвращает активный канал (nil во время переподключения)
func (mq *RabbitMQ) Channel() *amqp.Channel {
	mq.mu.RLock()
	defer mq.mu.RUnlock()
	return mq.ch
}

// Publish публикует persistent JSON сообщение и ждет подтверждения брокера
func (mq *RabbitMQ) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	mq.mu.RLock()
	ch, closed := mq.ch, mq.closed
	mq.mu.RUnlock()

	if ch == nil || closed || ch.IsClosed() {
		return ErrChannelUnavailable
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	confirm, err := ch.PublishWithDeferredConfirmWithContext(
		publishCtx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	acked, err := confirm.WaitContext(publishCtx)
	if err != nil {
		return fmt.Errorf("wait confirm %s: %w", routingKey, err)
	}
	if !acked {
		return fmt.Errorf("%w: %s", ErrNotConfirmed, routingKey)
	}
	return nil
}

// Close закрывает подключение и останавливает переподключение
func (mq *RabbitMQ) Close() {
	mq.mu.Lock()
	defer mq.mu.Unlock()

	if mq.closed {
		return
	}
	mq.closed = true
	if mq.done != nil {
		close(mq.done)
	}

	if mq.ch != nil {
		_ = mq.ch.Close()
	}
	if mq.conn != nil {
		_ = mq.conn.Close()
	}

	mq.log.Info(logger.Entry{Action: "rabbitmq_closed", Message: "connection closed"})
}
