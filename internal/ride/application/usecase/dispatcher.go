package usecase

import (
	"context"

	"ridematch/internal/ride/application/ports/out"
	"ridematch/internal/ride/domain"
	"ridematch/internal/shared/logger"
	"ridematch/internal/shared/user"
)

// Dispatcher — реакция на изменения поездок: рассылка в WebSocket и публикация в брокер.
// Все доставки best-effort: ошибки логируются, но не возвращаются вызывающему.
type Dispatcher struct {
	notifier  out.RideNotifier
	publisher out.EventPublisher // nil если брокер выключен
	log       *logger.Logger
}

func NewDispatcher(notifier out.RideNotifier, publisher out.EventPublisher, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		notifier:  notifier,
		publisher: publisher,
		log:       log,
	}
}

// OnRideCreated рассылает new_ride всем подключенным водителям
func (d *Dispatcher) OnRideCreated(ctx context.Context, ride *domain.Ride) {
	n, err := d.notifier.BroadcastToRole(ctx, user.RoleDriver, domain.NewRideEventFor(ride))
	if err != nil {
		d.log.Error(logger.Entry{
			Action:  "broadcast_new_ride_failed",
			Message: err.Error(),
			RideID:  ride.ID,
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	} else {
		d.log.Info(logger.Entry{
			Action:  "new_ride_broadcast",
			Message: "ride offered to drivers",
			RideID:  ride.ID,
			Additional: map[string]any{
				"recipients": n,
			},
		})
	}

	d.publish(ctx, ride)
}

// OnStatusChanged уведомляет райдера и водителя (в том числе бывшего, если поездку отменили)
func (d *Dispatcher) OnStatusChanged(ctx context.Context, prev, next *domain.Ride) {
	event := domain.StatusChangedEventFor(next)

	if err := d.notifier.NotifyUser(ctx, "", next.RiderName, event); err != nil {
		d.logNotifyFailed(next.ID, "rider", err)
	}

	driverID := next.DriverID
	if driverID == nil {
		driverID = prev.DriverID
	}
	if driverID != nil {
		if err := d.notifier.NotifyUser(ctx, *driverID, "", event); err != nil {
			d.logNotifyFailed(next.ID, "driver", err)
		}
	}

	d.publish(ctx, next)
}

func (d *Dispatcher) publish(ctx context.Context, ride *domain.Ride) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.PublishRideEvent(context.WithoutCancel(ctx), ride); err != nil {
		d.log.Warn(logger.Entry{
			Action:  "publish_ride_event_failed",
			Message: err.Error(),
			RideID:  ride.ID,
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"routing_key": domain.RoutingKey(ride.Status),
			},
		})
	}
}

func (d *Dispatcher) logNotifyFailed(rideID, who string, err error) {
	d.log.Warn(logger.Entry{
		Action:  "notify_participant_failed",
		Message: err.Error(),
		RideID:  rideID,
		Error:   &logger.ErrObj{Msg: err.Error()},
		Additional: map[string]any{
			"participant": who,
		},
	})
}
