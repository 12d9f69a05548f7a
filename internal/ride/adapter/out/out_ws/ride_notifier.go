package out_ws

import (
	"context"

	"ridematch/internal/shared/logger"
	"ridematch/internal/shared/user"
	"ridematch/internal/shared/ws"
)

// WsRideNotifier отправляет уведомления через WebSocket
type WsRideNotifier struct {
	hub *ws.Hub
	log *logger.Logger
}

// NewWsRideNotifier создает новый notifier
func NewWsRideNotifier(hub *ws.Hub, log *logger.Logger) *WsRideNotifier {
	return &WsRideNotifier{
		hub: hub,
		log: log,
	}
}

// BroadcastToRole рассылает payload всем подключенным пользователям с ролью
func (n *WsRideNotifier) BroadcastToRole(_ context.Context, role user.Role, payload any) (int, error) {
	sent, err := n.hub.BroadcastToRole(role, payload)
	if err != nil {
		n.log.Error(logger.Entry{
			Action:  "broadcast_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"role": string(role),
			},
		})
		return 0, err
	}

	n.log.Debug(logger.Entry{
		Action:  "role_broadcasted",
		Message: string(role),
		Additional: map[string]any{
			"recipients": sent,
		},
	})

	return sent, nil
}

// NotifyUser отправляет payload соединениям пользователя.
// Если задан userID, адресация по нему, иначе по username. Пользователь без соединений — не ошибка.
func (n *WsRideNotifier) NotifyUser(_ context.Context, userID, username string, payload any) error {
	var (
		sent int
		err  error
	)
	if userID != "" {
		sent, err = n.hub.SendToUser(userID, payload)
	} else {
		sent, err = n.hub.SendToUsername(username, payload)
	}
	if err != nil {
		n.log.Error(logger.Entry{
			Action:  "notify_user_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"user_id":  userID,
				"username": username,
			},
		})
		return err
	}

	n.log.Debug(logger.Entry{
		Action:  "user_notified",
		Message: "notification delivered",
		Additional: map[string]any{
			"user_id":     userID,
			"username":    username,
			"connections": sent,
		},
	})

	return nil
}
