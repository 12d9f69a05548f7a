package out

import (
	"context"

	"ridematch/internal/shared/user"
)

// RideNotifier — доставка уведомлений в канал WebSocket
type RideNotifier interface {
	// BroadcastToRole рассылает payload всем подписчикам с ролью, возвращает число получателей
	BroadcastToRole(ctx context.Context, role user.Role, payload any) (int, error)

	// NotifyUser отправляет payload всем соединениям пользователя (по ID или username)
	NotifyUser(ctx context.Context, userID, username string, payload any) error
}
