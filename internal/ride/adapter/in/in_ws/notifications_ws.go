package in_ws

import (
	"context"
	"net/http"

	"ridematch/internal/shared/httpx"
	"ridematch/internal/shared/logger"
	"ridematch/internal/shared/user"
	"ridematch/internal/shared/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// TokenAuthenticator — проверка голого токена из query (*auth.Gate)
type TokenAuthenticator interface {
	AuthenticateToken(ctx context.Context, token string) (user.Identity, error)
}

// NotificationsWSHandler — handshake канала уведомлений
type NotificationsWSHandler struct {
	hub  *ws.Hub
	gate TokenAuthenticator
	log  *logger.Logger
}

// NewNotificationsWSHandler создает handler канала уведомлений
func NewNotificationsWSHandler(hub *ws.Hub, gate TokenAuthenticator, log *logger.Logger) *NotificationsWSHandler {
	return &NotificationsWSHandler{
		hub:  hub,
		gate: gate,
		log:  log,
	}
}

// RegisterRoutes — GET /ws/notifications?token=<jwt>
func (h *NotificationsWSHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/notifications", h.ServeWS)
}

// ServeWS проверяет токен до upgrade: без валидного токена соединение не открывается
func (h *NotificationsWSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	id, err := h.gate.AuthenticateToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.log.Warn(logger.Entry{
			Action:    "ws_handshake_rejected",
			Message:   err.Error(),
			RequestID: middleware.GetReqID(r.Context()),
			Error:     &logger.ErrObj{Msg: err.Error()},
		})
		httpx.RespondError(w, r, h.log, err)
		return
	}

	h.log.Info(logger.Entry{
		Action:    "ws_connected",
		Message:   id.Username,
		RequestID: middleware.GetReqID(r.Context()),
		Additional: map[string]any{
			"user_id": id.ID,
			"role":    string(id.Role),
		},
	})

	// Serve блокируется до отключения клиента
	if err := h.hub.Serve(w, r, id); err != nil {
		return
	}

	h.log.Info(logger.Entry{
		Action:  "ws_disconnected",
		Message: id.Username,
		Additional: map[string]any{
			"user_id": id.ID,
		},
	})
}
