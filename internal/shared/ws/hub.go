// ============================================================================
// WEBSOCKET HUB - реестр живых подписчиков канала уведомлений
// ============================================================================
//
// Hub знает всех подключенных клиентов и их роль и умеет:
// 1. Регистрировать клиента (повторная регистрация того же клиента ничего не меняет)
// 2. Отключать клиента (отключение неизвестного клиента ничего не делает)
// 3. Рассылать сообщение всем или только клиентам с нужной ролью
// 4. Отправлять сообщение конкретному пользователю
//
// Аутентификация делается ДО upgrade (см. ride/adapter/in/in_ws), в Serve
// приходит уже готовая Identity.
//
// Рассылка:
//
//	Broadcast(msg, role)
//	     │
//	     ├─► RLock, снимок подходящих клиентов, RUnlock
//	     └─► для каждого: неблокирующий client.send <- msg
//	              │
//	              ├─► ok: writePump отправит в сокет
//	              └─► буфер полон или клиент закрыт: Unregister, остальные не страдают
//
// ============================================================================

package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ridematch/internal/shared/logger"
	"ridematch/internal/shared/user"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// pingInterval — как часто сервер отправляет ping клиенту
	pingInterval = 30 * time.Second

	// pongWait — если клиент не ответил pong за это время, соединение мертвое
	pongWait = 60 * time.Second

	// maxMessageSize — максимальный размер входящего сообщения (8 KB)
	maxMessageSize = 8192

	// writeWait — таймаут на одну запись в сокет
	writeWait = 10 * time.Second

	// sendBuffer — размер очереди исходящих сообщений на клиента
	sendBuffer = 64
)

// Options — тайминги и лимиты; нулевые поля заменяются значениями по умолчанию
type Options struct {
	SendBuffer     int
	WriteWait      time.Duration
	PongWait       time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = sendBuffer
	}
	if o.WriteWait <= 0 {
		o.WriteWait = writeWait
	}
	if o.PongWait <= 0 {
		o.PongWait = pongWait
	}
	if o.PingInterval <= 0 {
		o.PingInterval = pingInterval
	}
	// ping должен успевать до истечения pongWait
	if o.PingInterval >= o.PongWait {
		o.PingInterval = o.PongWait * 9 / 10
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = maxMessageSize
	}
	return o
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// токен проверяется до upgrade, origin не ограничиваем
		return true
	},
}

// Hub управляет всеми активными WebSocket соединениями.
// Весь доступ к clients под mu; отправка клиенту под client.mu.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	opts    Options
	log     *logger.Logger
}

// NewHub создает пустой реестр
func NewHub(opts Options, log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		opts:    opts.withDefaults(),
		log:     log,
	}
}

// NewClient создает клиента для соединения. conn может быть nil (тесты, внутренние подписчики).
func (h *Hub) NewClient(conn *websocket.Conn, id user.Identity) *Client {
	return &Client{
		ID:       uuid.NewString(),
		UserID:   id.ID,
		Username: id.Username,
		Role:     id.Role,
		conn:     conn,
		send:     make(chan []byte, h.opts.SendBuffer),
		hub:      h,
		log:      h.log,
	}
}

// Register добавляет клиента. Повторный вызов для того же клиента ничего не делает,
// уже отключенный клиент не регистрируется (его очередь закрыта). Возвращает true,
// если клиент теперь в реестре.
func (h *Hub) Register(c *Client) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		h.log.Debug(logger.Entry{
			Action:  "client_register_rejected",
			Message: c.ID,
			Additional: map[string]any{
				"user_id": c.UserID,
			},
		})
		return false
	}
	h.mu.Lock()
	_, exists := h.clients[c.ID]
	if !exists {
		h.clients[c.ID] = c
	}
	total := len(h.clients)
	h.mu.Unlock()
	c.mu.Unlock()

	if exists {
		return true
	}
	h.log.Info(logger.Entry{
		Action:  "client_registered",
		Message: c.ID,
		Additional: map[string]any{
			"user_id": c.UserID,
			"role":    string(c.Role),
			"clients": total,
		},
	})
	return true
}

// Unregister удаляет клиента и закрывает его очередь. Для неизвестного клиента — no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, exists := h.clients[c.ID]
	if exists {
		delete(h.clients, c.ID)
	}
	h.mu.Unlock()

	if !exists {
		return
	}
	c.close()

	h.log.Info(logger.Entry{
		Action:  "client_unregistered",
		Message: c.ID,
		Additional: map[string]any{
			"user_id": c.UserID,
		},
	})
}

// Broadcast отправляет сообщение всем клиентам с ролью role ("" = всем).
// Возвращает число клиентов, которым сообщение поставлено в очередь.
func (h *Hub) Broadcast(message []byte, role user.Role) int {
	return h.deliver(message, func(c *Client) bool {
		return role == "" || c.Role == role
	})
}

// BroadcastToRole сериализует v в JSON и рассылает клиентам с ролью
func (h *Hub) BroadcastToRole(role user.Role, v any) (int, error) {
	msg, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("marshal broadcast: %w", err)
	}
	return h.Broadcast(msg, role), nil
}

// SendToUser отправляет JSON всем соединениям пользователя с данным ID
func (h *Hub) SendToUser(userID string, v any) (int, error) {
	msg, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("marshal message: %w", err)
	}
	return h.deliver(msg, func(c *Client) bool { return c.UserID == userID }), nil
}

// SendToUsername — то же, но по username
func (h *Hub) SendToUsername(username string, v any) (int, error) {
	msg, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("marshal message: %w", err)
	}
	return h.deliver(msg, func(c *Client) bool { return c.Username == username }), nil
}

func (h *Hub) deliver(message []byte, match func(*Client) bool) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		if match(c) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		switch c.enqueue(message) {
		case sent:
			delivered++
			continue
		case clientClosed:
			// отключился во время рассылки
			continue
		}
		h.log.Warn(logger.Entry{
			Action:  "client_dropped",
			Message: "send buffer full",
			Additional: map[string]any{
				"client_id": c.ID,
				"user_id":   c.UserID,
			},
		})
		h.Unregister(c)
	}
	return delivered
}

// Count — число зарегистрированных клиентов
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CountByRole — число клиентов с ролью
func (h *Hub) CountByRole(role user.Role) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, c := range h.clients {
		if c.Role == role {
			n++
		}
	}
	return n
}

// Shutdown отключает всех клиентов
func (h *Hub) Shutdown() {
	h.mu.Lock()
	all := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		all = append(all, c)
	}
	h.mu.Unlock()

	for _, c := range all {
		h.Unregister(c)
	}
	h.log.Info(logger.Entry{Action: "hub_stopped", Message: "websocket hub stopped"})
}

// Serve делает upgrade, регистрирует клиента и держит соединение до закрытия.
// Блокируется до отключения клиента.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, id user.Identity) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error(logger.Entry{
			Action:  "ws_upgrade_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return fmt.Errorf("upgrade: %w", err)
	}

	client := h.NewClient(conn, id)
	if !h.Register(client) {
		_ = conn.Close()
		return nil
	}

	_ = client.enqueueJSON(map[string]any{
		"event":   "connected",
		"role":    string(id.Role),
		"user_id": id.ID,
	})

	go client.writePump()
	client.readPump()
	return nil
}
