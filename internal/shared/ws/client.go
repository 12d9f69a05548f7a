package ws

import (
	"encoding/json"
	"sync"
	"time"

	"ridematch/internal/shared/logger"
	"ridematch/internal/shared/user"

	"github.com/gorilla/websocket"
)

// Client — одно WebSocket соединение
type Client struct {
	ID       string    // уникальный ID соединения
	UserID   string    // ID пользователя
	Username string    // username пользователя
	Role     user.Role // роль, по ней фильтруется рассылка

	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	log  *logger.Logger

	mu     sync.Mutex // защищает send и closed
	closed bool
}

// inbound — сообщение от клиента
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Messages — очередь исходящих сообщений (закрывается при Unregister)
func (c *Client) Messages() <-chan []byte {
	return c.send
}

type sendResult int

const (
	sent sendResult = iota
	bufferFull
	clientClosed
)

// enqueue — неблокирующая постановка в очередь
func (c *Client) enqueue(msg []byte) sendResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return clientClosed
	}
	select {
	case c.send <- msg:
		return sent
	default:
		return bufferFull
	}
}

func (c *Client) enqueueJSON(v any) bool {
	msg, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return c.enqueue(msg) == sent
}

// close закрывает очередь ровно один раз
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump читает сообщения клиента, нужен чтобы заметить закрытие соединения.
// На {"type":"ping"} отвечает {"event":"pong"}.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	opts := c.hub.opts
	c.conn.SetReadLimit(opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn(logger.Entry{
					Action:  "ws_read_error",
					Message: c.ID,
					Error:   &logger.ErrObj{Msg: err.Error()},
				})
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(message, &msg); err != nil {
			c.log.Debug(logger.Entry{
				Action:  "ws_parse_message_error",
				Message: err.Error(),
				Additional: map[string]any{
					"client_id": c.ID,
				},
			})
			continue
		}

		switch msg.Type {
		case "ping":
			if !c.enqueueJSON(map[string]string{"event": "pong"}) {
				return
			}
		default:
			c.log.Debug(logger.Entry{
				Action:  "ws_unknown_message_type",
				Message: msg.Type,
				Additional: map[string]any{
					"client_id": c.ID,
				},
			})
		}
	}
}

// writePump отправляет сообщения клиенту и периодически пингует его
func (c *Client) writePump() {
	opts := c.hub.opts
	ticker := time.NewTicker(opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if !ok {
				// Hub закрыл канал
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
