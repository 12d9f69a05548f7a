package in_ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ridematch/internal/shared/auth"
	"ridematch/internal/shared/config"
	"ridematch/internal/shared/logger"
	"ridematch/internal/shared/user"
	"ridematch/internal/shared/ws"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	srv *httptest.Server
	hub *ws.Hub
	jwt *auth.JWTService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	users := user.NewMemoryRepository()
	require.NoError(t, users.Create(context.Background(), &user.User{
		ID: "d-bob", Username: "bob", Email: "bob@example.com", Role: user.RoleDriver,
	}))

	jwtSvc := auth.NewJWTService(config.JWTConfig{Secret: "secret", Issuer: "test", AccessTTLMinutes: 30, RefreshTTLDays: 7})
	hub := ws.NewHub(ws.Options{}, logger.Nop())

	r := chi.NewRouter()
	NewNotificationsWSHandler(hub, auth.NewGate(jwtSvc, users), logger.Nop()).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &env{srv: srv, hub: hub, jwt: jwtSvc}
}

func (e *env) url(token string) string {
	return "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws/notifications?token=" + token
}

func TestHandshakeRejectsBadToken(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name  string
		token string
		code  int
	}{
		{name: "missing", token: "", code: http.StatusUnauthorized},
		{name: "garbage", token: "not-a-jwt", code: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(e.url(tt.token), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.code, resp.StatusCode)
			assert.Equal(t, 0, e.hub.Count())
		})
	}
}

func TestHandshakeUnknownUser(t *testing.T) {
	e := newEnv(t)
	token, err := e.jwt.GenerateAccessToken("ghost")
	require.NoError(t, err)

	_, resp, err := websocket.DefaultDialer.Dial(e.url(token), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandshakeRejectsRefreshToken(t *testing.T) {
	e := newEnv(t)
	token, err := e.jwt.GenerateRefreshToken("bob")
	require.NoError(t, err)

	_, resp, err := websocket.DefaultDialer.Dial(e.url(token), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandshakeRegistersDriver(t *testing.T) {
	e := newEnv(t)
	token, err := e.jwt.GenerateAccessToken("bob")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(e.url(token), nil)
	require.NoError(t, err)
	defer conn.Close()

	var welcome map[string]string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "connected", welcome["event"])
	assert.Equal(t, "driver", welcome["role"])
	assert.Equal(t, 1, e.hub.CountByRole(user.RoleDriver))

	n, err := e.hub.BroadcastToRole(user.RoleDriver, map[string]string{"event": "new_ride", "ride_id": "ride-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var got map[string]string
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "new_ride", got["event"])
}
