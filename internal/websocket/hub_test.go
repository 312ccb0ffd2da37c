package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storepos/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishQueuesEnvelope(t *testing.T) {
	hub := NewHub()
	hub.Publish("stock_low", map[string]interface{}{"product_id": 7, "quantity": 2})

	select {
	case raw := <-hub.Broadcast:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "stock_low", msg.Event)
		assert.EqualValues(t, 7, msg.Data["product_id"])
		assert.False(t, msg.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not queued")
	}
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	hub := NewHub()
	for i := 0; i < broadcastBuffer+5; i++ {
		hub.Publish("bill_committed", nil)
	}
	assert.Len(t, hub.Broadcast, broadcastBuffer)
}

func TestServeWsRejectsBadTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	middleware.InitAuth([]byte("ws-secret"))

	sign := func(role string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  "u1",
			"role": role,
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		s, err := tok.SignedString([]byte("ws-secret"))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "?token=abc", http.StatusUnauthorized},
		{"unknown role", "?token=" + sign("admin"), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub()
			r := gin.New()
			r.GET("/ws", func(c *gin.Context) { ServeWs(hub, c) })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ws"+tt.query, nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, 0, hub.ClientCount())
		})
	}
}
