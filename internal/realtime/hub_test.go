package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFeed(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/ws", ServeWs(hub, NewUpgrader(nil), hub.logger))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/admin/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubLocalBroadcast(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	conn := startFeed(t, hub)

	hub.Publish(EventFeedbackSubmitted, map[string]bool{"useful": true})

	msg := readEvent(t, conn)
	assert.Equal(t, EventFeedbackSubmitted, msg.Event)
	var data map[string]bool
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.True(t, data["useful"])
}

func TestHubUnregisterOnDisconnect(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	conn := startFeed(t, hub)
	conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubThroughRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	ps := NewRedisPubSub(rdb, nil)
	hub := NewHub(nil, ps, ps)
	conn := startFeed(t, hub)

	// A second instance publishing on the same channel reaches this hub's clients.
	other := NewHub(nil, ps, nil)
	other.Publish(EventEventFeedbackSubmitted, map[string]int{"rating": 5})

	msg := readEvent(t, conn)
	assert.Equal(t, EventEventFeedbackSubmitted, msg.Event)
	assert.JSONEq(t, `{"rating":5}`, string(msg.Data))
}

func TestUpgraderOrigins(t *testing.T) {
	up := NewUpgrader([]string{"https://julefagdag.example"})
	req := httptest.NewRequest("GET", "/admin/ws", nil)
	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, up.CheckOrigin(req))
	req.Header.Set("Origin", "https://julefagdag.example")
	assert.True(t, up.CheckOrigin(req))
	assert.True(t, NewUpgrader([]string{"*"}).CheckOrigin(req))
}
