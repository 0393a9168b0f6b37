package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, hub *Hub, session string, admin bool, echo chan<- string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(session, admin, conn, hub).Run(func(b []byte) { echo <- string(b) })
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.DialContext(context.Background(), url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)

	var evt Event
	require.NoError(t, json.Unmarshal(b, &evt))
	return evt
}

func TestBroadcastToSession(t *testing.T) {
	hub := NewHub()
	echo := make(chan string, 1)
	conn := dial(t, serve(t, hub, "s1", false, echo))

	require.Eventually(t, func() bool { return hub.Connected("s1") == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToSession("other", Event{Type: EventToast, Data: "ignored"})
	hub.BroadcastToSession("s1", Event{Type: EventToast, Data: "Commande confirmée 🎉"})

	evt := readEvent(t, conn)
	assert.Equal(t, EventToast, evt.Type)
	assert.Equal(t, "Commande confirmée 🎉", evt.Data)
	assert.False(t, evt.TS.IsZero())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hello")))
	select {
	case got := <-echo:
		assert.Equal(t, "hello", got)
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}

	_ = conn.Close()
	require.Eventually(t, func() bool { return hub.Connected("s1") == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestBroadcastToAdmins(t *testing.T) {
	hub := NewHub()
	user := dial(t, serve(t, hub, "u", false, make(chan string, 1)))
	admin := dial(t, serve(t, hub, "a", true, make(chan string, 1)))

	require.Eventually(t, func() bool {
		return hub.Connected("u") == 1 && hub.Connected("a") == 1
	}, time.Second, 5*time.Millisecond)

	hub.BroadcastToAdmins(Event{Type: EventOrderStatus, Data: "SS-1"})
	assert.Equal(t, EventOrderStatus, readEvent(t, admin).Type)

	hub.BroadcastToSession("u", Event{Type: EventChat})
	assert.Equal(t, EventChat, readEvent(t, user).Type)
}
