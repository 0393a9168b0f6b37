package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	maxMsgSize = 16 * 1024
	sendBuffer = 64
)

type Client struct {
	session string
	admin   bool
	conn    *websocket.Conn
	hub     *Hub
	send    chan []byte
	once    sync.Once
}

func NewClient(session string, admin bool, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		session: session,
		admin:   admin,
		conn:    conn,
		hub:     hub,
		send:    make(chan []byte, sendBuffer),
	}
}

// SendRaw queues b. A client that cannot keep up is disconnected.
func (c *Client) SendRaw(b []byte) {
	select {
	case c.send <- b:
	default:
		c.close()
	}
}

func (c *Client) close() {
	c.once.Do(func() { _ = c.conn.Close() })
}

// readPump hands every text frame to onMessage until the socket fails.
func (c *Client) readPump(onMessage func([]byte)) {
	defer func() {
		c.hub.Unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind == websocket.TextMessage && onMessage != nil {
			onMessage(msg)
		}
	}
}

func (c *Client) writePump(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Run registers the client and blocks until the connection is gone.
func (c *Client) Run(onMessage func([]byte)) {
	c.hub.Register(c)

	done := make(chan struct{})
	go c.writePump(done)
	c.readPump(onMessage)
	close(done)
}

// Send queues evt for this client only.
func (c *Client) Send(evt Event) {
	b, err := encode(evt)
	if err != nil {
		return
	}
	c.SendRaw(b)
}
