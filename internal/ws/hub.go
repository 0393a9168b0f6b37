package ws

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/fx"
)

var Module = fx.Provide(NewHub)

const (
	EventChat        = "chat"
	EventToast       = "toast"
	EventRoute       = "route"
	EventOrderStatus = "order_status"
)

type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data,omitempty"`
	TS   time.Time `json:"ts"`
}

// Hub fans events out to the sockets of a session and to admin sockets.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]struct{}
	admins   map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[*Client]struct{}),
		admins:   make(map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.admin {
		h.admins[c] = struct{}{}
	}
	set, ok := h.sessions[c.session]
	if !ok {
		set = make(map[*Client]struct{})
		h.sessions[c.session] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.admins, c)
	set, ok := h.sessions[c.session]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.sessions, c.session)
	}
}

// Connected reports how many sockets a session has open.
func (h *Hub) Connected(session string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[session])
}

func encode(evt Event) ([]byte, error) {
	evt.TS = time.Now().UTC()
	return json.Marshal(evt)
}

func (h *Hub) BroadcastToSession(session string, evt Event) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.sessions[session]))
	for c := range h.sessions[session] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}
	b, err := encode(evt)
	if err != nil {
		return
	}
	for _, c := range clients {
		c.SendRaw(b)
	}
}

func (h *Hub) BroadcastToAdmins(evt Event) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.admins))
	for c := range h.admins {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}
	b, err := encode(evt)
	if err != nil {
		return
	}
	for _, c := range clients {
		c.SendRaw(b)
	}
}
