package storefront

import (
	"sync"
	"time"
)

const DefaultToastTTL = 2800 * time.Millisecond

// Notifier surfaces transient messages to the user.
type Notifier interface {
	Notify(msg string)
}

// Toasts keeps the latest message until its TTL elapses and forwards every
// message to subscribers.
type Toasts struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	msg       string
	expires   time.Time
	listeners []func(string)
}

func NewToasts(ttl time.Duration) *Toasts {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return &Toasts{ttl: ttl, now: time.Now}
}

func (t *Toasts) Notify(msg string) {
	t.mu.Lock()
	t.msg = msg
	t.expires = t.now().Add(t.ttl)
	listeners := append([]func(string){}, t.listeners...)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(msg)
	}
}

// Current returns the visible toast, or "" once it was dismissed.
func (t *Toasts) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.msg == "" || !t.now().Before(t.expires) {
		t.msg = ""
		return ""
	}
	return t.msg
}

func (t *Toasts) Subscribe(fn func(string)) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}
