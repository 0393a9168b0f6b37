package router

import (
	"sync"
	"time"
)

// Location is the URL fragment holder, the browser address bar or an
// in-memory stand-in.
type Location interface {
	Fragment() string
	// Replace swaps the fragment without adding a history entry.
	Replace(fragment string)
}

type MemoryLocation struct {
	mu       sync.RWMutex
	fragment string
}

func NewMemoryLocation(fragment string) *MemoryLocation {
	return &MemoryLocation{fragment: fragment}
}

func (l *MemoryLocation) Fragment() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fragment
}

func (l *MemoryLocation) Replace(fragment string) {
	l.mu.Lock()
	l.fragment = fragment
	l.mu.Unlock()
}

// Navigator keeps the current route and the location in agreement.
type Navigator struct {
	mu        sync.Mutex
	loc       Location
	delay     time.Duration
	isAdmin   func() bool
	route     Route
	seq       uint64
	listeners []func(Route)
}

// NewNavigator reads the initial route from loc. isAdmin may be nil, in which
// case the admin view is never reachable.
func NewNavigator(loc Location, delay time.Duration, isAdmin func() bool) *Navigator {
	if isAdmin == nil {
		isAdmin = func() bool { return false }
	}
	n := &Navigator{loc: loc, delay: delay, isAdmin: isAdmin}
	n.route = n.guard(Parse(loc.Fragment()))
	return n
}

func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.route
}

// OnChange registers fn to run after every route change.
func (n *Navigator) OnChange(fn func(Route)) {
	n.mu.Lock()
	n.listeners = append(n.listeners, fn)
	n.mu.Unlock()
}

// Go writes the target fragment immediately and switches the route after the
// transition delay. A later Go supersedes a pending one.
func (n *Navigator) Go(view View, productID int64) {
	if !view.Valid() {
		view = ViewHome
	}
	if view != ViewProduct {
		productID = 0
	}

	n.mu.Lock()
	n.seq++
	seq := n.seq
	n.loc.Replace(Fragment(view, productID))
	n.mu.Unlock()

	target := Route{View: view, ProductID: productID}
	if n.delay <= 0 {
		n.apply(seq, target)
		return
	}
	time.AfterFunc(n.delay, func() { n.apply(seq, target) })
}

// Sync re-reads the location, for fragment changes made outside the
// navigator such as back/forward.
func (n *Navigator) Sync() {
	n.mu.Lock()
	n.seq++
	seq := n.seq
	target := Parse(n.loc.Fragment())
	n.mu.Unlock()

	n.apply(seq, target)
}

// Guard re-checks admin access for the current route, after a lock for
// instance.
func (n *Navigator) Guard() {
	n.mu.Lock()
	seq := n.seq
	target := n.route
	n.mu.Unlock()

	n.apply(seq, target)
}

func (n *Navigator) apply(seq uint64, target Route) {
	n.mu.Lock()
	if seq != n.seq {
		n.mu.Unlock()
		return
	}
	target = n.guard(target)
	changed := target != n.route
	n.route = target
	listeners := append([]func(Route){}, n.listeners...)
	n.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(target)
	}
}

// guard must run with the lock held (or before the navigator is shared).
func (n *Navigator) guard(r Route) Route {
	if r.View == ViewAdmin && !n.isAdmin() {
		n.loc.Replace(Fragment(ViewHome, 0))
		return Route{View: ViewHome}
	}
	return r
}
