package kv

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"stickerstreet/pkg/logger"
)

// watchers fans key changes out to every registered WatchFunc. Drivers that
// need an upstream listener keep one per key, shared by all its watchers.
type watchers struct {
	m        sync.Mutex
	fns      map[string]map[int]WatchFunc
	upstream map[string]func()
	nextID   int
}

func newWatchers() *watchers {
	return &watchers{
		fns:      map[string]map[int]WatchFunc{},
		upstream: map[string]func(){},
	}
}

// add registers fn under key until the returned stop is called or ctx ends.
// start, when not nil, runs for the first watcher of key and returns the
// func that tears the upstream down once the last watcher leaves.
func (w *watchers) add(ctx context.Context, key string, fn WatchFunc, start func() (func(), error)) (func(), error) {
	w.m.Lock()
	if len(w.fns[key]) == 0 && start != nil {
		stopUpstream, err := start()
		if err != nil {
			w.m.Unlock()
			return nil, err
		}
		w.upstream[key] = stopUpstream
	}
	id := w.nextID
	w.nextID++
	if w.fns[key] == nil {
		w.fns[key] = map[int]WatchFunc{}
	}
	w.fns[key][id] = fn
	w.m.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() { w.remove(key, id) })
	}
	unregister := context.AfterFunc(ctx, stop)

	return func() {
		unregister()
		stop()
	}, nil
}

func (w *watchers) remove(key string, id int) {
	w.m.Lock()
	delete(w.fns[key], id)
	var stopUpstream func()
	if len(w.fns[key]) == 0 {
		delete(w.fns, key)
		stopUpstream = w.upstream[key]
		delete(w.upstream, key)
	}
	w.m.Unlock()

	if stopUpstream != nil {
		stopUpstream()
	}
}

func (w *watchers) watched(key string) bool {
	w.m.Lock()
	defer w.m.Unlock()
	return len(w.fns[key]) > 0
}

func (w *watchers) count() int {
	w.m.Lock()
	defer w.m.Unlock()

	n := 0
	for _, fns := range w.fns {
		n += len(fns)
	}
	return n
}

func (w *watchers) dispatch(key, value string, ok bool) {
	w.m.Lock()
	fns := make([]WatchFunc, 0, len(w.fns[key]))
	for _, fn := range w.fns[key] {
		fns = append(fns, fn)
	}
	w.m.Unlock()

	for _, fn := range fns {
		fn(value, ok)
	}
}

// refresh rereads key after a change notification and dispatches it.
func (w *watchers) refresh(ctx context.Context, key string, get func(context.Context, string) (string, error), log logger.Logger) {
	value, err := get(ctx, key)
	switch {
	case err == nil:
		w.dispatch(key, value, true)
	case errors.Is(err, ErrNotFound):
		w.dispatch(key, "", false)
	default:
		log.Warn(ctx, "kv: reread after change failed", zap.String("key", key), zap.Error(err))
	}
}

// close drops every watcher and upstream listener.
func (w *watchers) close() {
	w.m.Lock()
	stops := make([]func(), 0, len(w.upstream))
	for _, stop := range w.upstream {
		stops = append(stops, stop)
	}
	w.fns = map[string]map[int]WatchFunc{}
	w.upstream = map[string]func(){}
	w.m.Unlock()

	for _, stop := range stops {
		stop()
	}
}
