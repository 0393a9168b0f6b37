package kv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"stickerstreet/pkg/logger"
)

const tmpPrefix = ".tmp-"

type file struct {
	dir    string
	logger logger.Logger
	m      sync.Mutex

	watchMu  sync.Mutex
	notifier *fsnotify.Watcher
	watchers *watchers
}

// NewFile stores one file per key under dir. Changes made by other processes
// sharing dir reach watchers through a single fsnotify watcher on dir.
func NewFile(dir string, log logger.Logger) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("kv: create dir: %w", err)
	}
	return &file{dir: dir, logger: log, watchers: newWatchers()}, nil
}

func (f *file) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key))
}

func (f *file) Get(_ context.Context, key string) (string, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("kv: read %s: %w", key, err)
	}
	return string(data), nil
}

func (f *file) Set(_ context.Context, key, value string) error {
	f.m.Lock()
	defer f.m.Unlock()

	tmp, err := os.CreateTemp(f.dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("kv: write %s: %w", key, err)
	}
	if _, err = tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("kv: write %s: %w", key, err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("kv: write %s: %w", key, err)
	}
	if err = os.Rename(tmp.Name(), f.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("kv: write %s: %w", key, err)
	}
	return nil
}

func (f *file) Delete(_ context.Context, key string) error {
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("kv: delete %s: %w", key, err)
	}
	return nil
}

func (f *file) Watch(ctx context.Context, key string, fn WatchFunc) (func(), error) {
	if err := f.startNotifier(); err != nil {
		return nil, err
	}
	return f.watchers.add(ctx, key, fn, nil)
}

// startNotifier opens the store's fsnotify watcher on first use.
func (f *file) startNotifier() error {
	f.watchMu.Lock()
	defer f.watchMu.Unlock()

	if f.notifier != nil {
		return nil
	}

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("kv: watcher: %w", err)
	}
	if err = notifier.Add(f.dir); err != nil {
		_ = notifier.Close()
		return fmt.Errorf("kv: watch %s: %w", f.dir, err)
	}
	f.notifier = notifier

	go f.notify(notifier)
	return nil
}

func (f *file) notify(notifier *fsnotify.Watcher) {
	ctx := context.Background()
	for {
		select {
		case ev, ok := <-notifier.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Base(ev.Name)
			if strings.HasPrefix(name, tmpPrefix) {
				continue
			}
			key, err := url.PathUnescape(name)
			if err != nil || !f.watchers.watched(key) {
				continue
			}
			f.watchers.refresh(ctx, key, f.Get, f.logger)
		case err, ok := <-notifier.Errors:
			if !ok {
				return
			}
			f.logger.Warn(ctx, "kv: watcher error", zap.Error(err))
		}
	}
}

func (f *file) Close() error {
	f.watchers.close()

	f.watchMu.Lock()
	defer f.watchMu.Unlock()
	if f.notifier == nil {
		return nil
	}
	err := f.notifier.Close()
	f.notifier = nil
	return err
}
