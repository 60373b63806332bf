package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"swap-resolver-go/infrastructure/logger"
)

// ReloadHandler receives a freshly validated config after a change.
type ReloadHandler func(cfg AppConfig) error

// WatchOptions tune the file watcher.
type WatchOptions struct {
	Enabled  bool
	Cooldown time.Duration // suppresses duplicate events from editors
}

// DefaultWatchOptions returns the watcher defaults.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Enabled:  true,
		Cooldown: 5 * time.Second,
	}
}

// Watcher reloads the config file on change and hands the result to a
// handler. Invalid configs are logged and dropped; the running config
// is never replaced with a broken one.
type Watcher struct {
	opts       WatchOptions
	path       string
	watcher    *fsnotify.Watcher
	handler    ReloadHandler
	log        *logger.Logger
	lastReload time.Time
	mu         sync.Mutex
	stopChan   chan struct{}
	doneChan   chan struct{}
}

// NewWatcher creates a watcher for path. handler is invoked with each
// successfully reloaded config.
func NewWatcher(path string, opts WatchOptions, handler ReloadHandler, log *logger.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Watcher{
		opts:     opts,
		path:     path,
		watcher:  fw,
		handler:  handler,
		log:      log,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}, nil
}

// Start begins watching. No-op when disabled.
func (w *Watcher) Start() error {
	if !w.opts.Enabled {
		return nil
	}
	if err := w.watcher.Add(w.path); err != nil {
		return fmt.Errorf("watch config file: %w", err)
	}
	go w.watch()
	return nil
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() error {
	if !w.opts.Enabled {
		return w.watcher.Close()
	}

	select {
	case <-w.stopChan:
	default:
		close(w.stopChan)
	}

	select {
	case <-w.doneChan:
	case <-time.After(1 * time.Second):
	}

	return w.watcher.Close()
}

func (w *Watcher) watch() {
	defer close(w.doneChan)

	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {
				w.handleChange()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleChange() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if time.Since(w.lastReload) < w.opts.Cooldown {
		return
	}

	cfg, err := LoadWithEnvOverrides(w.path)
	if err != nil {
		w.log.Warn("config reload rejected", zap.Error(err))
		return
	}
	if w.handler != nil {
		if err := w.handler(cfg); err != nil {
			w.log.Warn("config reload failed to apply", zap.Error(err))
			return
		}
	}

	w.lastReload = time.Now()
	w.log.Info("config reloaded", zap.String("path", w.path))
}

// LastReload reports when the config was last applied.
func (w *Watcher) LastReload() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastReload
}
