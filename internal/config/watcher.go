package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultReloadDelay coalesces the burst of events an editor save produces.
const DefaultReloadDelay = 300 * time.Millisecond

// Watcher reloads the settings file when it changes and publishes valid configs.
// An invalid file is logged and the previous config stays in effect.
type Watcher struct {
	path     string
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	debounce func(f func())
	updates  chan *Config
	done     chan struct{}
	mu       sync.Mutex
	running  bool
	stopped  bool
}

// NewWatcher creates a watcher for the settings file at path.
func NewWatcher(path string, delay time.Duration, logger *zap.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultReloadDelay
	}

	return &Watcher{
		path:     path,
		logger:   logger,
		watcher:  watcher,
		debounce: debounce.New(delay),
		updates:  make(chan *Config, 1),
		done:     make(chan struct{}),
	}, nil
}

// Updates delivers each successfully reloaded config. Only the newest is kept.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Start begins watching. The directory is created if needed so a file added
// later is picked up.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.stopped {
		return nil
	}

	// Watch the directory containing the file (more reliable for editors that replace it)
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	w.running = true
	go w.watch()
	w.logger.Debug("config watcher started", zap.String("path", w.path))
	return nil
}

func (w *Watcher) watch() {
	filename := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only care about our file
			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				w.debounce(w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))

		case <-w.done:
			return
		}
	}
}

// reload publishes the file's config, or the defaults once the file is removed.
func (w *Watcher) reload() {
	config, err := LoadConfig(w.path)
	if err != nil {
		w.logger.Warn("config reload rejected, keeping previous settings", zap.Error(err))
		return
	}
	w.publish(config)
}

func (w *Watcher) publish(config *Config) {
	select {
	case <-w.done:
		return
	default:
	}

	for {
		select {
		case w.updates <- config:
			w.logger.Info("config reloaded", zap.String("path", w.path))
			return
		default:
		}
		// Replace a config the consumer has not picked up yet
		select {
		case <-w.updates:
		default:
		}
	}
}

// Stop stops the watcher. Pending debounced reloads are discarded.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	w.stopped = true
	w.running = false
	close(w.done)
	return w.watcher.Close()
}
