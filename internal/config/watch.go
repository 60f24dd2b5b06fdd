package config

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watcher reloads bannedSnippets and metaLineStarters from the config
// file on disk edits, without restarting the engine (spec.md §6 names
// both as the only fields extensible via configuration). Grounded on
// internal/agents/watch/agent.go's fsnotify.NewWatcher + event-loop
// idiom.
type Watcher struct {
	v       *viper.Viper
	watcher *fsnotify.Watcher

	mu     sync.RWMutex
	latest EngineConfig

	done chan struct{}
}

// NewWatcher wraps v (built via New with a non-empty configPath) in an
// fsnotify watch on its config file, keeping the current EngineConfig
// snapshot up to date as the file changes. v must already have read its
// config file once via ReadInConfig.
func NewWatcher(v *viper.Viper) (*Watcher, error) {
	path := v.ConfigFileUsed()
	if path == "" {
		return nil, fmt.Errorf("config: watcher requires a config file, none loaded")
	}
	cfg, err := Load(v)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create fsnotify watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	w := &Watcher{v: v, watcher: fw, latest: cfg, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config: watch error", "error", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	if err := w.v.ReadInConfig(); err != nil {
		slog.Warn("config: reload failed, keeping previous configuration", "error", err)
		return
	}
	cfg, err := Load(w.v)
	if err != nil {
		slog.Warn("config: reloaded configuration failed validation, keeping previous configuration", "error", err)
		return
	}
	w.mu.Lock()
	w.latest = cfg
	w.mu.Unlock()
}

// Snapshot returns the most recently loaded, validated EngineConfig.
func (w *Watcher) Snapshot() EngineConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}

// Close stops the watch loop and releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
