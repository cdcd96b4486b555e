package engine

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// SignalWatcher watches a signals directory for an operator stop file.
// The engine polls ShouldStop between graph steps only; a running agent
// is never interrupted mid-execution.
type SignalWatcher struct {
	signalsDir string

	mu         sync.RWMutex
	stopSignal bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewSignalWatcher creates a watcher over the given directory. The
// directory is created if missing; an empty directory disables the
// watcher entirely (the returned nil is safe to use). If the fsnotify
// watcher cannot be started the watcher degrades to stat-based polling
// in ShouldStop.
func NewSignalWatcher(signalsDir string) (*SignalWatcher, error) {
	if signalsDir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	sw := &SignalWatcher{
		signalsDir: signalsDir,
		done:       make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return sw, nil
	}
	if err := watcher.Add(signalsDir); err != nil {
		watcher.Close()
		return sw, nil
	}
	sw.watcher = watcher

	go sw.watch()
	return sw, nil
}

func (sw *SignalWatcher) watch() {
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == "stop" && (event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				sw.mu.Lock()
				sw.stopSignal = true
				sw.mu.Unlock()
			}
		case <-sw.watcher.Errors:
			// Ignore errors, keep watching
		}
	}
}

// ShouldStop reports whether a stop signal has been received. It also
// stats the stop file directly in case the watcher missed the event.
func (sw *SignalWatcher) ShouldStop() bool {
	if sw == nil {
		return false
	}

	stopPath := filepath.Join(sw.signalsDir, "stop")
	if _, err := os.Stat(stopPath); err == nil {
		sw.mu.Lock()
		sw.stopSignal = true
		sw.mu.Unlock()
	}

	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.stopSignal
}

// ClearStop removes the stop file so the next turn starts clean.
func (sw *SignalWatcher) ClearStop() {
	if sw == nil {
		return
	}
	os.Remove(filepath.Join(sw.signalsDir, "stop"))
	sw.mu.Lock()
	sw.stopSignal = false
	sw.mu.Unlock()
}

// Close stops the background watcher.
func (sw *SignalWatcher) Close() {
	if sw == nil {
		return
	}
	close(sw.done)
	if sw.watcher != nil {
		sw.watcher.Close()
	}
}
