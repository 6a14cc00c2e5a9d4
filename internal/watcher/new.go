package watcher

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

// New creates a Watcher on inboxDir. Manifests already in the inbox are
// handled when Start runs.
func New(inboxDir string, handler EventHandler, log logger.Logger) (Watcher, error) {
	if err := os.MkdirAll(inboxDir, 0755); err != nil {
		return nil, fmt.Errorf("create inbox: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inboxDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &implWatcher{
		inboxDir:    inboxDir,
		handler:     handler,
		logger:      log.With(map[string]interface{}{logger.FieldComponent: "watcher"}),
		watcher:     watcher,
		settleDelay: 500 * time.Millisecond,
	}, nil
}
