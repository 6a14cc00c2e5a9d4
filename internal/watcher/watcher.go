package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

type implWatcher struct {
	inboxDir    string
	handler     EventHandler
	logger      logger.Logger
	watcher     *fsnotify.Watcher
	settleDelay time.Duration
}

// Start handles the manifests already waiting in the inbox, then every new
// one until ctx is done.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Inbox watcher started. Monitoring: %s", w.inboxDir)
	w.logger.Info(ctx, "Supported formats: .yaml, .yml")

	if err := w.handleExisting(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Inbox watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			// Files moved into the inbox are reported as CREATE too.
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isManifest(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-manifest file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New manifest detected: %s", event.Name)
			// Small delay to ensure file is fully written
			select {
			case <-time.After(w.settleDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			w.handle(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) handleExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.inboxDir)
	if err != nil {
		return fmt.Errorf("read inbox: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && isManifest(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		w.handle(ctx, filepath.Join(w.inboxDir, name))
	}
	return nil
}

func (w *implWatcher) handle(ctx context.Context, path string) {
	if err := w.handler(ctx, path); err != nil {
		w.logger.Error(ctx, "Failed to handle %s: %v", path, err)
	}
}

func isManifest(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
