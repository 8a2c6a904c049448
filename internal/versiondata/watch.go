package versiondata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports changes made on disk to the document at path after it was loaded.
//
// The document is never reloaded: a notification only means that the served data no longer
// matches the file. It returns a channel of changes, coalesced when the reader is slow, and a
// channel of unrecoverable watcher errors. Both are closed once ctx is done.
func Watch(ctx context.Context, path string) (changes <-chan struct{}, errs <-chan error, err error) {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create watcher: %v", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return nil, nil, errors.Join(fmt.Errorf("failed to add directory %s to watcher: %v", dir, err), watcher.Close())
	}

	slog.Info("Watching version document", "path", path)
	changesCh := make(chan struct{}, 1)
	errorsCh := make(chan error, 1)

	go func() {
		defer close(changesCh)
		defer close(errorsCh)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				slog.Debug("Version document watcher stopped")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					errorsCh <- errors.New("watcher events channel closed unexpectedly")
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
					!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
					continue
				}

				slog.Debug("Version document changed on disk", "op", event.Op.String())
				select {
				case changesCh <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					errorsCh <- errors.New("watcher errors channel closed unexpectedly")
					return
				}
				slog.Warn("Version document watcher error", "err", err)
			}
		}
	}()

	return changesCh, errorsCh, nil
}
