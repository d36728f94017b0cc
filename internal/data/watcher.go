package data

import (
	"context"
	"fmt"
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates a catalog whenever the data directory changes
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func(name string)
}

// NewWatcher starts watching dir. onChange is called with the affected file name.
func NewWatcher(dir string, onChange func(name string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return &Watcher{fsw: fsw, onChange: onChange}, nil
}

// Run delivers change notifications until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.onChange(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
