// Package filesystem provides connectors for local medical files: every PDF
// under a data directory and every row of a CSV file. Both can watch their
// files with fsnotify and report debounced changes.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

// base carries the close and watch bookkeeping shared by the connectors.
type base struct {
	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
	debounce time.Duration
}

// startWatch watches dir (recursively when recursive is set) and runs the
// debounced loop until ctx is done. handle converts one file change into
// zero or more document changes.
func (b *base) startWatch(ctx context.Context, dir string, recursive bool,
	accept func(string) bool, handle func(fileChange) []domain.RawDocumentChange) (<-chan domain.RawDocumentChange, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, domain.ErrConnectorClosed
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if recursive {
		err = addRecursive(fsw, dir)
	} else {
		err = fsw.Add(dir)
	}
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	b.watchers = append(b.watchers, fsw)

	delay := b.debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}

	out := make(chan domain.RawDocumentChange, 16)
	go func() {
		defer close(out)
		defer fsw.Close()
		watchLoop(ctx, fsw, delay, accept, func(fc fileChange) bool {
			for _, change := range handle(fc) {
				select {
				case out <- change:
				case <-ctx.Done():
					return false
				}
			}
			return true
		})
	}()
	return out, nil
}

func (b *base) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Close stops all watchers. It is idempotent.
func (b *base) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, w := range b.watchers {
		w.Close()
	}
	b.watchers = nil
	return nil
}

func checkDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", path)
	}
	return nil
}
