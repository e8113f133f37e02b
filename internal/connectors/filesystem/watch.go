package filesystem

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/medibot/internal/core/domain"
	"github.com/custodia-labs/medibot/internal/logger"
)

// DefaultDebounce is how long a path must stay quiet before its change is
// reported. Editors and copy tools emit bursts of events per save.
const DefaultDebounce = 500 * time.Millisecond

// fileChange is a debounced change to one path.
type fileChange struct {
	path string
	typ  domain.ChangeType
}

// watchLoop coalesces fsnotify events per path and calls emit once the path
// has been quiet for delay. It returns when ctx is done or the watcher's
// channels close.
func watchLoop(ctx context.Context, fsw *fsnotify.Watcher, delay time.Duration,
	accept func(path string) bool, emit func(fileChange) bool) {
	pending := make(map[string]fsnotify.Op)
	var timer *time.Timer

	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(delay)
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(delay)
	}
	timerC := func() <-chan time.Time {
		if timer == nil {
			return nil
		}
		return timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !isHidden(ev.Name) {
					_ = addRecursive(fsw, ev.Name)
					continue
				}
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if isHidden(ev.Name) || !accept(ev.Name) {
				continue
			}
			pending[ev.Name] |= ev.Op
			resetTimer()

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher: %v", err)

		case <-timerC():
			timer = nil
			for path, op := range pending {
				delete(pending, path)
				if !emit(classify(path, op)) {
					return
				}
			}
		}
	}
}

// classify turns accumulated ops into a change. The file's presence on disk
// decides between deletion and creation or update.
func classify(path string, op fsnotify.Op) fileChange {
	info, err := os.Stat(path)
	switch {
	case err != nil || info.IsDir():
		return fileChange{path: path, typ: domain.ChangeDeleted}
	case op.Has(fsnotify.Create):
		return fileChange{path: path, typ: domain.ChangeCreated}
	default:
		return fileChange{path: path, typ: domain.ChangeUpdated}
	}
}

// addRecursive watches root and every non-hidden directory below it.
func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// isHidden reports whether the base name starts with a dot.
func isHidden(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
