package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/coursebook/internal/models"
)

// ReloadFunc loads a fresh corpus snapshot.
type ReloadFunc func() (*models.Corpus, error)

// EventCallback is called after a watcher-driven reload and index sync with
// the new corpus and the root-relative paths that changed since the last one.
type EventCallback func(c *models.Corpus, changed []string)

// Debounce is how long the watcher waits for the file system to settle
// before reloading.
var Debounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the corpus root and reloads the corpus
// whenever files change, until ctx is cancelled. Bursts of events are
// coalesced into one reload. After each reload the index is synced and cb
// (if non-nil) is called.
//
// New directories created at runtime are automatically added to the watch
// list. Hidden entries and atomic-write temp files are ignored.
func Watch(ctx context.Context, db ModuleIndex, root string, reload ReloadFunc, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		pending = make(map[string]struct{})
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(Debounce)
			timerCh = timer.C
		} else {
			timer.Reset(Debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			applyReload(db, reload, logger, cb, changed)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil || ignored(rel) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending[filepath.ToSlash(rel)] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func applyReload(db ModuleIndex, reload ReloadFunc, logger *slog.Logger, cb EventCallback, changed []string) {
	c, err := reload()
	if err != nil {
		logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
		return
	}
	if db != nil {
		if err := Sync(db, c, logger); err != nil {
			logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
		}
	}
	logger.Debug("watcher: reloaded", slog.Int("changed", len(changed)))
	if cb != nil {
		cb(c, changed)
	}
}

// ignored reports whether any element of a root-relative path is hidden,
// which covers VCS metadata, editor swap files and atomic-write temp files.
func ignored(rel string) bool {
	if rel == "." {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, "~") {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
