// Package watch reports changes made to a file-system document root,
// including ones made outside lotpad.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/lotpad/internal/storage"
)

const reconcileDelay = 200 * time.Millisecond

// Callback is called after a change to a document under the root.
// kind is one of "created", "updated", "deleted"; name is slash-separated
// and relative to the root.
type Callback func(kind, name string)

// Run watches root until ctx is cancelled. Sub-directories created at
// runtime are added to the watch list. Renames report "deleted" for the old
// name and schedule a short reconciliation walk that reports whatever
// appeared or vanished meanwhile.
func Run(ctx context.Context, root string, logger *slog.Logger, cb Callback) error {
	if cb == nil {
		cb = func(string, string) {}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	known, err := scan(root)
	if err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(root, known, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if storage.Hidden(filepath.Base(ev.Name)) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					// Files may land in the directory before it is watched.
					scheduleReconcile()
					continue
				}
			}

			name, ok := relName(root, ev.Name)
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind := "updated"
				if _, seen := known[name]; !seen {
					kind = "created"
					known[name] = struct{}{}
				}
				logger.Debug("watcher: changed", slog.String("name", name), slog.String("op", kind))
				cb(kind, name)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				_, seen := known[name]
				if seen {
					delete(known, name)
					logger.Debug("watcher: deleted", slog.String("name", name))
					cb("deleted", name)
				}
				// Unknown names are usually directories; the walk finds
				// whatever went with them.
				if !seen || ev.Op&fsnotify.Rename != 0 {
					scheduleReconcile()
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile compares the known set against disk and reports the difference.
func reconcile(root string, known map[string]struct{}, logger *slog.Logger, cb Callback) {
	disk, err := scan(root)
	if err != nil {
		logger.Warn("reconcile: scan failed", slog.String("error", err.Error()))
		return
	}
	for name := range known {
		if _, ok := disk[name]; !ok {
			delete(known, name)
			cb("deleted", name)
		}
	}
	for name := range disk {
		if _, ok := known[name]; !ok {
			known[name] = struct{}{}
			cb("created", name)
		}
	}
}

// scan returns the names of all visible files under root.
func scan(root string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != root && storage.Hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if name, ok := relName(root, p); ok {
			out[name] = struct{}{}
		}
		return nil
	})
	return out, err
}

func relName(root, p string) (string, bool) {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// addDirsRecursive adds root and all its visible subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && storage.Hidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
