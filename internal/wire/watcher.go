package wire

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDepth covers <root>/<library>/prompts.
const watchDepth = 2

// Watcher triggers a reload after filesystem activity under the data
// directory settles for the debounce interval. Bursts of events produce one
// reload.
type Watcher struct {
	fs       *fsnotify.Watcher
	root     string
	debounce time.Duration
	reload   func(context.Context)

	// anchor is the nearest existing ancestor watched while root is missing.
	// It is "" once root itself is watched.
	anchor string
}

// NewWatcher watches root and its subdirectories down to watchDepth. A root
// that does not exist yet is not an error: its nearest existing ancestor is
// watched instead, and root is picked up when it is created.
func NewWatcher(root string, debounce time.Duration, reload func(context.Context)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{fs: fw, root: filepath.Clean(root), debounce: debounce, reload: reload}

	if err := w.attach(); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx ends. Reloads run on this goroutine, so at most one
// is in flight.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.anchor != "" {
				if !ev.Has(fsnotify.Create) || !onPathTo(ev.Name, w.root) {
					continue
				}
				if err := w.attach(); err != nil {
					slog.WarnContext(ctx, "watcher: follow data directory failed", "path", ev.Name, "error", err)
				}
				if w.anchor != "" {
					continue
				}
				slog.InfoContext(ctx, "watcher: data directory appeared", "path", w.root)
			} else if !relevant(ev) {
				continue
			} else if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						slog.WarnContext(ctx, "watcher: watch new directory failed", "path", ev.Name, "error", err)
					}
				}
			}
			slog.DebugContext(ctx, "watcher: change", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			slog.InfoContext(ctx, "watcher: reloading after change")
			w.reload(ctx)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "watcher: fsnotify error", "error", err)
		}
	}
}

// WatchList returns the directories currently watched.
func (w *Watcher) WatchList() []string {
	return w.fs.WatchList()
}

// attach watches root when it exists, otherwise its nearest existing
// ancestor.
func (w *Watcher) attach() error {
	if info, err := os.Stat(w.root); err == nil && info.IsDir() {
		if w.anchor != "" {
			_ = w.fs.Remove(w.anchor)
			w.anchor = ""
		}
		return w.addTree(w.root)
	}

	dir := filepath.Dir(w.root)
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
	if dir == w.anchor {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if w.anchor != "" {
		_ = w.fs.Remove(w.anchor)
	}
	w.anchor = dir
	return nil
}

// onPathTo reports whether path is root or one of its ancestors.
func onPathTo(path, root string) bool {
	rel, err := filepath.Rel(path, root)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Watcher) addTree(dir string) error {
	rel, err := filepath.Rel(w.root, dir)
	if err != nil {
		return err
	}
	base := depth(rel)
	if base > watchDepth {
		return nil
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		r, _ := filepath.Rel(w.root, path)
		if depth(r) > watchDepth {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func depth(rel string) int {
	if rel == "." {
		return 0
	}
	n := 1
	for _, c := range rel {
		if c == filepath.Separator {
			n++
		}
	}
	return n
}

// relevant drops permission-only changes and editor scratch files.
func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	switch filepath.Ext(ev.Name) {
	case ".md", ".toml", "":
		return true
	default:
		return false
	}
}
