// Package watch follows the corpus directory and reports document changes.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before OnSettle fires.
const DefaultDebounce = 300 * time.Millisecond

// Change kinds.
const (
	Created = "created"
	Updated = "updated"
	Deleted = "deleted"
)

// Change is one document event. Path is slash-separated and relative to the
// corpus root; Lang is the partition ("" for the root).
type Change struct {
	Kind string
	Path string
	Lang string
}

// Options configures Watch.
type Options struct {
	// Ext is the document extension, e.g. ".md".
	Ext string
	// Debounce is the quiet period after the last change before OnSettle.
	Debounce time.Duration
	// OnChange is called for every document event.
	OnChange func(Change)
	// OnSettle is called once a burst of changes has gone quiet.
	OnSettle func()
}

// Watch watches root and its direct sub-directories until ctx is cancelled.
// Partition directories created at runtime are added on the fly and the
// documents already inside them are reported as created.
func Watch(ctx context.Context, root string, opts Options, logger *slog.Logger) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root, err = filepath.Abs(root)
	if err != nil {
		return err
	}
	if err := addPartitions(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	var settleTimer *time.Timer
	var settleCh <-chan time.Time
	scheduleSettle := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(opts.Debounce)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(opts.Debounce)
		}
	}

	emit := func(c Change) {
		logger.Debug("watcher: change", slog.String("path", c.Path), slog.String("op", c.Kind))
		if opts.OnChange != nil {
			opts.OnChange(c)
		}
		scheduleSettle()
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-settleCh:
			if opts.OnSettle != nil {
				opts.OnSettle()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			rel, err := filepath.Rel(root, ev.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			if ev.Op&fsnotify.Create != 0 && isPartitionDir(rel) {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := w.Add(ev.Name); addErr != nil {
						logger.Warn("watcher: add partition failed",
							slog.String("path", rel),
							slog.String("error", addErr.Error()))
						continue
					}
					logger.Debug("watcher: watching partition", slog.String("path", rel))
					for _, c := range existingDocs(root, rel, opts.Ext) {
						emit(c)
					}
					continue
				}
			}

			lang, ok := documentPartition(rel, opts.Ext)
			if !ok {
				continue
			}
			change := Change{Path: rel, Lang: lang}
			switch {
			case ev.Op&fsnotify.Create != 0:
				change.Kind = Created
			case ev.Op&fsnotify.Write != 0:
				change.Kind = Updated
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path; the new one arrives as Create.
				change.Kind = Deleted
			default:
				continue
			}
			emit(change)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// isPartitionDir reports whether rel names a direct child of the root.
func isPartitionDir(rel string) bool {
	return rel != "." && !strings.Contains(rel, "/") && !strings.HasPrefix(rel, ".")
}

// documentPartition reports the partition of a document path. Files nested
// deeper than one directory, hidden files and other extensions are not
// documents.
func documentPartition(rel, ext string) (string, bool) {
	dir, name := "", rel
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		dir, name = rel[:i], rel[i+1:]
	}
	if strings.Contains(name, "/") || strings.HasPrefix(name, ".") || strings.HasPrefix(dir, ".") {
		return "", false
	}
	if !strings.HasSuffix(name, ext) {
		return "", false
	}
	return dir, true
}

func existingDocs(root, dir, ext string) []Change {
	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(dir)))
	if err != nil {
		return nil
	}
	var out []Change
	for _, e := range entries {
		rel := dir + "/" + e.Name()
		if e.IsDir() {
			continue
		}
		if lang, ok := documentPartition(rel, ext); ok {
			out = append(out, Change{Kind: Created, Path: rel, Lang: lang})
		}
	}
	return out
}

// addPartitions adds root and its visible direct sub-directories.
func addPartitions(w *fsnotify.Watcher, root string) error {
	if err := w.Add(root); err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			if err := w.Add(filepath.Join(root, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}
