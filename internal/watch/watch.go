package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is used when Watcher.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

var skipDirs = map[string]bool{
	".git": true,
	".hg":  true,
	".svn": true,
}

// Watcher observes a directory tree.
type Watcher struct {
	Dir      string
	Debounce time.Duration
	Log      logrus.FieldLogger

	onReady func() // test hook, called once watches are registered
}

// New returns a Watcher for dir.
func New(dir string, debounce time.Duration, log logrus.FieldLogger) *Watcher {
	return &Watcher{Dir: dir, Debounce: debounce, Log: log}
}

// Run blocks until ctx is done, calling fn once per burst of changes.
// Errors from fn are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	log := w.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	// WalkDir does not descend into a symlinked root.
	root, err := filepath.EvalSymlinks(w.Dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", w.Dir, err)
	}
	if err := addTree(fw, root); err != nil {
		return err
	}
	log.WithField("dir", w.Dir).Info("watching for changes")
	if w.onReady != nil {
		w.onReady()
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if skipDirs[filepath.Base(event.Name)] || event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(fw, event.Name); err != nil {
						log.WithError(err).Warn("watching new directory")
					}
				}
			}
			log.WithFields(logrus.Fields{"file": event.Name, "op": event.Op.String()}).Debug("change detected")
			timer.Reset(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")

		case <-timer.C:
			if err := fn(ctx); err != nil {
				log.WithError(err).Error("re-render failed")
			}
		}
	}
}

// addTree registers root and every directory below it, skipping VCS
// metadata.
func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}
