package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/minbar/pkg/core"
	"github.com/aretw0/minbar/pkg/git"
)

// Watch streams changes to the site's files until ctx is done, then closes
// the channel. Git internals, the lock file and in-flight temp files are
// ignored.
func (r *Repository) Watch(ctx context.Context, site core.SiteRef) (<-chan core.Event, error) {
	dir, err := r.existingSite(site)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := addRecursive(watcher, dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	events := make(chan core.Event)
	w := &siteWatcher{repo: r, site: site, dir: dir, watcher: watcher, events: events}

	r.setWatching(+1)
	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		r.reportError(fmt.Errorf("watcher for %s: %w", site, err))
	}))
	return events, nil
}

type siteWatcher struct {
	repo    *Repository
	site    core.SiteRef
	dir     string
	watcher *fsnotify.Watcher
	events  chan<- core.Event
}

func (w *siteWatcher) run(ctx context.Context) error {
	defer w.repo.setWatching(-1)
	defer close(w.events)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if e, ok := w.translate(event); ok {
				select {
				case w.events <- e:
					w.repo.recordEvent(e.Timestamp)
				case <-ctx.Done():
					return nil
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.repo.reportError(fmt.Errorf("fsnotify: %w", err))
		}
	}
}

// translate maps a raw notification to a site event. New directories are
// added to the watch set.
func (w *siteWatcher) translate(event fsnotify.Event) (core.Event, bool) {
	rel, err := filepath.Rel(w.dir, event.Name)
	if err != nil || ignored(rel) {
		return core.Event{}, false
	}

	var t core.EventType
	switch {
	case event.Has(fsnotify.Create):
		t = core.EventCreate
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addRecursive(w.watcher, event.Name); err != nil {
				w.repo.reportError(err)
			}
			return core.Event{}, false
		}
	case event.Has(fsnotify.Write):
		t = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		t = core.EventDelete
	default:
		return core.Event{}, false
	}

	return core.Event{
		Type:      t,
		Site:      w.site,
		Path:      filepath.ToSlash(rel),
		Timestamp: time.Now(),
	}, true
}

func ignored(rel string) bool {
	base := filepath.Base(rel)
	if base == git.LockFile || isTempFile(base) {
		return true
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first == ".git"
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (r *Repository) reportError(err error) {
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
		return
	}
	r.config.Logger.Error("watch error", "error", err)
}

func (r *Repository) setWatching(delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeWatchers += delta
}

func (r *Repository) recordEvent(at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastEvent = &at
}
