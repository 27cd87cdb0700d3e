// Package watcher keeps a content store in step with its directory on disk.
//
// A Watcher runs one goroutine that consumes filesystem notifications,
// collects the touched paths into a pending scope and, once the directory
// has been quiet for the debounce delay, asks the store to refresh that
// scope. Refreshes never overlap: changes that arrive while one is running
// are folded into the next.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/eringen/pubfs/content"
)

// DefaultDelay is how long the directory must stay quiet before a refresh.
const DefaultDelay = 250 * time.Millisecond

// Refresher rebuilds content for a set of changed paths. A nil set means
// that anything may have changed. *content.Store implements it.
type Refresher interface {
	Refresh(ctx context.Context, changed []string) (content.RefreshOutcome, error)
}

// EventType is the kind of change a notification reports.
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

func eventType(op fsnotify.Op) EventType {
	switch {
	case op.Has(fsnotify.Create):
		return EventTypeCreated
	case op.Has(fsnotify.Remove):
		return EventTypeDeleted
	case op.Has(fsnotify.Rename):
		return EventTypeRenamed
	default:
		return EventTypeModified
	}
}

// Watcher drives refreshes of one content directory.
type Watcher struct {
	root      string
	refresher Refresher
	delay     time.Duration
	filters   []FileFilter
	logger    *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithLogger sets the logger used to report refreshes and watch errors.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithFilters replaces the default file filters. A path is in scope only
// when every filter accepts it.
func WithFilters(filters ...FileFilter) Option {
	return func(w *Watcher) { w.filters = filters }
}

// New returns a Watcher for root that reports changes to r.
func New(root string, r Refresher, opts ...Option) *Watcher {
	w := &Watcher{
		root:      root,
		refresher: r,
		delay:     DefaultDelay,
		filters:   []FileFilter{MarkdownFilter, NoHiddenFilter, NoTempFilter},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the content directory until ctx is cancelled or the
// notification stream closes. It returns an error only when the watch
// cannot be set up; failed refreshes are logged and the store keeps
// serving its last good snapshot.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer fsw.Close()

	dirs := newTree(fsw.Add)
	if err := dirs.addTree(w.root); err != nil {
		return fmt.Errorf("watcher: watch %s: %w", w.root, err)
	}
	w.logger.Info("watching content", zap.String("root", w.root), zap.Duration("delay", w.delay))
	return w.run(ctx, fsw.Events, fsw.Errors, dirs)
}

// tree registers directories with the notifier and remembers which paths
// are watched directories, since a removed path can no longer be stat'ed.
type tree struct {
	add  func(string) error
	dirs map[string]struct{}
}

func newTree(add func(string) error) *tree {
	return &tree{add: add, dirs: make(map[string]struct{})}
}

// addTree registers dir and every non-hidden directory below it.
func (t *tree) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if hiddenBelow(dir, path) {
			return filepath.SkipDir
		}
		if err := t.add(path); err != nil {
			return err
		}
		t.dirs[filepath.Clean(path)] = struct{}{}
		return nil
	})
}

// forget drops path and everything below it, reporting whether path was a
// watched directory.
func (t *tree) forget(path string) bool {
	path = filepath.Clean(path)
	_, known := t.dirs[path]
	prefix := path + string(filepath.Separator)
	for d := range t.dirs {
		if d == path || strings.HasPrefix(d, prefix) {
			delete(t.dirs, d)
		}
	}
	return known
}

type outcome struct {
	res content.RefreshOutcome
	err error
}

// scope accumulates the paths touched since the last refresh started.
type scope struct {
	paths map[string]struct{}
	full  bool
}

func (s *scope) empty() bool { return !s.full && len(s.paths) == 0 }

func (s *scope) add(path string) {
	if s.paths == nil {
		s.paths = make(map[string]struct{})
	}
	s.paths[path] = struct{}{}
}

// take returns the accumulated scope and resets it. A full scope is
// returned as nil.
func (s *scope) take() []string {
	var changed []string
	if !s.full {
		changed = slices.Sorted(maps.Keys(s.paths))
	}
	s.paths = nil
	s.full = false
	return changed
}

// run is the single goroutine that owns all watcher state.
func (w *Watcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, dirs *tree) error {
	var (
		pending  scope
		timer    *time.Timer
		timerC   <-chan time.Time
		building bool
		closed   bool
		done     = make(chan outcome, 1)
	)
	arm := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.NewTimer(w.delay)
		timerC = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if building {
				<-done
			}
			return nil

		case ev, ok := <-events:
			if !ok {
				w.logger.Warn("filesystem notifications closed")
				if !building {
					return nil
				}
				closed, events = true, nil
				continue
			}
			if w.collect(&pending, ev, dirs) {
				arm()
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// Notifications were dropped; only a full scan can tell what changed.
				w.logger.Warn("filesystem events lost, rescanning", zap.Error(err))
				pending.full = true
				arm()
				continue
			}
			w.logger.Error("filesystem watch error", zap.Error(err))

		case <-timerC:
			timerC = nil
			if building || pending.empty() {
				continue
			}
			changed := pending.take()
			building = true
			go func() {
				res, err := w.refresher.Refresh(ctx, changed)
				done <- outcome{res: res, err: err}
			}()

		case o := <-done:
			building = false
			w.report(o)
			if closed {
				return nil
			}
			if !pending.empty() {
				arm()
			}
		}
	}
}

// collect folds one notification into the pending scope and reports
// whether it was in scope.
func (w *Watcher) collect(pending *scope, ev fsnotify.Event, dirs *tree) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	typ := eventType(ev.Op)

	if hiddenBelow(w.root, ev.Name) {
		return false
	}

	if typ == EventTypeCreated {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := dirs.addTree(ev.Name); err != nil {
				w.logger.Warn("cannot watch new directory", zap.String("path", ev.Name), zap.Error(err))
			}
			pending.full = true
			w.logger.Debug("directory created", zap.String("path", ev.Name))
			return true
		}
	}

	gone := typ == EventTypeDeleted || typ == EventTypeRenamed

	// A removed or renamed directory takes its posts with it, and its
	// contents are no longer known.
	if gone && dirs.forget(ev.Name) {
		pending.full = true
		w.logger.Debug("directory "+typ.String(), zap.String("path", ev.Name))
		return true
	}

	for _, accept := range w.filters {
		if accept(ev.Name) {
			continue
		}
		// An unknown path that vanished may have been a directory nobody
		// saw created.
		if gone && NoTempFilter(ev.Name) {
			pending.full = true
			w.logger.Debug("unknown path "+typ.String(), zap.String("path", ev.Name))
			return true
		}
		return false
	}
	pending.add(ev.Name)
	w.logger.Debug("post "+typ.String(), zap.String("path", ev.Name))
	return true
}

func (w *Watcher) report(o outcome) {
	switch {
	case errors.Is(o.err, content.ErrRebuildDiscarded):
		w.logger.Debug("refresh superseded", zap.String("build", o.res.BuildID))
	case errors.Is(o.err, context.Canceled):
	case o.err != nil:
		w.logger.Error("content refresh failed, serving previous snapshot", zap.Error(o.err))
	default:
		w.logger.Info("content reloaded",
			zap.String("build", o.res.BuildID),
			zap.Uint64("version", o.res.Version),
			zap.Int("posts", o.res.Posts),
			zap.Int("excluded", len(o.res.Excluded)),
		)
	}
}
