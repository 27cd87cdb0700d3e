package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/pubfs/content"
	"github.com/eringen/pubfs/markdown"
)

// fakeRefresher records every refresh scope. When gate is non-nil each
// refresh blocks until a value is received from it.
type fakeRefresher struct {
	mu     sync.Mutex
	calls  [][]string
	called chan []string
	gate   chan struct{}
	err    error
}

func newFakeRefresher() *fakeRefresher {
	return &fakeRefresher{called: make(chan []string, 16)}
}

func (f *fakeRefresher) Refresh(ctx context.Context, changed []string) (content.RefreshOutcome, error) {
	f.mu.Lock()
	f.calls = append(f.calls, changed)
	f.mu.Unlock()
	f.called <- changed
	if f.gate != nil {
		<-f.gate
	}
	return content.RefreshOutcome{Version: 1}, f.err
}

func (f *fakeRefresher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRefresher) next(t *testing.T) []string {
	t.Helper()
	select {
	case changed := <-f.called:
		return changed
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for refresh")
		return nil
	}
}

// loop runs the event loop over hand-fed channels.
func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, add func(string) error) error {
	return w.run(ctx, events, errs, newTree(add))
}

type harness struct {
	events chan fsnotify.Event
	errs   chan error
	added  chan string
	done   chan error
	cancel context.CancelFunc
}

func startLoop(t *testing.T, w *Watcher) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		events: make(chan fsnotify.Event),
		errs:   make(chan error),
		added:  make(chan string, 16),
		done:   make(chan error, 1),
		cancel: cancel,
	}
	add := func(p string) error {
		h.added <- p
		return nil
	}
	go func() { h.done <- w.loop(ctx, h.events, h.errs, add) }()
	t.Cleanup(func() {
		cancel()
		<-h.done
	})
	return h
}

func (h *harness) send(name string, op fsnotify.Op) {
	h.events <- fsnotify.Event{Name: name, Op: op}
}

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestFilters(t *testing.T) {
	testCases := []struct {
		path     string
		markdown bool
		hidden   bool
		temp     bool
	}{
		{"posts/hello.md", true, true, true},
		{"posts/hello.MARKDOWN", true, true, true},
		{"posts/hello.txt", false, true, true},
		{"posts/.hello.md", true, false, true},
		{"posts/hello.md~", false, true, false},
		{"posts/#hello.md#", false, true, false},
		{"posts/.hello.md.swp", false, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.markdown, MarkdownFilter(tc.path))
			assert.Equal(t, tc.hidden, NoHiddenFilter(tc.path))
			assert.Equal(t, tc.temp, NoTempFilter(tc.path))
		})
	}
}

func TestHiddenBelow(t *testing.T) {
	assert.False(t, hiddenBelow("/home/me/.blog", "/home/me/.blog/post.md"))
	assert.True(t, hiddenBelow("/srv/blog", "/srv/blog/.git/HEAD"))
	assert.False(t, hiddenBelow("/srv/blog", "/srv/blog"))
}

func TestDebounceCoalescesBurst(t *testing.T) {
	root := t.TempDir()
	r := newFakeRefresher()
	h := startLoop(t, New(root, r, WithDelay(30*time.Millisecond)))

	a := filepath.Join(root, "a.md")
	b := filepath.Join(root, "b.md")
	for range 5 {
		h.send(a, fsnotify.Write)
		h.send(b, fsnotify.Write)
	}

	assert.Equal(t, []string{a, b}, r.next(t))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, r.count())
}

func TestIgnoresFilteredPaths(t *testing.T) {
	root := t.TempDir()
	r := newFakeRefresher()
	h := startLoop(t, New(root, r, WithDelay(10*time.Millisecond)))

	h.send(filepath.Join(root, "notes.txt"), fsnotify.Write)
	h.send(filepath.Join(root, ".draft.md"), fsnotify.Write)
	h.send(filepath.Join(root, "post.md~"), fsnotify.Write)
	h.send(filepath.Join(root, "post.md"), fsnotify.Chmod)
	h.send(filepath.Join(root, ".git", "index"), fsnotify.Write)

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 0, r.count())
}

func TestEventsDuringBuildExtendNextScope(t *testing.T) {
	root := t.TempDir()
	r := newFakeRefresher()
	r.gate = make(chan struct{})
	h := startLoop(t, New(root, r, WithDelay(10*time.Millisecond)))

	a := filepath.Join(root, "a.md")
	b := filepath.Join(root, "b.md")
	c := filepath.Join(root, "c.md")

	h.send(a, fsnotify.Write)
	assert.Equal(t, []string{a}, r.next(t))

	// The first refresh is still running.
	h.send(b, fsnotify.Create)
	h.send(c, fsnotify.Remove)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, r.count(), "refreshes must not overlap")

	r.gate <- struct{}{}
	assert.Equal(t, []string{b, c}, r.next(t))
	r.gate <- struct{}{}
}

func TestNewDirectoryIsWatchedAndWidensScope(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "2024")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "drafts"), 0o755))

	r := newFakeRefresher()
	h := startLoop(t, New(root, r, WithDelay(10*time.Millisecond)))

	h.send(dir, fsnotify.Create)
	assert.Equal(t, dir, <-h.added)
	assert.Equal(t, filepath.Join(dir, "drafts"), <-h.added)
	assert.Nil(t, r.next(t))
}

func TestRemovedDirectoryWidensScope(t *testing.T) {
	root := t.TempDir()
	r := newFakeRefresher()
	h := startLoop(t, New(root, r, WithDelay(10*time.Millisecond)))

	h.send(filepath.Join(root, "old"), fsnotify.Remove)
	assert.Nil(t, r.next(t))
}

func TestRenamedDottedDirectoryWidensScope(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "v1.0")
	require.NoError(t, os.Mkdir(dir, 0o755))

	r := newFakeRefresher()
	h := startLoop(t, New(root, r, WithDelay(10*time.Millisecond)))

	h.send(dir, fsnotify.Create)
	assert.Equal(t, dir, <-h.added)
	assert.Nil(t, r.next(t))

	require.NoError(t, os.Rename(dir, filepath.Join(t.TempDir(), "v1.0")))
	h.send(dir, fsnotify.Rename)
	assert.Nil(t, r.next(t))
}

func TestUnknownVanishedPathWidensScope(t *testing.T) {
	root := t.TempDir()
	r := newFakeRefresher()
	h := startLoop(t, New(root, r, WithDelay(10*time.Millisecond)))

	h.send(filepath.Join(root, "series.2023"), fsnotify.Rename)
	assert.Nil(t, r.next(t))

	h.send(filepath.Join(root, "post.md~"), fsnotify.Remove)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, r.count())
}

func TestTreeForgetDropsSubdirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a.b", "c"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "a.bc"), 0o755))

	var added []string
	dirs := newTree(func(p string) error {
		added = append(added, p)
		return nil
	})
	require.NoError(t, dirs.addTree(root))
	assert.Len(t, added, 4)

	assert.True(t, dirs.forget(filepath.Join(root, "a.b")))
	assert.NotContains(t, dirs.dirs, filepath.Join(root, "a.b", "c"))
	assert.Contains(t, dirs.dirs, filepath.Join(root, "a.bc"))
	assert.False(t, dirs.forget(filepath.Join(root, "post.md")))
}

func TestEventOverflowForcesFullRescan(t *testing.T) {
	root := t.TempDir()
	r := newFakeRefresher()
	h := startLoop(t, New(root, r, WithDelay(10*time.Millisecond)))

	h.errs <- fsnotify.ErrEventOverflow
	assert.Nil(t, r.next(t))

	h.errs <- errors.New("permission denied")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, r.count())
}

func TestRefreshErrorKeepsWatching(t *testing.T) {
	root := t.TempDir()
	r := newFakeRefresher()
	r.err = errors.New("boom")
	h := startLoop(t, New(root, r, WithDelay(10*time.Millisecond)))

	h.send(filepath.Join(root, "a.md"), fsnotify.Write)
	r.next(t)
	h.errs <- errors.New("queue overflow")
	h.send(filepath.Join(root, "b.md"), fsnotify.Write)
	assert.Equal(t, []string{filepath.Join(root, "b.md")}, r.next(t))
}

func TestLoopReturnsWhenEventsClose(t *testing.T) {
	w := New(t.TempDir(), newFakeRefresher())
	events := make(chan fsnotify.Event)
	close(events)

	err := w.loop(context.Background(), events, make(chan error), func(string) error { return nil })
	assert.NoError(t, err)
}

func TestLoopWaitsForRunningBuildOnClose(t *testing.T) {
	root := t.TempDir()
	r := newFakeRefresher()
	r.gate = make(chan struct{})
	w := New(root, r, WithDelay(10*time.Millisecond))

	events := make(chan fsnotify.Event)
	done := make(chan error, 1)
	go func() {
		done <- w.loop(context.Background(), events, nil, func(string) error { return nil })
	}()

	events <- fsnotify.Event{Name: filepath.Join(root, "a.md"), Op: fsnotify.Write}
	r.next(t)
	close(events)

	select {
	case <-done:
		t.Fatal("loop returned while a refresh was running")
	case <-time.After(30 * time.Millisecond):
	}
	r.gate <- struct{}{}
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not return")
	}
}

func TestRunReloadsStore(t *testing.T) {
	root := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(body), 0o644))
	}
	write("first.md", "---\ntitle: First\ndate: 2024-01-01\n---\nHello.\n")

	store := content.NewStore(root, &content.Builder{Renderer: markdown.New()})
	_, err := store.Refresh(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1), store.Version())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(root, store, WithDelay(20*time.Millisecond)).Run(ctx) }()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	write("second.md", "---\ntitle: Second\ndate: 2024-02-01\n---\nWorld.\n")

	require.Eventually(t, func() bool {
		_, err := store.Get("second")
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)
	assert.Greater(t, store.Version(), uint64(1))
}
