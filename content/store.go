package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State describes what the store is currently serving.
type State int

const (
	// StateEmpty means no build has been installed yet.
	StateEmpty State = iota
	// StateReady means the last installed build excluded nothing.
	StateReady
	// StateDegraded means the last installed build excluded one or more sources.
	StateDegraded
)

// String returns the string representation of the State
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Health summarizes the installed snapshot for diagnostics.
type Health struct {
	State      State       `json:"state"`
	Version    uint64      `json:"version"`
	Posts      int         `json:"posts"`
	ErrorCount int         `json:"error_count"`
	Errors     []Exclusion `json:"-"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// RefreshOutcome reports what a Refresh call did.
type RefreshOutcome struct {
	BuildID   string
	Version   uint64
	Excluded  []Exclusion
	Posts     int
	Reused    int
	Rendered  int
	Discarded bool
	Duration  time.Duration
}

type snapshot struct {
	index     *Index
	ticket    uint64
	installed time.Time
}

// Store owns the current Index. Reads load the installed snapshot with a
// single atomic operation and never block; Refresh builds a replacement
// off to the side and swaps it in.
type Store struct {
	root    string
	epoch   string
	builder *Builder
	logger  *zap.Logger
	workers int

	current atomic.Pointer[snapshot]
	tickets atomic.Uint64
	mu      sync.Mutex // serializes installs
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for refresh reports.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// WithWorkers bounds the number of posts built concurrently.
func WithWorkers(n int) StoreOption {
	return func(s *Store) {
		s.workers = n
	}
}

// NewStore creates an empty Store for the content directory root.
func NewStore(root string, b *Builder, opts ...StoreOption) *Store {
	s := &Store{
		root:    filepath.Clean(root),
		epoch:   strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		builder: b,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the content directory.
func (s *Store) Root() string { return s.root }

// Epoch returns the random identifier stamped on every Index this Store
// installs.
func (s *Store) Epoch() string { return s.epoch }

// Refresh rescans the content directory and installs a new Index. changed
// lists source paths known to have changed since the last build; a nil set
// forces every source to be re-read. Sources outside the set whose
// modification time and size are unchanged are carried over as-is.
//
// If a Refresh that started later has already installed its result, this
// one is dropped and ErrRebuildDiscarded is returned.
func (s *Store) Refresh(ctx context.Context, changed []string) (RefreshOutcome, error) {
	start := time.Now()
	ticket := s.tickets.Add(1)
	out := RefreshOutcome{BuildID: uuid.NewString()}
	log := s.logger.With(zap.String("build_id", out.BuildID))

	var prev *Index
	if snap := s.current.Load(); snap != nil {
		prev = snap.index
	}

	paths, err := Scan(s.root)
	if err != nil {
		return out, fmt.Errorf("scan %s: %w", s.root, err)
	}

	var changedSet map[string]struct{}
	if changed != nil {
		changedSet = make(map[string]struct{}, len(changed))
		for _, p := range changed {
			changedSet[filepath.Clean(p)] = struct{}{}
		}
	}
	byPath := make(map[string]*Post)
	if prev != nil {
		for _, p := range prev.all {
			byPath[p.Path] = p
		}
	}

	jobs := make([]buildJob, 0, len(paths))
	for _, path := range paths {
		job := buildJob{path: path, prev: byPath[path], changed: true}
		if changedSet != nil {
			_, job.changed = changedSet[path]
		}
		if job.prev != nil && !job.changed {
			if info, err := os.Stat(path); err == nil {
				job.info = info
			} else {
				job.changed = true
			}
		}
		jobs = append(jobs, job)
	}

	results := s.builder.buildAll(ctx, jobs, s.workers)
	if err := ctx.Err(); err != nil {
		return out, err
	}
	for _, r := range results {
		switch {
		case r.Reused:
			out.Reused++
		case r.Built():
			out.Rendered++
		}
	}
	idx := BuildIndex(0, results)

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if cur != nil && cur.ticket > ticket {
		out.Discarded = true
		out.Version = cur.index.version
		log.Debug("stale rebuild discarded",
			zap.Uint64("ticket", ticket),
			zap.Uint64("installed_ticket", cur.ticket))
		return out, ErrRebuildDiscarded
	}

	idx.version = 1
	idx.epoch = s.epoch
	if cur != nil {
		idx.version = cur.index.version + 1
	}
	s.current.Store(&snapshot{index: idx, ticket: ticket, installed: time.Now()})

	out.Version = idx.version
	out.Excluded = idx.excluded
	out.Posts = idx.Len()
	out.Duration = time.Since(start)

	for _, x := range idx.excluded {
		log.Warn("post excluded", zap.String("path", x.Path), zap.Error(x.Err))
	}
	log.Info("content refreshed",
		zap.Uint64("version", out.Version),
		zap.Int("posts", out.Posts),
		zap.Int("excluded", len(out.Excluded)),
		zap.Int("reused", out.Reused),
		zap.Int("rendered", out.Rendered),
		zap.Duration("took", out.Duration))
	return out, nil
}

// Snapshot returns the installed Index. Callers that need several reads to
// agree with each other should read from one snapshot.
func (s *Store) Snapshot() (*Index, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotYetInitialized
	}
	return snap.index, nil
}

// Get returns the post with slug, drafts included.
func (s *Store) Get(slug string) (*Post, error) {
	idx, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	p, ok := idx.Get(slug)
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// ListPublished returns one page of published posts, newest first.
func (s *Store) ListPublished(page, limit int) (Page, error) {
	idx, err := s.Snapshot()
	if err != nil {
		return Page{}, err
	}
	return idx.Paginate(page, limit), nil
}

// ListByTag returns published posts carrying tag, newest first.
func (s *Store) ListByTag(tag string) ([]PostSummary, error) {
	idx, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return summarize(idx.Tagged(tag)), nil
}

// Tags returns every tag used by a published post.
func (s *Store) Tags() ([]string, error) {
	idx, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return idx.Tags(), nil
}

// Version returns the installed index version, or 0 before the first build.
func (s *Store) Version() uint64 {
	if snap := s.current.Load(); snap != nil {
		return snap.index.version
	}
	return 0
}

// Health reports the store state and the sources excluded by the last build.
func (s *Store) Health() Health {
	snap := s.current.Load()
	if snap == nil {
		return Health{State: StateEmpty}
	}
	h := Health{
		State:      StateReady,
		Version:    snap.index.version,
		Posts:      snap.index.Len(),
		ErrorCount: len(snap.index.excluded),
		Errors:     snap.index.excluded,
		UpdatedAt:  snap.installed,
	}
	if h.ErrorCount > 0 {
		h.State = StateDegraded
	}
	return h
}
