// Package hotreload owns the installed content snapshot and the triggers that
// replace it: file changes, poll ticks and explicit reload requests.
package hotreload

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/metrics"
	"git.home.luguber.info/inful/docserve/internal/snapshot"
)

// BuildFunc builds a snapshot of generation gen.
type BuildFunc func(ctx context.Context, gen uint64) (*snapshot.Snapshot, error)

// Cache holds the current snapshot behind an atomic pointer. Reloads are serialized;
// readers never block.
type Cache struct {
	build    BuildFunc
	logger   *slog.Logger
	recorder metrics.Recorder

	mu         sync.Mutex
	generation uint64
	current    atomic.Pointer[snapshot.Snapshot]
	status     reloadStatus
	listeners  []func(*snapshot.Snapshot)
}

// reloadStatus tracks the outcome of the last reload for error display.
type reloadStatus struct {
	mu         sync.RWMutex
	lastError  error
	lastReload time.Time
	reloads    uint64
}

func (rs *reloadStatus) set(err error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.lastError = err
	rs.lastReload = time.Now()
	rs.reloads++
}

// Status describes the cache for the status endpoint.
type Status struct {
	Healthy    bool      `json:"healthy"`
	Error      string    `json:"error,omitempty"`
	Generation uint64    `json:"generation"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
	LoadedAt   time.Time `json:"loaded_at,omitzero"`
	LastReload time.Time `json:"last_reload,omitzero"`
	Reloads    uint64    `json:"reloads"`
	Entities   int       `json:"entities"`
	Posts      int       `json:"posts"`
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(c *Cache) { c.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(c *Cache) { c.recorder = r } }

// WithBuildFunc replaces the snapshot builder.
func WithBuildFunc(fn BuildFunc) Option { return func(c *Cache) { c.build = fn } }

// NewCache returns an empty cache serving websiteDir. Call Reload before use.
func NewCache(websiteDir string, opts ...Option) *Cache {
	c := &Cache{logger: slog.Default(), recorder: metrics.NoopRecorder{}}
	for _, o := range opts {
		o(c)
	}
	if c.build == nil {
		c.build = func(ctx context.Context, gen uint64) (*snapshot.Snapshot, error) {
			return snapshot.Build(ctx, websiteDir, gen, c.logger)
		}
	}
	return c
}

// Current returns the installed snapshot, or nil before the first successful reload.
func (c *Cache) Current() *snapshot.Snapshot {
	return c.current.Load()
}

// LastError returns the error of the most recent reload, nil when it succeeded.
func (c *Cache) LastError() error {
	c.status.mu.RLock()
	defer c.status.mu.RUnlock()
	return c.status.lastError
}

// OnSwap registers fn to run after every successful reload.
func (c *Cache) OnSwap(fn func(*snapshot.Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Reload rebuilds all derived metadata and installs it as a new generation. On failure
// the previous snapshot stays installed and the error is recorded and returned.
func (c *Cache) Reload(ctx context.Context, trigger string) error {
	c.mu.Lock()
	start := time.Now()
	gen := c.generation + 1
	snap, err := c.build(ctx, gen)
	elapsed := time.Since(start)
	if err != nil {
		c.status.set(err)
		c.mu.Unlock()
		c.recorder.ObserveReloadDuration(elapsed, metrics.OutcomeFailed)
		c.logger.Warn("Reload failed; keeping previous snapshot",
			logfields.Trigger(trigger),
			logfields.Duration(elapsed),
			logfields.Error(err))
		return err
	}
	c.generation = gen
	c.current.Store(snap)
	c.status.set(nil)
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	c.recorder.ObserveReloadDuration(elapsed, metrics.OutcomeSuccess)
	c.recorder.SetGeneration(gen)
	c.recorder.SetContentCounts(snap.Store.Len(), len(snap.Store.Posts()))
	c.logger.Info("Snapshot installed",
		logfields.Trigger(trigger),
		logfields.Generation(gen),
		logfields.SnapshotID(snap.ID),
		logfields.Duration(elapsed))
	for _, fn := range listeners {
		fn(snap)
	}
	return nil
}

// Status reports the reload state.
func (c *Cache) Status() Status {
	c.status.mu.RLock()
	st := Status{Healthy: c.status.lastError == nil, LastReload: c.status.lastReload, Reloads: c.status.reloads}
	if c.status.lastError != nil {
		st.Error = c.status.lastError.Error()
	}
	c.status.mu.RUnlock()
	if snap := c.Current(); snap != nil {
		st.Generation = snap.Generation
		st.SnapshotID = snap.ID
		st.LoadedAt = snap.LoadedAt
		st.Entities = snap.Store.Len()
		st.Posts = len(snap.Store.Posts())
	} else {
		st.Healthy = false
	}
	return st
}
