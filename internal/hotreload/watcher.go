package hotreload

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/logfields"
	"git.home.luguber.info/inful/docserve/internal/snapshot"
)

// DefaultDebounce is the quiet period after the last file event before a reload starts.
const DefaultDebounce = 300 * time.Millisecond

// Reloader is what the watcher and poller trigger.
type Reloader interface {
	Reload(ctx context.Context, trigger string) error
}

// Watcher reloads the cache when files below the watched roots change. Bursts of
// events are debounced and at most one reload runs at a time; events arriving during a
// reload schedule exactly one more.
type Watcher struct {
	reloader Reloader
	logger   *slog.Logger
	debounce time.Duration

	fs      *fsnotify.Watcher
	request chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches roots recursively. Roots that do not exist are skipped.
func NewWatcher(r Reloader, logger *slog.Logger, roots ...string) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryRuntime, "failed to create file watcher").Build()
	}
	w := &Watcher{
		reloader: r,
		logger:   logger,
		debounce: DefaultDebounce,
		fs:       fw,
		request:  make(chan struct{}, 1),
	}
	for _, root := range roots {
		w.addDirsRecursive(root)
	}
	return w, nil
}

// SetDebounce changes the debounce period. Call before Run.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Watch adds the content roots of snap. Already watched directories are unaffected.
func (w *Watcher) Watch(snap *snapshot.Snapshot) {
	r := snap.Roots
	for _, root := range []string{r.Website, r.Docs} {
		w.addDirsRecursive(root)
	}
}

// Run processes events until ctx is done, then closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fs.Close() }()
	go w.worker(ctx)
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.trigger()
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.request <- struct{}{}:
		default:
		}
	})
}

// worker runs reloads one at a time. The buffered request channel coalesces everything
// that arrives while a reload is running into one follow-up reload.
func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.request:
			w.logger.Info("Change detected; reloading content")
			_ = w.reloader.Reload(ctx, "watch")
		}
	}
}

func (w *Watcher) addDirsRecursive(root string) {
	if root == "" {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger reloads.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// hidden files, including .DS_Store and .#lock files
	if strings.HasPrefix(base, ".") {
		return true
	}

	// editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
