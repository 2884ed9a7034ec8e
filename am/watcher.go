package am

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/teranos/streamgen/errors"
	"github.com/teranos/streamgen/logger"
)

// ChangeCallback is called after watched inputs changed and settled
type ChangeCallback func(ctx context.Context, changed []string) error

// Watcher watches generator inputs (Go sources, manifests, streamgen.toml)
// and triggers a callback once changes have settled. Generated units,
// backups and editor temp files are ignored.
type Watcher struct {
	watcher   *fsnotify.Watcher
	callbacks []ChangeCallback
	mu        sync.Mutex

	debounce time.Duration
	limiter  *rate.Limiter

	pending map[string]bool
	timer   *time.Timer
	fire    chan struct{}

	isOwnWrite      bool // Flag to prevent regeneration loops
	isOwnWriteMutex sync.Mutex
}

// globalWatcher holds the watcher Persist notifies about its own writes
var (
	globalWatcher   *Watcher
	globalWatcherMu sync.Mutex
)

// NewWatcher creates a watcher. Regeneration waits for debounce without
// further changes and never runs more often than once per minInterval.
func NewWatcher(debounce, minInterval time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Watcher{
		watcher:  fw,
		debounce: debounce,
		limiter:  rate.NewLimiter(limit, 1),
		pending:  make(map[string]bool),
		fire:     make(chan struct{}, 1),
	}, nil
}

// Add watches path. Directories are watched recursively, skipping hidden,
// vendor and testdata directories and any directory in skip.
func (w *Watcher) Add(path string, skip ...string) error {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		if abs, err := filepath.Abs(s); err == nil {
			skipped[abs] = true
		}
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if p == path {
				return w.watcher.Add(p)
			}
			return nil
		}
		name := d.Name()
		if p != path && (strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata" || name == "node_modules") {
			return filepath.SkipDir
		}
		if abs, err := filepath.Abs(p); err == nil && skipped[abs] {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return errors.Wrapf(err, "failed to watch %s", p)
		}
		return nil
	})
}

// OnChange registers a callback
func (w *Watcher) OnChange(callback ChangeCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// MarkOwnWrite marks the next write as coming from us
func (w *Watcher) MarkOwnWrite() {
	w.isOwnWriteMutex.Lock()
	defer w.isOwnWriteMutex.Unlock()
	w.isOwnWrite = true
}

// checkOwnWrite checks and clears the own-write flag
func (w *Watcher) checkOwnWrite() bool {
	w.isOwnWriteMutex.Lock()
	defer w.isOwnWriteMutex.Unlock()

	if w.isOwnWrite {
		w.isOwnWrite = false
		return true
	}
	return false
}

// Run processes file system events until ctx is done. Callbacks run on
// this goroutine, one batch at a time.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("Watcher error", logger.FieldError, err)

		case <-w.fire:
			if err := w.limiter.Wait(ctx); err != nil {
				return ctx.Err()
			}
			w.dispatch(ctx)
		}
	}
}

// handle filters one event and schedules a debounced dispatch
func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !IsWatchedInput(event.Name) {
		return
	}
	if w.checkOwnWrite() {
		logger.Debugw("Watcher ignoring own write", logger.FieldFile, event.Name)
		return
	}

	// New directories are watched as they appear
	if event.Has(fsnotify.Create) {
		if err := w.watcher.Add(event.Name); err == nil {
			logger.Debugw("Watching new path", logger.FieldFile, event.Name)
		}
	}

	logger.Debugw("Watcher detected change", logger.FieldFile, event.Name, "op", event.Op.String())

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[event.Name] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

// dispatch hands the pending changes to every callback
func (w *Watcher) dispatch(ctx context.Context) {
	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for name := range w.pending {
		changed = append(changed, name)
	}
	w.pending = make(map[string]bool)
	callbacks := make([]ChangeCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	for _, callback := range callbacks {
		if err := callback(ctx, changed); err != nil {
			// Continue calling other callbacks even if one fails
			logger.Warnw("Watch callback failed", logger.FieldError, err)
		}
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// IsWatchedInput reports whether a change to path can affect generation:
// Go sources that are not generated units, manifests and streamgen.toml.
// Paths without an extension are directories or renames and are accepted.
func IsWatchedInput(path string) bool {
	base := filepath.Base(path)
	switch {
	case isBackupFile(base), strings.HasPrefix(base, "."), strings.HasSuffix(base, "~"):
		return false
	case strings.HasSuffix(base, ".g.go"), strings.HasSuffix(base, "_test.go"):
		return false
	}
	switch filepath.Ext(base) {
	case ".go", ".toml", ".yaml", ".yml", "":
		return true
	default:
		return base == "go.mod"
	}
}

// SetGlobalWatcher sets the global watcher instance (used to prevent reload loops)
func SetGlobalWatcher(watcher *Watcher) {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	globalWatcher = watcher
}

// GetGlobalWatcher returns the global watcher instance
func GetGlobalWatcher() *Watcher {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	return globalWatcher
}
