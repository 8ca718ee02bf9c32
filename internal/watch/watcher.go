package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/rjeczalik/notify"
)

const (
	DefaultIgnoreTimeout   = 2 * time.Second
	DefaultDebounceTimeout = 500 * time.Millisecond
	defaultCleanupInterval = 15 * time.Second
	eventBufferSize        = 256
)

const watchEvents = notify.Write | notify.Create | notify.Remove | notify.Rename

// FilterCallback returns true for paths whose events should be dropped.
type FilterCallback func(path string) bool

// Watcher watches several client roots and coalesces changes into batches.
// A batch is emitted once no event has arrived for the debounce timeout.
type Watcher struct {
	roots     []string
	rawEvents chan notify.EventInfo
	batches   chan []string

	ignore          map[string]time.Time
	ignoreMu        sync.Mutex
	cleanupInterval time.Duration

	pending         map[string]struct{}
	timer           *time.Timer
	debounceMu      sync.Mutex
	debounceTimeout time.Duration

	filter FilterCallback

	done chan struct{}
	wg   sync.WaitGroup
}

func NewWatcher(roots ...string) *Watcher {
	return &Watcher{
		roots:           roots,
		ignore:          make(map[string]time.Time),
		cleanupInterval: defaultCleanupInterval,
		pending:         make(map[string]struct{}),
		debounceTimeout: DefaultDebounceTimeout,
		batches:         make(chan []string, 1),
		done:            make(chan struct{}),
	}
}

func (w *Watcher) SetDebounceTimeout(timeout time.Duration) {
	w.debounceTimeout = timeout
}

// FilterPaths drops raw events before debouncing. Must be set before Start.
func (w *Watcher) FilterPaths(callback FilterCallback) {
	w.filter = callback
}

// Start registers recursive watches on every root.
func (w *Watcher) Start(ctx context.Context) error {
	w.rawEvents = make(chan notify.EventInfo, eventBufferSize)

	for _, root := range w.roots {
		if err := notify.Watch(filepath.Join(root, "..."), w.rawEvents, watchEvents); err != nil {
			notify.Stop(w.rawEvents)
			return err
		}
		slog.Debug("watching", "root", root)
	}

	w.wg.Add(2)
	go w.filterEvents(ctx)
	go w.cleanupExpiredEntries(ctx)
	return nil
}

func (w *Watcher) Stop() {
	close(w.done)
	if w.rawEvents != nil {
		notify.Stop(w.rawEvents)
	}
	w.wg.Wait()

	w.debounceMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.debounceMu.Unlock()
}

// Batches delivers sorted, de-duplicated changed paths.
func (w *Watcher) Batches() <-chan []string {
	return w.batches
}

// IgnoreOnce drops the next event for path, e.g. for a file we are about to write.
func (w *Watcher) IgnoreOnce(path string) {
	w.IgnoreOnceWithTimeout(path, DefaultIgnoreTimeout)
}

func (w *Watcher) IgnoreOnceWithTimeout(path string, timeout time.Duration) {
	w.ignoreMu.Lock()
	defer w.ignoreMu.Unlock()
	w.ignore[filepath.Clean(path)] = time.Now().Add(timeout)
}

// ignored consumes an unexpired ignore entry for path.
func (w *Watcher) ignored(path string) bool {
	w.ignoreMu.Lock()
	defer w.ignoreMu.Unlock()

	expiry, ok := w.ignore[path]
	if !ok {
		return false
	}
	delete(w.ignore, path)
	return time.Now().Before(expiry)
}

func (w *Watcher) filterEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.rawEvents:
			if !ok {
				return
			}
			w.add(event.Path())
		}
	}
}

// add queues path and restarts the debounce timer.
func (w *Watcher) add(path string) {
	path = filepath.Clean(path)
	if w.filter != nil && w.filter(path) {
		return
	}

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceTimeout, w.flush)
}

func (w *Watcher) flush() {
	w.debounceMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		if !w.ignored(p) {
			paths = append(paths, p)
		}
	}
	clear(w.pending)
	w.timer = nil
	w.debounceMu.Unlock()

	if len(paths) == 0 {
		return
	}
	slices.Sort(paths)

	select {
	case w.batches <- paths:
		slog.Debug("watch batch", "paths", len(paths))
	default:
		// a batch is already waiting and will trigger a full rescan anyway
		slog.Debug("watch batch coalesced", "paths", len(paths))
	}
}

func (w *Watcher) cleanupExpiredEntries(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-ticker.C:
			now := time.Now()
			w.ignoreMu.Lock()
			for path, expiry := range w.ignore {
				if now.After(expiry) {
					delete(w.ignore, path)
				}
			}
			w.ignoreMu.Unlock()
		}
	}
}
