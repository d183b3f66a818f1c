package slot

import (
	"log/slog"
	"sync"
	"time"
)

// Watcher periodically rescans the registry for a lower slot while an
// instance holds slot > 0. When an earlier panel dismisses, every
// later panel slides up one position instead of leaving a gap.
type Watcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	registry *Registry

	current      int
	pollInterval time.Duration

	// Callback invoked with the new index after a reassignment.
	onReassign func(newIndex int)

	// Control channels
	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewWatcher creates a reflow watcher for the instance holding the
// given slot.
func NewWatcher(registry *Registry, current int, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		logger:       logger,
		registry:     registry,
		current:      current,
		pollInterval: 500 * time.Millisecond,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// SetPollInterval sets the rescan interval. Used by tests.
func (w *Watcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pollInterval = interval
}

// SetReassignCallback sets the callback invoked after the watcher
// migrates the instance to a lower slot.
func (w *Watcher) SetReassignCallback(callback func(newIndex int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReassign = callback
}

// Current returns the slot the watcher believes the instance holds.
func (w *Watcher) Current() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Start begins the rescan loop. It returns immediately; reassignment
// callbacks fire from the watcher goroutine.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	interval := w.pollInterval
	w.mu.Unlock()

	go w.watch(interval)
	w.logger.Debug("slot watcher started", "slot", w.Current(), "interval", interval)
}

// Stop halts the rescan loop. Idempotent; called on every dismissal
// path so no tick fires after teardown begins.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.logger.Debug("slot watcher stopped")
}

// watch is the rescan loop.
func (w *Watcher) watch(interval time.Duration) {
	defer close(w.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick()
		case <-w.stopCh:
			return
		}
	}
}

// tick performs one rescan. At most one reassignment happens per tick
// even when several lower slots are free, so each on-screen move is a
// single animated hop rather than a jump.
func (w *Watcher) tick() {
	w.mu.Lock()
	current := w.current
	callback := w.onReassign
	w.mu.Unlock()

	if current <= 0 {
		return
	}

	for i := 0; i < current; i++ {
		if !w.registry.tryClaim(i) {
			continue
		}

		w.registry.Release(current)
		w.mu.Lock()
		w.current = i
		w.mu.Unlock()

		w.logger.Debug("reflowed to lower slot", "from", current, "to", i)
		if callback != nil {
			callback(i)
		}
		return
	}
}
