package slot

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MaxSlots is the number of stacking positions per screen corner.
// A claim that finds every slot held by a live process falls back to
// slot 0 rather than failing the notification.
const MaxSlots = 20

// Prober reports whether the process with the given pid is running.
// Implementations must resolve ambiguity (e.g. permission errors on
// the probe) toward "alive" so a live holder is never evicted.
type Prober func(pid int) bool

// Registry allocates stacking slots to notification processes through
// lock files in a shared directory. It is safe for use by multiple
// processes at once; within one process it is used from a single
// goroutine (the GTK main loop) plus the reflow watcher.
//
// Every operation has a defined fallback value and no error return:
// a broken registry degrades to stacking everything at slot 0.
type Registry struct {
	dir    string
	prober Prober
	pid    func() int
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithProber overrides the liveness probe. Used by tests to simulate
// a process table.
func WithProber(p Prober) Option {
	return func(r *Registry) {
		r.prober = p
	}
}

// WithPID overrides the pid recorded in claimed lock files.
func WithPID(pid func() int) Option {
	return func(r *Registry) {
		r.pid = pid
	}
}

// NewRegistry creates a Registry backed by the given directory.
// The directory is created if missing; failure to create it is not an
// error here, it surfaces later as the slot-0 degraded mode.
func NewRegistry(dir string, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		dir:    dir,
		prober: ProcessAlive,
		pid:    os.Getpid,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		r.logger.Warn("failed to create slot registry directory", "dir", dir, "error", err)
	}
	return r
}

// Dir returns the registry's backing directory.
func (r *Registry) Dir() string {
	return r.dir
}

// DefaultDir returns the slot registry directory under the user's
// cache path.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "devping", "slots"), nil
}

// lockPath returns the lock file path for a slot index.
func (r *Registry) lockPath(index int) string {
	return filepath.Join(r.dir, strconv.Itoa(index))
}

// Claim scans slots 0..MaxSlots-1 in ascending order and claims the
// first one that is free or whose recorded holder is no longer
// running. The ascending scan keeps the stack gap-free: a new panel
// always appears adjacent to existing ones.
//
// When every slot is held by a live process, Claim overwrites slot 0
// and returns 0, accepting visual overlap over a missed notification.
// The same fallback applies when the registry directory is unusable.
func (r *Registry) Claim() int {
	if _, err := os.Stat(r.dir); err != nil {
		r.logger.Warn("slot registry unavailable, using slot 0", "dir", r.dir, "error", err)
		return 0
	}

	for i := 0; i < MaxSlots; i++ {
		if r.tryClaim(i) {
			r.logger.Debug("claimed slot", "slot", i)
			return i
		}
	}

	// Saturated: every slot has a live holder. Stack over slot 0.
	r.logger.Warn("all slots occupied, overlapping at slot 0")
	r.write(0)
	return 0
}

// tryClaim claims the slot if it is free or stale. It reports whether
// the claim succeeded. Callers race across processes; the last writer
// wins and the earlier claimant self-corrects on its next reflow tick.
func (r *Registry) tryClaim(index int) bool {
	holder, ok := r.holder(index)
	if ok && r.prober(holder) {
		return false
	}
	if ok {
		r.logger.Debug("reclaiming stale slot", "slot", index, "dead_pid", holder)
	}
	r.write(index)
	return true
}

// holder reads the pid recorded for a slot. The second return is
// false when no lock file exists or its content is not a valid pid;
// either way the slot counts as claimable.
func (r *Registry) holder(index int) (int, bool) {
	data, err := os.ReadFile(r.lockPath(index))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// write records the caller's pid as the slot holder. Errors are
// swallowed: a failed write means the claim is invisible to siblings,
// which at worst produces overlapping panels.
func (r *Registry) write(index int) {
	if err := os.WriteFile(r.lockPath(index), []byte(strconv.Itoa(r.pid())), 0644); err != nil {
		r.logger.Warn("failed to write slot lock", "slot", index, "error", err)
	}
}

// Release deletes the lock record for a slot. Idempotent: releasing a
// slot that was never claimed, or releasing twice, is a no-op.
func (r *Registry) Release(index int) {
	if index < 0 || index >= MaxSlots {
		return
	}
	if err := os.Remove(r.lockPath(index)); err != nil && !os.IsNotExist(err) {
		r.logger.Warn("failed to remove slot lock", "slot", index, "error", err)
	}
}

// Held returns the indices currently holding a lock record along with
// the recorded pid and whether that pid is still alive. Used by the
// `devping slots` inspection command.
func (r *Registry) Held() []Lock {
	var locks []Lock
	for i := 0; i < MaxSlots; i++ {
		pid, ok := r.holder(i)
		if !ok {
			continue
		}
		locks = append(locks, Lock{Index: i, PID: pid, Alive: r.prober(pid)})
	}
	return locks
}

// Lock describes one held slot as observed on disk.
type Lock struct {
	Index int
	PID   int
	Alive bool
}
