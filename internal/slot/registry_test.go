package slot

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProcs simulates a process table for liveness probes.
type fakeProcs struct {
	live map[int]bool
}

func newFakeProcs(pids ...int) *fakeProcs {
	f := &fakeProcs{live: make(map[int]bool)}
	for _, pid := range pids {
		f.live[pid] = true
	}
	return f
}

func (f *fakeProcs) alive(pid int) bool { return f.live[pid] }

func (f *fakeProcs) kill(pid int) { delete(f.live, pid) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestRegistry creates a registry in a temp dir claiming as the
// given pid, probing against the fake process table.
func newTestRegistry(t *testing.T, dir string, procs *fakeProcs, pid int) *Registry {
	t.Helper()
	return NewRegistry(dir, testLogger(),
		WithProber(procs.alive),
		WithPID(func() int { return pid }),
	)
}

func TestClaim_SequentialClaimsAreAdjacent(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs()

	for i := 0; i < MaxSlots; i++ {
		pid := 1000 + i
		procs.live[pid] = true
		reg := newTestRegistry(t, dir, procs, pid)
		assert.Equal(t, i, reg.Claim())
	}
}

func TestClaim_ReclaimsDeadHolder(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs(1000, 1001, 1002)

	for i, pid := range []int{1000, 1001, 1002} {
		reg := newTestRegistry(t, dir, procs, pid)
		require.Equal(t, i, reg.Claim())
	}

	// Holder of slot 1 crashes without releasing.
	procs.kill(1001)

	procs.live[2000] = true
	reg := newTestRegistry(t, dir, procs, 2000)
	assert.Equal(t, 1, reg.Claim(), "stale slot should be reclaimed, not skipped")

	data, err := os.ReadFile(filepath.Join(dir, "1"))
	require.NoError(t, err)
	assert.Equal(t, "2000", string(data))
}

func TestClaim_LowestFreeWins(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs(1000, 1001, 1002)

	regs := make([]*Registry, 3)
	for i, pid := range []int{1000, 1001, 1002} {
		regs[i] = newTestRegistry(t, dir, procs, pid)
		require.Equal(t, i, regs[i].Claim())
	}

	regs[1].Release(1)
	procs.kill(1001)

	procs.live[2000] = true
	reg := newTestRegistry(t, dir, procs, 2000)
	assert.Equal(t, 1, reg.Claim(), "released slot should win over slot 3")
}

func TestClaim_UnparsableLockIsReclaimable(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "0"), []byte("not-a-pid"), 0644))

	procs.live[2000] = true
	reg := newTestRegistry(t, dir, procs, 2000)
	assert.Equal(t, 0, reg.Claim())
}

func TestClaim_SaturationFallsBackToSlotZero(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs()

	for i := 0; i < MaxSlots; i++ {
		pid := 1000 + i
		procs.live[pid] = true
		reg := newTestRegistry(t, dir, procs, pid)
		require.Equal(t, i, reg.Claim())
	}

	procs.live[2000] = true
	reg := newTestRegistry(t, dir, procs, 2000)
	assert.Equal(t, 0, reg.Claim())

	// Documented degraded behavior: the live holder of slot 0 is
	// overwritten, not preserved.
	data, err := os.ReadFile(filepath.Join(dir, "0"))
	require.NoError(t, err)
	assert.Equal(t, "2000", string(data))
}

func TestClaim_UnusableDirectoryDegradesToSlotZero(t *testing.T) {
	dir := t.TempDir()

	// A regular file where the registry directory should be makes
	// both MkdirAll and the existence check fail.
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0644))

	procs := newFakeProcs(2000)
	reg := newTestRegistry(t, filepath.Join(blocked, "slots"), procs, 2000)
	assert.Equal(t, 0, reg.Claim())
	assert.Equal(t, 0, reg.Claim(), "every caller gets slot 0 when the registry is unusable")
}

func TestRelease_Idempotent(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs(1000)
	reg := newTestRegistry(t, dir, procs, 1000)

	require.Equal(t, 0, reg.Claim())

	reg.Release(0)
	reg.Release(0)
	reg.Release(5) // never claimed

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRelease_OutOfRangeIsNoOp(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs(1000)
	reg := newTestRegistry(t, dir, procs, 1000)

	reg.Release(-1)
	reg.Release(MaxSlots)
}

func TestHeld_ReportsLocksWithLiveness(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs(1000, 1001)

	for i, pid := range []int{1000, 1001} {
		reg := newTestRegistry(t, dir, procs, pid)
		require.Equal(t, i, reg.Claim())
	}
	procs.kill(1001)

	reg := newTestRegistry(t, dir, procs, 3000)
	held := reg.Held()
	require.Len(t, held, 2)
	assert.Equal(t, Lock{Index: 0, PID: 1000, Alive: true}, held[0])
	assert.Equal(t, Lock{Index: 1, PID: 1001, Alive: false}, held[1])
}

func TestDefaultDir_UnderUserCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, "slots", filepath.Base(dir))
	assert.Contains(t, dir, "devping")
}

func TestProcessAlive_OwnProcess(t *testing.T) {
	assert.True(t, ProcessAlive(os.Getpid()))
	assert.False(t, ProcessAlive(0))
	assert.False(t, ProcessAlive(-1))
}

// TestClaim_LockFileContentIsBarePID pins the on-disk format: the
// whole file is the decimal pid, no newline, named by the slot index.
func TestClaim_LockFileContentIsBarePID(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs(4242)
	reg := newTestRegistry(t, dir, procs, 4242)

	require.Equal(t, 0, reg.Claim())

	data, err := os.ReadFile(filepath.Join(dir, strconv.Itoa(0)))
	require.NoError(t, err)
	assert.Equal(t, "4242", string(data))
}
