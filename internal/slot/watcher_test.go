package slot

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReflowsToReleasedSlot(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs(1000, 1001)

	regB := newTestRegistry(t, dir, procs, 1000)
	require.Equal(t, 0, regB.Claim())

	regA := newTestRegistry(t, dir, procs, 1001)
	require.Equal(t, 1, regA.Claim())

	var calls []int
	w := NewWatcher(regA, 1, testLogger())
	w.SetReassignCallback(func(newIndex int) {
		calls = append(calls, newIndex)
	})

	// Slot 0 still held by a live process: nothing to do.
	w.tick()
	assert.Empty(t, calls)
	assert.Equal(t, 1, w.Current())

	// B dismisses.
	regB.Release(0)

	w.tick()
	require.Equal(t, []int{0}, calls, "callback fires exactly once with the new index")
	assert.Equal(t, 0, w.Current())

	// Old slot was released as part of the move.
	held := regA.Held()
	require.Len(t, held, 1)
	assert.Equal(t, 0, held[0].Index)
	assert.Equal(t, 1001, held[0].PID)

	// A second tick with no further changes is a no-op.
	w.tick()
	assert.Equal(t, []int{0}, calls)
}

func TestWatcher_ReclaimsStaleLowerSlot(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs(1000, 1001)

	regB := newTestRegistry(t, dir, procs, 1000)
	require.Equal(t, 0, regB.Claim())

	regA := newTestRegistry(t, dir, procs, 1001)
	require.Equal(t, 1, regA.Claim())

	// B crashes without releasing.
	procs.kill(1000)

	w := NewWatcher(regA, 1, testLogger())
	var calls []int
	w.SetReassignCallback(func(newIndex int) { calls = append(calls, newIndex) })

	w.tick()
	assert.Equal(t, []int{0}, calls)
}

func TestWatcher_OneHopPerTick(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs(1003)

	reg := newTestRegistry(t, dir, procs, 1003)
	// Slots 0..2 are free; the instance starts at 3.
	reg.write(3)

	w := NewWatcher(reg, 3, testLogger())
	var calls []int
	w.SetReassignCallback(func(newIndex int) { calls = append(calls, newIndex) })

	w.tick()
	assert.Equal(t, []int{0}, calls, "the first free slot wins in a single hop")
	assert.Equal(t, 0, w.Current())
}

func TestWatcher_SlotZeroNeverRescans(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs(1000)

	reg := newTestRegistry(t, dir, procs, 1000)
	require.Equal(t, 0, reg.Claim())

	w := NewWatcher(reg, 0, testLogger())
	var called bool
	w.SetReassignCallback(func(int) { called = true })

	w.tick()
	assert.False(t, called)
}

func TestWatcher_StartStop(t *testing.T) {
	dir := t.TempDir()
	procs := newFakeProcs(1000, 1001)

	regB := newTestRegistry(t, dir, procs, 1000)
	require.Equal(t, 0, regB.Claim())

	regA := newTestRegistry(t, dir, procs, 1001)
	require.Equal(t, 1, regA.Claim())

	var mu sync.Mutex
	var calls []int
	w := NewWatcher(regA, 1, testLogger())
	w.SetPollInterval(10 * time.Millisecond)
	w.SetReassignCallback(func(newIndex int) {
		mu.Lock()
		calls = append(calls, newIndex)
		mu.Unlock()
	})

	w.Start()
	regB.Release(0)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 1 && calls[0] == 0
	}, time.Second, 5*time.Millisecond)

	w.Stop()
	w.Stop() // idempotent
}
