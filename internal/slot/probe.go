package slot

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ProcessAlive is the default liveness probe: a zero signal to the
// pid. The signal is never delivered; only the existence check
// matters. EPERM means the process exists but belongs to another
// user, so it counts as alive.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, unix.EPERM)
}
