//go:build linux || darwin

package cleanup

import (
	"errors"

	"golang.org/x/sys/unix"
)

// killWorker sends SIGKILL directly via the raw syscall, grounded in the
// teacher's golang.org/x/sys dependency for low-level process control.
func killWorker(pid int) error {
	err := unix.Kill(pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		// Already gone: not an error for an idempotent cleanup step.
		return nil
	}
	return err
}
