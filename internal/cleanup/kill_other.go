//go:build !linux && !darwin

package cleanup

import "os"

// killWorker falls back to the portable Process.Kill on platforms without
// golang.org/x/sys/unix signal support.
func killWorker(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	err = proc.Kill()
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
