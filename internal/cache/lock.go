package cache

import (
	"errors"
	"fmt"
	"os"

	"github.com/alexflint/go-filemutex"
)

// ErrLockConflict is returned by AcquireLock when another master already
// owns the namespace. Per the design notes the lock is advisory and
// presence-based on purpose: a stale lock from a crashed master is meant to
// be diagnosable and removed by an operator, not waited out.
var ErrLockConflict = errors.New("cache: lock file present, another master owns this namespace")

// Lock is the single-writer marker for one namespace. It holds both the
// presence-only marker file (the authoritative, fail-fast contract) and an
// OS-level advisory flock as a belt-and-suspenders upgrade, per the design
// notes' "may upgrade to OS-level locking but must preserve fail-fast."
type Lock struct {
	path string
	fm   *filemutex.FileMutex
}

// AcquireLock creates path exclusively and fails immediately (no waiting,
// no retry) if it already exists.
func AcquireLock(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLockConflict
		}
		return nil, fmt.Errorf("cache: creating lock file %s: %w", path, err)
	}
	f.Close()

	fm, err := filemutex.New(path)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("cache: opening advisory lock %s: %w", path, err)
	}
	locked, err := fm.TryLock()
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("cache: advisory lock %s: %w", path, err)
	}
	if !locked {
		os.Remove(path)
		return nil, ErrLockConflict
	}

	return &Lock{path: path, fm: fm}, nil
}

// Release removes the marker file and releases the advisory lock. It is
// safe to call more than once and tolerates the file already being gone.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if l.fm != nil {
		_ = l.fm.Unlock()
		_ = l.fm.Close()
		l.fm = nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache: removing lock file %s: %w", l.path, err)
	}
	return nil
}
