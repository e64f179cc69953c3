// Package cleanup implements the master's single scoped resource bundle:
// the three unconditional exit actions (kill surviving workers, remove the
// scratch directory, remove the lock file), each idempotent and safe to run
// on every exit path, normal or signaled — Go has no implicit at-exit
// hooks, so this replaces the teacher's atexit-style cleanup with an
// explicit, defer-driven bundle per the design notes.
package cleanup

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ligo-tools/frameidx/internal/cache"
)

// Bundle owns the resources one master invocation must release exactly
// once, however it exits.
type Bundle struct {
	mu         sync.Mutex
	released   bool
	lock       *cache.Lock
	scratchDir string
	workerPIDs []int
	log        *zerolog.Logger

	stopSignals func()
}

// New builds a Bundle around the namespace lock and (possibly empty)
// scratch directory for one run.
func New(lock *cache.Lock, scratchDir string, log *zerolog.Logger) *Bundle {
	return &Bundle{lock: lock, scratchDir: scratchDir, log: log}
}

// TrackWorker registers a live worker PID so Release can hard-kill it if
// the run aborts before the worker exits on its own.
func (b *Bundle) TrackWorker(pid int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.workerPIDs = append(b.workerPIDs, pid)
}

// UntrackWorker removes pid once the worker has exited cleanly, so Release
// doesn't try to signal a PID that may have been reused.
func (b *Bundle) UntrackWorker(pid int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.workerPIDs {
		if p == pid {
			b.workerPIDs = append(b.workerPIDs[:i], b.workerPIDs[i+1:]...)
			return
		}
	}
}

// KillLiveWorkers immediately hard-kills every currently tracked worker,
// without touching the scratch directory or the lock. Unlike Release this
// is meant to be called mid-run, the instant one worker's failure aborts
// the aggregation, so a sibling worker is not left scanning after the run
// it belongs to has already failed. Safe to call more than once; exited or
// already-killed PIDs are tolerated.
func (b *Bundle) KillLiveWorkers() error {
	b.mu.Lock()
	pids := append([]int(nil), b.workerPIDs...)
	b.mu.Unlock()

	var errs []error
	for _, pid := range pids {
		if err := killWorker(pid); err != nil {
			errs = append(errs, err)
		}
		if b.log != nil {
			b.log.Info().Int("pid", pid).Msg("cleanup: killed surviving worker")
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// InstallSignalHandler arranges for SIGINT/SIGTERM to run Release and then
// exit the process with status 1; the signal itself is not re-raised.
func (b *Bundle) InstallSignalHandler() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-ch:
			b.Release()
			os.Exit(1)
		case <-done:
		}
	}()
	b.stopSignals = func() {
		close(done)
		signal.Stop(ch)
	}
}

// Release runs the three cleanup actions exactly once: kill surviving
// workers, remove the scratch directory, remove the lock file. It tolerates
// being called more than once and tolerates resources already being gone.
func (b *Bundle) Release() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return nil
	}
	b.released = true
	if b.stopSignals != nil {
		b.stopSignals()
	}

	var errs []error

	for _, pid := range b.workerPIDs {
		if err := killWorker(pid); err != nil {
			errs = append(errs, err)
		}
		if b.log != nil {
			b.log.Info().Int("pid", pid).Msg("cleanup: killed surviving worker")
		}
	}
	b.workerPIDs = nil

	if b.scratchDir != "" {
		if err := os.RemoveAll(b.scratchDir); err != nil {
			errs = append(errs, err)
		}
	}

	if b.lock != nil {
		if err := b.lock.Release(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
