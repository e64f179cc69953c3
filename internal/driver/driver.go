// Package driver implements the parallel dispatch / IPC aggregation model
// (C5): one worker subprocess per root, bounded by a concurrency cap,
// aggregated back into a single coherent delta.
package driver

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ligo-tools/frameidx/internal/cleanup"
	"github.com/ligo-tools/frameidx/internal/ipc"
	"github.com/ligo-tools/frameidx/internal/model"
)

// pollInterval is the master's fixed worker-pool polling interval.
const pollInterval = 125 * time.Millisecond

// Config describes one multi-root parallel run.
type Config struct {
	BinaryPath    string // re-invoked for each worker
	NamespacePath string
	Roots         []string
	ScratchDir    string
	Concurrency   int
	Bundle        *cleanup.Bundle
	Log           *zerolog.Logger
}

type job struct {
	root    string
	ipcPath string
}

type result struct {
	job    job
	pid    int
	err    error
	stderr string
}

// Run spawns one worker per root (bounded to cfg.Concurrency live at once),
// waits for all of them, and aggregates their IPC payloads into a single
// Payload. If any worker fails, Run stops launching new workers, hard-kills
// every worker still running via cfg.Bundle, and returns an error; it never
// commits a partial aggregation.
func Run(cfg Config) (ipc.Payload, error) {
	jobs := make([]job, len(cfg.Roots))
	for i, root := range cfg.Roots {
		jobs[i] = job{
			root:    root,
			ipcPath: filepath.Join(cfg.ScratchDir, "worker-"+strconv.Itoa(i)+".ipc"),
		}
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	pending := append([]job(nil), jobs...)
	live := map[int]job{}
	results := make(chan result, len(jobs))

	launch := func(j job) {
		cmd := exec.Command(cfg.BinaryPath, cfg.NamespacePath, j.root, "-i", j.ipcPath)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Start(); err != nil {
			results <- result{job: j, err: fmt.Errorf("starting worker for root %s: %w", j.root, err)}
			return
		}
		pid := cmd.Process.Pid
		live[pid] = j
		if cfg.Bundle != nil {
			cfg.Bundle.TrackWorker(pid)
		}
		if cfg.Log != nil {
			cfg.Log.Info().Str("root", j.root).Int("pid", pid).Msg("driver: worker started")
		}

		go func() {
			err := cmd.Wait()
			if cfg.Bundle != nil {
				cfg.Bundle.UntrackWorker(pid)
			}
			var werr error
			if err != nil {
				werr = fmt.Errorf("worker for root %s exited with error: %w", j.root, err)
			}
			results <- result{job: j, pid: pid, err: werr, stderr: stderr.String()}
		}()
	}

	fillSlots := func() {
		for len(live) < concurrency && len(pending) > 0 {
			j := pending[0]
			pending = pending[1:]
			launch(j)
		}
	}
	fillSlots()

	// pollInterval-spaced ticks, via the same rate limiter the teacher
	// reaches for elsewhere, rather than a bare time.Ticker: a slot-free
	// check is exactly the "at most once per interval" shape rate.Limiter
	// models.
	pollCtx, stopPolling := context.WithCancel(context.Background())
	defer stopPolling()
	limiter := rate.NewLimiter(rate.Every(pollInterval), 1)
	polls := make(chan struct{})
	go func() {
		for {
			if err := limiter.Wait(pollCtx); err != nil {
				return
			}
			select {
			case polls <- struct{}{}:
			case <-pollCtx.Done():
				return
			}
		}
	}()

	aggregate := ipc.Payload{Fragments: model.Index{}, Hot: model.HotMap{}}
	completed := 0
	var firstErr error

	for completed < len(jobs) {
		select {
		case res := <-results:
			completed++
			if res.pid != 0 {
				delete(live, res.pid)
			}
			if res.err != nil {
				if firstErr == nil {
					if res.stderr != "" {
						firstErr = fmt.Errorf("%w\nworker stderr:\n%s", res.err, res.stderr)
					} else {
						firstErr = res.err
					}
					// Siblings may still be scanning their own roots: kill
					// them now rather than waiting for them to finish on
					// their own and for the caller's eventual cleanup
					// bundle release.
					if cfg.Bundle != nil {
						if err := cfg.Bundle.KillLiveWorkers(); err != nil && cfg.Log != nil {
							cfg.Log.Warn().Err(err).Msg("driver: killing surviving workers after failure")
						}
					}
				}
				continue
			}
			if firstErr != nil {
				// A sibling worker already failed: don't bother reading
				// this one's payload, nothing will be published.
				continue
			}
			payload, err := ipc.Read(res.job.ipcPath)
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("reading IPC payload for root %s: %w", res.job.root, err)
				}
				continue
			}
			for dir, frag := range payload.Fragments {
				aggregate.Fragments[dir] = frag
			}
			for dir, mtime := range payload.Hot {
				aggregate.Hot[dir] = mtime
			}
		case <-polls:
			if firstErr == nil {
				fillSlots()
			}
		}
	}

	if firstErr != nil {
		return ipc.Payload{}, firstErr
	}
	return aggregate, nil
}
