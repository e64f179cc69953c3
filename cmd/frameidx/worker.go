package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ligo-tools/frameidx/internal/cache"
	"github.com/ligo-tools/frameidx/internal/ipc"
	"github.com/ligo-tools/frameidx/internal/model"
	"github.com/ligo-tools/frameidx/internal/scan"
)

// runWorker is the worker side of C5: scan exactly one root against a
// read-only snapshot of the current hot map, then atomically publish the
// self-contained IPC payload. It never touches the persistent cache or the
// lock file.
func runWorker(namespace, root, ipcPath string, log *zerolog.Logger) int {
	hot, err := cache.LoadHotMap(namespace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "frameidx: worker: loading hot map: %v\n", err)
		return exitIOError
	}

	idx := model.Index{}
	workerHot := model.HotMap{}
	for k, v := range hot {
		workerHot[k] = v
	}

	engine := scan.New(scan.OSFS{}, idx, workerHot, log)
	engine.Scan(root)

	// dc / hot in the IPC payload cover only the directories this worker
	// actually visited: start from the shared snapshot, keep only the
	// entries scan touched.
	payload := ipc.Payload{Fragments: model.Index{}, Hot: model.HotMap{}}
	for dir, frag := range idx {
		payload.Fragments[dir] = frag
		payload.Hot[dir] = workerHot[dir]
	}

	if err := ipc.Write(ipcPath, payload); err != nil {
		fmt.Fprintf(os.Stderr, "frameidx: worker: writing IPC payload: %v\n", err)
		return exitIOError
	}

	log.Info().
		Str("root", root).
		Int("visited", engine.Stats.Visited).
		Int("pruned", engine.Stats.Pruned).
		Int("parsed", engine.Stats.Parsed).
		Int("skipped", engine.Stats.Skipped).
		Int("errors", engine.Stats.Errors).
		Msg("worker: scan complete")

	return exitOK
}
