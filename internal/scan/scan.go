// Package scan implements the incremental, hot-pruned directory walk (C3)
// that turns a root directory into directory fragments and an updated hot
// map.
package scan

import (
	"fmt"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/rs/zerolog"

	"github.com/ligo-tools/frameidx/internal/frame"
	"github.com/ligo-tools/frameidx/internal/model"
	"github.com/ligo-tools/frameidx/internal/segment"
)

// DirEntry is the minimal per-entry information the scan engine needs from
// a filesystem implementation.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FS is the filesystem surface the scan engine walks. It is deliberately
// narrow so tests can drive the engine against an in-memory fake and assert
// on exactly which directories were read (scenario 5, hot-skip, requires
// this: a real os.ReadDir call gives no way to count invocations without
// it).
type FS interface {
	// ReadDir lists the immediate children of path.
	ReadDir(path string) ([]DirEntry, error)
	// ModTime returns path's modification time as unix seconds. It must be
	// sampled no later than the moment ReadDir is about to be called for
	// the same path, so a write racing the scan is never missed.
	ModTime(path string) (int64, error)
}

// Stats accumulates counters for one Engine.Scan call, used for the C8 log
// summary.
type Stats struct {
	Visited int
	Pruned  int
	Parsed  int
	Skipped int
	Errors  int
}

// Engine runs one root's scan against a shared index and hot map.
type Engine struct {
	FS     FS
	Index  model.Index
	Hot    model.HotMap
	Log    *zerolog.Logger
	Stats  Stats
}

// New builds an Engine. idx and hot are mutated in place by Scan; pass
// fresh maps (or a copy) per worker.
func New(fsys FS, idx model.Index, hot model.HotMap, log *zerolog.Logger) *Engine {
	return &Engine{FS: fsys, Index: idx, Hot: hot, Log: log}
}

// Scan walks root, applying hot-pruning at every directory (including root
// itself) and updating e.Index/e.Hot in place.
func (e *Engine) Scan(root string) {
	e.scanDir(root)
}

func (e *Engine) scanDir(dir string) {
	mtime, err := e.FS.ModTime(dir)
	if err != nil {
		e.logIOError(dir, err)
		return
	}
	if e.Hot.IsHot(dir, mtime) {
		e.Stats.Pruned++
		return
	}

	entries, err := e.FS.ReadDir(dir)
	if err != nil {
		// Transient I/O error: log, retain whatever fragment/hot entry dir
		// already had, and move on. The scan as a whole must not abort.
		e.logIOError(dir, err)
		return
	}
	e.Stats.Visited++

	frag := model.Fragment{}
	for _, ent := range entries {
		child, err := securejoin.SecureJoin(dir, ent.Name)
		if err != nil {
			e.logIOError(dir, fmt.Errorf("joining child %q: %w", ent.Name, err))
			continue
		}

		if ent.IsDir {
			e.scanDir(child)
			continue
		}

		n, err := frame.Parse(ent.Name)
		if err != nil {
			e.Stats.Skipped++
			continue
		}
		e.Stats.Parsed++

		key := model.SFDE{Site: n.Site, FrameType: n.FrameType, Duration: n.Duration, Extension: n.Extension}
		seg, ok := frag[key]
		if !ok {
			seg = &segment.Segments{}
			frag[key] = seg
		}
		start, end := n.Interval()
		seg.Add(segment.Interval{Start: start, End: end})
	}

	// A directory's fragment is overwritten wholesale on every rescan,
	// whether it produced entries this time or not: dir is recorded in the
	// index (possibly with an empty fragment) for every directory actually
	// visited, so the IPC payload's dc and hot keysets line up exactly.
	e.Index[dir] = frag
	e.Hot[dir] = mtime
}

func (e *Engine) logIOError(dir string, err error) {
	e.Stats.Errors++
	if e.Log != nil {
		e.Log.Warn().Str("dir", dir).Err(err).Msg("scan: directory I/O error, retaining prior state")
	}
}
