// Package model holds the core data types shared by the scan engine, cache
// store, parallel driver and emitter: the SFDE key, directory fragments, the
// index, and the hot-directory map.
package model

import "github.com/ligo-tools/frameidx/internal/segment"

// SFDE is the fragment key: (site, frametype, duration, extension). Note
// that GPS start is deliberately excluded — files belonging to the same
// logical stream share an SFDE regardless of start time.
type SFDE struct {
	Site      string
	FrameType string
	Duration  uint64
	Extension string
}

// Fragment is one directory's contribution to the index: an SFDE-keyed set
// of coalesced interval lists.
type Fragment map[SFDE]*segment.Segments

// Clone returns a deep copy of f, safe to hand to another goroutine/worker.
func (f Fragment) Clone() Fragment {
	out := make(Fragment, len(f))
	for k, v := range f {
		cp := &segment.Segments{}
		for _, iv := range v.List() {
			cp.Add(iv)
		}
		out[k] = cp
	}
	return out
}

// Index maps an absolute directory path to its fragment. Each directory
// appears at most once.
type Index map[string]Fragment

// HotMap maps an absolute directory path to the last-observed modification
// time (unix seconds) at which it was fully indexed or observed empty.
type HotMap map[string]int64

// IsHot reports whether dir can be skipped given its current mtime: it is
// hot iff it was previously recorded and its recorded mtime is still >= the
// current one.
func (h HotMap) IsHot(dir string, mtime int64) bool {
	last, ok := h[dir]
	return ok && mtime <= last
}
