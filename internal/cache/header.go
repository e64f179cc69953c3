package cache

import "time"

// Header is the process-wide metadata persisted alongside the hot map in
// the namespace file, and printed by `-s/--status`.
type Header struct {
	Version           string
	InitialRun        bool
	LastRunUnix       int64
	LastScanDuration  time.Duration
	LastWriteDuration time.Duration
	LastCloseDuration time.Duration
	DirectoryCount    int
	IndexStoreBytes   int64
	NamespaceBytes    int64
}

// Version is the on-disk namespace format version written into new
// headers.
const Version = "frameidx-1"
