// Package ipc defines the self-contained file a worker writes at exit and
// the master reads back during aggregation (C5).
package ipc

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/ligo-tools/frameidx/internal/cache"
	"github.com/ligo-tools/frameidx/internal/model"
)

// Payload is the whole of one worker's contribution: dc, the directory to
// fragment deltas it produced, and hot, the subset of the hot map
// corresponding exactly to the directories in dc.
type Payload struct {
	Fragments model.Index
	Hot       model.HotMap
}

// Write atomically publishes p to path (worker-owned scratch file; one
// worker, one self-contained file, per the design notes), reusing the same
// temp-then-rename protocol the master uses to publish the namespace and
// output files.
func Write(path string, p Payload) error {
	return cache.AtomicWrite(path, 0o644, func(w io.Writer) error {
		return gob.NewEncoder(w).Encode(p)
	})
}

// Read loads the payload a worker wrote to path.
func Read(path string) (Payload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("ipc: reading %s: %w", path, err)
	}
	return Decode(bytes.NewReader(raw))
}

// Decode is Read without the filesystem dependency.
func Decode(r io.Reader) (Payload, error) {
	var p Payload
	if err := gob.NewDecoder(r).Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("ipc: decoding payload: %w", err)
	}
	return p, nil
}
