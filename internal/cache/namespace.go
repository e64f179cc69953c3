package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/ligo-tools/frameidx/internal/model"
)

// namespaceData is exactly the spec's "{header, hot}" — the payload of the
// namespace file N, gob-encoded (gob streams are self-describing, matching
// the spec's requirement verbatim).
type namespaceData struct {
	Header Header
	Hot    model.HotMap
}

// loadOrBootstrapNamespace reads path, or creates a fresh namespace with
// InitialRun=true if it does not exist yet. Subsequent reads of an existing
// namespace never fail due to "file not found."
func loadOrBootstrapNamespace(path string) (namespaceData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return namespaceData{
				Header: Header{Version: Version, InitialRun: true},
				Hot:    model.HotMap{},
			}, nil
		}
		return namespaceData{}, fmt.Errorf("cache: reading namespace %s: %w", path, err)
	}

	var ns namespaceData
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&ns); err != nil {
		return namespaceData{}, fmt.Errorf("cache: decoding namespace %s: %w", path, err)
	}
	if ns.Hot == nil {
		ns.Hot = model.HotMap{}
	}
	return ns, nil
}

// LoadHotMap reads just the hot map out of the namespace file at path,
// without acquiring the single-writer lock. Workers use this: they need a
// read-only snapshot of the current hot map for their one root, but only the
// master is allowed to hold the lock.
func LoadHotMap(path string) (model.HotMap, error) {
	ns, err := loadOrBootstrapNamespace(path)
	if err != nil {
		return nil, err
	}
	return ns.Hot, nil
}

// saveNamespace atomically publishes ns to path under mode.
func saveNamespace(path string, mode os.FileMode, ns namespaceData) error {
	return AtomicWrite(path, mode, func(w io.Writer) error {
		return gob.NewEncoder(w).Encode(ns)
	})
}
