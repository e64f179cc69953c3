package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/ligo-tools/frameidx/internal/model"
)

// Cache is the master's view of one namespace: the lock that gives it
// exclusive ownership, the namespace file (header + hot map), and the
// Pebble-backed index store.
//
// Open question (directory disappearance, see DESIGN.md): if a previously
// indexed directory no longer exists on disk, this implementation keeps its
// stale fragment and hot entry forever — there is no sweep pass. A rescan
// only ever overwrites or adds entries for directories it actually visits.
type Cache struct {
	NamespacePath string
	LockPath      string
	StorePath     string
	Mode          os.FileMode

	lock  *Lock
	store KeyedStore
	ns    namespaceData
}

// Open acquires the single-writer lock and opens (or bootstraps) the
// namespace at path, failing fast if another master already owns it.
func Open(namespace string, mode os.FileMode) (*Cache, error) {
	lockPath := namespace + ".lock"
	storePath := namespace + ".shlv"

	lock, err := AcquireLock(lockPath)
	if err != nil {
		return nil, err
	}

	ns, err := loadOrBootstrapNamespace(namespace)
	if err != nil {
		lock.Release()
		return nil, err
	}

	store, err := OpenPebbleStore(storePath)
	if err != nil {
		lock.Release()
		return nil, err
	}

	return &Cache{
		NamespacePath: namespace,
		LockPath:      lockPath,
		StorePath:     storePath,
		Mode:          mode,
		lock:          lock,
		store:         store,
		ns:            ns,
	}, nil
}

// Header returns the currently loaded header.
func (c *Cache) Header() Header { return c.ns.Header }

// Lock returns the namespace lock c.Open acquired, so a caller can hand it
// to a cleanup.Bundle without Cache and Bundle racing over ownership;
// Lock.Release is idempotent, so both Cache.Close and Bundle.Release may
// call it.
func (c *Cache) Lock() *Lock { return c.lock }

// LoadIndex materializes the full model.Index by iterating the index
// store and decoding every fragment.
func (c *Cache) LoadIndex() (model.Index, error) {
	idx := model.Index{}
	var decodeErr error
	err := c.store.Iterate(func(key string, value []byte) bool {
		frag, derr := decodeFragment(value)
		if derr != nil {
			decodeErr = fmt.Errorf("cache: decoding fragment for %s: %w", key, derr)
			return false
		}
		idx[key] = frag
		return true
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return idx, nil
}

// Hot returns the currently loaded hot map.
func (c *Cache) Hot() model.HotMap { return c.ns.Hot }

// MergeHot applies delta on top of the current hot map.
func (c *Cache) MergeHot(delta model.HotMap) {
	for k, v := range delta {
		c.ns.Hot[k] = v
	}
}

// WriteFragments writes every directory fragment in delta to the index
// store, overwriting wholesale per spec.md's "overwritten each time the
// directory is rescanned."
func (c *Cache) WriteFragments(delta model.Index) error {
	for dir, frag := range delta {
		enc, err := encodeFragment(frag)
		if err != nil {
			return fmt.Errorf("cache: encoding fragment for %s: %w", dir, err)
		}
		if err := c.store.Set(dir, enc); err != nil {
			return fmt.Errorf("cache: writing fragment for %s: %w", dir, err)
		}
	}
	return nil
}

// Save updates the header's run statistics and atomically publishes the
// namespace file. It does not touch the index store (already durable via
// per-key Set calls).
func (c *Cache) Save(scanDur, writeDur time.Duration, dirCount int) error {
	start := time.Now()
	c.ns.Header.InitialRun = false
	c.ns.Header.LastRunUnix = time.Now().Unix()
	c.ns.Header.LastScanDuration = scanDur
	c.ns.Header.LastWriteDuration = writeDur
	c.ns.Header.DirectoryCount = dirCount
	if ps, ok := c.store.(interface{ EstimatedSize() int64 }); ok {
		c.ns.Header.IndexStoreBytes = ps.EstimatedSize()
	}

	if err := saveNamespace(c.NamespacePath, c.Mode, c.ns); err != nil {
		return err
	}
	if info, err := os.Stat(c.NamespacePath); err == nil {
		c.ns.Header.NamespaceBytes = info.Size()
	}
	c.ns.Header.LastCloseDuration = time.Since(start)
	return nil
}

// Close releases the index store and the single-writer lock. Safe to call
// once; subsequent calls are no-ops beyond the idempotent Lock.Release.
func (c *Cache) Close() error {
	var firstErr error
	if c.store != nil {
		if err := c.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.store = nil
	}
	if err := c.lock.Release(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func encodeFragment(f model.Fragment) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeFragment(data []byte) (model.Fragment, error) {
	var f model.Fragment
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return nil, err
	}
	return f, nil
}
