package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AtomicWrite publishes the bytes produced by write to path: it writes to a
// fresh temp file in path's directory, flushes it, chmods to mode, and
// renames it over path. If write or any step before the rename fails, path
// is left untouched and the temp file is discarded.
func AtomicWrite(path string, mode os.FileMode, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("cache: creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// Best-effort: once the rename below succeeds this is a no-op
		// (the file no longer exists at tmpName).
		_ = os.Remove(tmpName)
	}()

	if werr := write(tmp); werr != nil {
		tmp.Close()
		return fmt.Errorf("cache: writing %s: %w", tmpName, werr)
	}
	if serr := tmp.Sync(); serr != nil {
		tmp.Close()
		return fmt.Errorf("cache: syncing %s: %w", tmpName, serr)
	}
	if cerr := tmp.Close(); cerr != nil {
		return fmt.Errorf("cache: closing %s: %w", tmpName, cerr)
	}
	if merr := os.Chmod(tmpName, mode); merr != nil {
		return fmt.Errorf("cache: chmod %s: %w", tmpName, merr)
	}
	if rerr := os.Rename(tmpName, path); rerr != nil {
		return fmt.Errorf("cache: renaming %s to %s: %w", tmpName, path, rerr)
	}
	return nil
}
