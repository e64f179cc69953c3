package scan

import "os"

// OSFS is the real-filesystem implementation of FS, backed by the standard
// library.
type OSFS struct{}

var _ FS = OSFS{}

func (OSFS) ReadDir(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			// Follow the symlink's target type so a symlinked directory is
			// still descended into; a broken or non-directory target is
			// simply treated as a file and will fail frame.Parse or stat
			// harmlessly later.
			if info, err := os.Stat(path + string(os.PathSeparator) + e.Name()); err == nil {
				isDir = info.IsDir()
			}
		}
		out = append(out, DirEntry{Name: e.Name(), IsDir: isDir})
	}
	return out, nil
}

func (OSFS) ModTime(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.ModTime().Unix(), nil
}
