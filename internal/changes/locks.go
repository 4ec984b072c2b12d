package changes

import (
	"path/filepath"
	"sync"
)

// fileKey canonicalizes a path for lock-table and stack keying so different
// spellings of the same file serialize on the same lock.
func fileKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(abs)
}

// sameFile reports whether two path spellings address the same file.
func sameFile(a, b string) bool {
	return fileKey(a) == fileKey(b)
}

// fileLocks serializes disk-touching operations per target file. Apply and
// revert are read-modify-write over the whole file and must not interleave
// with another writer of the same file; different files proceed independently.
type fileLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFileLocks() *fileLocks {
	return &fileLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the exclusive section for path and returns its release func.
func (fl *fileLocks) lock(path string) func() {
	key := fileKey(path)
	fl.mu.Lock()
	m, ok := fl.locks[key]
	if !ok {
		m = &sync.Mutex{}
		fl.locks[key] = m
	}
	fl.mu.Unlock()
	m.Lock()
	return m.Unlock
}
