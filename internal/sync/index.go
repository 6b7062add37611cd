package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RollIndex maps file name to size for the files already present in one
// destination roll folder. It is built from a single scan and then kept
// consistent in memory via Record, so the skip check never re-reads the
// local filesystem during a roll.
type RollIndex struct {
	sizes map[string]int64
}

// NewRollIndex scans dir once and indexes its regular files. A missing
// directory yields an empty index; the folder is created lazily on the
// first write.
func NewRollIndex(dir string) (*RollIndex, error) {
	idx := &RollIndex{sizes: make(map[string]int64)}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning destination %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".partial") {
			// Temp file from a killed run. The copy it belonged to
			// either never finished (it will be redone) or its final
			// file already exists, so the artifact is reclaimed here
			// rather than lingering next to a completed copy.
			os.Remove(filepath.Join(dir, name))
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		idx.sizes[name] = info.Size()
	}
	return idx, nil
}

// Lookup returns the indexed size for name.
func (idx *RollIndex) Lookup(name string) (int64, bool) {
	size, ok := idx.sizes[name]
	return size, ok
}

// Record registers a freshly copied file so later skip checks see it
// without re-scanning.
func (idx *RollIndex) Record(name string, size int64) {
	idx.sizes[name] = size
}

// Len reports the number of indexed files.
func (idx *RollIndex) Len() int { return len(idx.sizes) }
