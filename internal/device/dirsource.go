package device

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// DirSource reads the device tree from a local directory, typically an
// MTP device mounted through the OS (gvfs, WPD drive letter). Rolls are
// the immediate subdirectories of the root; nested directories inside a
// roll are not descended into, matching the flat DCIM layout.
type DirSource struct {
	root   string
	opened bool
}

// NewDirSource creates a source rooted at dir. The directory is not
// touched until Open.
func NewDirSource(dir string) *DirSource {
	return &DirSource{root: dir}
}

func (s *DirSource) Open(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrDeviceUnavailable, s.root)
	}
	s.opened = true
	return nil
}

func (s *DirSource) ListRolls(ctx context.Context) ([]Roll, error) {
	if !s.opened {
		return nil, fmt.Errorf("source not opened")
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("listing rolls: %w", err)
	}
	var rolls []Roll
	for _, e := range entries {
		if e.IsDir() {
			rolls = append(rolls, Roll{Name: e.Name()})
		}
	}
	sort.Slice(rolls, func(i, j int) bool { return rolls[i].Name < rolls[j].Name })
	for i := range rolls {
		rolls[i].Ordinal = i
	}
	return rolls, nil
}

func (s *DirSource) ListFiles(ctx context.Context, roll Roll) ([]FileEntry, error) {
	dir := filepath.Join(s.root, roll.Name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &EnumerationError{Roll: roll.Name, Err: err}
	}
	var files []FileEntry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, &EnumerationError{Roll: roll.Name, Err: err}
		}
		files = append(files, FileEntry{
			Roll:    roll.Name,
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			ref:     filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *DirSource) OpenStream(ctx context.Context, entry FileEntry) (io.ReadCloser, error) {
	f, err := os.Open(entry.ref)
	if err != nil {
		return nil, fmt.Errorf("opening %s/%s: %w", entry.Roll, entry.Name, err)
	}
	return f, nil
}

func (s *DirSource) Close() error {
	s.opened = false
	return nil
}
