package sync

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/8emezzo/iphone-photo-copier/internal/device"
)

// copyChunkSize bounds per-file memory while streaming. Device files can
// be multi-gigabyte videos, so whole-file buffering is never an option.
const copyChunkSize = 256 * 1024

// Copier streams single files from the device to the destination,
// writing through a temporary file and renaming only after the byte
// count has been verified. A kill mid-copy therefore leaves at most one
// *.partial file and never a truncated final-named file.
type Copier struct {
	source device.Source
	buf    []byte
}

func NewCopier(source device.Source) *Copier {
	return &Copier{source: source, buf: make([]byte, copyChunkSize)}
}

// Copy transfers one entry into destDir under finalName. The destination
// directory is created if needed. On success the file's modified time is
// set to the device timestamp, best effort.
func (c *Copier) Copy(ctx context.Context, entry device.FileEntry, destDir, finalName string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	stream, err := c.source.OpenStream(ctx, entry)
	if err != nil {
		return err
	}
	defer stream.Close()

	tmpPath := filepath.Join(destDir, "."+finalName+".partial")
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	written, err := io.CopyBuffer(tmp, stream, c.buf)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("streaming %s/%s: %w", entry.Roll, entry.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if written != entry.Size {
		os.Remove(tmpPath)
		return fmt.Errorf("size mismatch for %s/%s: wrote %d bytes, device reports %d",
			entry.Roll, entry.Name, written, entry.Size)
	}

	finalPath := filepath.Join(destDir, finalName)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming into place: %w", err)
	}

	if !entry.ModTime.IsZero() {
		// Not all filesystems support this; failure is not a copy failure.
		_ = os.Chtimes(finalPath, entry.ModTime, entry.ModTime)
	}
	return nil
}
