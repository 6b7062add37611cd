package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrDeviceUnavailable is returned by Open when no device is present or
// access was not authorized. It is the only fatal error of a session.
var ErrDeviceUnavailable = errors.New("device unavailable")

// EnumerationError reports a failed file listing for a single roll. The
// session continues with the next roll.
type EnumerationError struct {
	Roll string
	Err  error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumerating roll %s: %v", e.Roll, e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

// Roll is a top-level device folder representing one capture batch.
type Roll struct {
	Name    string
	Ordinal int
}

// FileEntry is one file node yielded by device enumeration.
type FileEntry struct {
	Roll    string
	Name    string
	Size    int64
	ModTime time.Time
	// ref is the transport-specific handle used by OpenStream.
	ref string
}

// Source is the enumeration-only view of a connected device. The
// underlying transport is stateful and not safe for concurrent use:
// callers must drive a Source from a single goroutine and must not share
// it. Every ListFiles call is a device round-trip, so its result must be
// materialized once per roll rather than re-listed.
type Source interface {
	// Open establishes the connection to the device root. It returns
	// ErrDeviceUnavailable when no device is present.
	Open(ctx context.Context) error

	// ListRolls returns the device's top-level folders in a stable order
	// for this session.
	ListRolls(ctx context.Context) ([]Roll, error)

	// ListFiles enumerates one roll. The listing is slow on a cold
	// transport cache and is not restartable.
	ListFiles(ctx context.Context, roll Roll) ([]FileEntry, error)

	// OpenStream returns the entry's content positioned at offset 0.
	// Closing the reader releases the device-side handle.
	OpenStream(ctx context.Context, entry FileEntry) (io.ReadCloser, error)

	// Close releases the device connection.
	Close() error
}
