package models

import "time"

// RollOutcome classifies what a whole roll amounted to once all its
// files were processed.
type RollOutcome string

const (
	// RollCompleted: at least one file landed, none failed.
	RollCompleted RollOutcome = "completed"
	// RollAlreadyComplete: every file was already present.
	RollAlreadyComplete RollOutcome = "already-complete"
	// RollWithErrors: one or more files failed to transfer.
	RollWithErrors RollOutcome = "with-errors"
)

// SessionStats holds running totals for one copy session.
type SessionStats struct {
	FilesCopied          int64
	FilesSkipped         int64
	FilesFailed          int64
	RollsTotal           int64
	RollsCompleted       int64
	RollsAlreadyComplete int64
	RollsWithErrors      int64
	RollsFailed          int64 // listing failed, files never enumerated
	BytesCopied          int64
	Elapsed              time.Duration
	AverageSpeed         float64 // bytes per second over the whole session
	FailedRolls          []string
}

// Snapshot is the periodic progress report emitted after every file.
type Snapshot struct {
	FilesProcessed     int64
	FilesTotalKnown    int64
	BytesTransferred   int64
	BytesTotalKnown    int64
	CurrentSpeed       float64 // bytes per second, trailing window
	ETA                time.Duration
	ETAKnown           bool // false until a throughput sample exists
	// Approximate stays true until every roll has been enumerated,
	// since totals can still grow.
	Approximate bool
}
