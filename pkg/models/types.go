package models

import "time"

// Outcome classifies the result of processing a single device file.
type Outcome string

const (
	OutcomeCopied  Outcome = "copied"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// CopyResult is the outcome of one file's copy attempt.
type CopyResult struct {
	Roll     string
	FileName string
	Outcome  Outcome
	// Reason distinguishes a fresh copy from a size-mismatch overwrite
	// and records the failure cause for failed files.
	Reason   string
	Bytes    int64
	Duration time.Duration
}

// Event is the per-file structured record handed to the session log.
type Event struct {
	Timestamp  time.Time
	RollName   string
	FileName   string
	Outcome    Outcome
	Reason     string
	Bytes      int64
	DurationMs int64
}

// EventFromResult builds the log event for a finished copy attempt.
func EventFromResult(r CopyResult, at time.Time) Event {
	return Event{
		Timestamp:  at,
		RollName:   r.Roll,
		FileName:   r.FileName,
		Outcome:    r.Outcome,
		Reason:     r.Reason,
		Bytes:      r.Bytes,
		DurationMs: r.Duration.Milliseconds(),
	}
}
