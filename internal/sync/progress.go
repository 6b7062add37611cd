package sync

import (
	"time"

	"github.com/8emezzo/iphone-photo-copier/pkg/models"
)

const (
	// trailingSamples bounds the throughput window by file count.
	trailingSamples = 16
	// trailingAge bounds it by wall-clock age, so a long pause between
	// rolls does not keep stale speed readings alive.
	trailingAge = 60 * time.Second
)

type sample struct {
	bytes    int64
	duration time.Duration
	at       time.Time
}

// Estimator folds CopyResults into SessionStats and derives a
// trailing-window throughput. Per-file latency swings wildly between
// cache-cold and cache-warm device listings, so a lifetime average would
// lag badly after a slow start; only the most recent copies are used for
// the current speed and the ETA.
//
// Owned by the single session goroutine, no locking.
type Estimator struct {
	stats     models.SessionStats
	startTime time.Time

	samples []sample

	filesProcessed  int64
	filesTotalKnown int64
	bytesTotalKnown int64
	// bytesAccounted counts entry sizes for every processed file,
	// whatever the outcome, so remaining-bytes math stays consistent.
	bytesAccounted int64

	enumerationDone bool
}

func NewEstimator() *Estimator {
	return &Estimator{startTime: time.Now()}
}

// SetRollCount records how many rolls the device reported.
func (e *Estimator) SetRollCount(n int) {
	e.stats.RollsTotal = int64(n)
}

// AddRollFiles registers a freshly enumerated roll's totals. Called once
// per roll; ETA stays flagged approximate until MarkEnumerationDone.
func (e *Estimator) AddRollFiles(fileCount int, totalBytes int64) {
	e.filesTotalKnown += int64(fileCount)
	e.bytesTotalKnown += totalBytes
}

// MarkEnumerationDone records that every roll has been listed, so the
// known totals are final and the ETA is no longer an approximation.
func (e *Estimator) MarkEnumerationDone() {
	e.enumerationDone = true
}

// RollFailed counts a roll whose listing failed. Its files never enter
// the totals.
func (e *Estimator) RollFailed(name string) {
	e.stats.RollsFailed++
	e.stats.FailedRolls = append(e.stats.FailedRolls, name)
}

// RollDone folds a processed roll's outcome into the session totals.
func (e *Estimator) RollDone(outcome models.RollOutcome) {
	switch outcome {
	case models.RollCompleted:
		e.stats.RollsCompleted++
	case models.RollAlreadyComplete:
		e.stats.RollsAlreadyComplete++
	case models.RollWithErrors:
		e.stats.RollsWithErrors++
	}
}

// Update folds one file result into the running stats.
func (e *Estimator) Update(result models.CopyResult, entrySize int64) {
	e.filesProcessed++
	e.bytesAccounted += entrySize

	switch result.Outcome {
	case models.OutcomeCopied:
		e.stats.FilesCopied++
		e.stats.BytesCopied += result.Bytes
		e.samples = append(e.samples, sample{
			bytes:    result.Bytes,
			duration: result.Duration,
			at:       time.Now(),
		})
		if len(e.samples) > trailingSamples {
			e.samples = e.samples[1:]
		}
	case models.OutcomeSkipped:
		e.stats.FilesSkipped++
	case models.OutcomeFailed:
		e.stats.FilesFailed++
	}
}

// Speed returns the trailing-window throughput in bytes per second, or
// 0 when no copy has landed inside the window yet.
func (e *Estimator) Speed() float64 {
	cutoff := time.Now().Add(-trailingAge)
	var bytes int64
	var busy time.Duration
	for _, s := range e.samples {
		if s.at.Before(cutoff) {
			continue
		}
		bytes += s.bytes
		busy += s.duration
	}
	if busy <= 0 {
		return 0
	}
	return float64(bytes) / busy.Seconds()
}

// Snapshot produces the progress report emitted after every file.
func (e *Estimator) Snapshot() models.Snapshot {
	snap := models.Snapshot{
		FilesProcessed:   e.filesProcessed,
		FilesTotalKnown:  e.filesTotalKnown,
		BytesTransferred: e.stats.BytesCopied,
		BytesTotalKnown:  e.bytesTotalKnown,
		CurrentSpeed:     e.Speed(),
		Approximate:      !e.enumerationDone,
	}
	remaining := e.bytesTotalKnown - e.bytesAccounted
	if snap.CurrentSpeed > 0 && remaining >= 0 {
		snap.ETA = time.Duration(float64(remaining) / snap.CurrentSpeed * float64(time.Second))
		snap.ETAKnown = true
	}
	return snap
}

// Finalize computes the end-of-session totals.
func (e *Estimator) Finalize() models.SessionStats {
	stats := e.stats
	stats.Elapsed = time.Since(e.startTime)
	if stats.Elapsed > 0 {
		stats.AverageSpeed = float64(stats.BytesCopied) / stats.Elapsed.Seconds()
	}
	return stats
}
