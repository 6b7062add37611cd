package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/8emezzo/iphone-photo-copier/internal/device"
	"github.com/8emezzo/iphone-photo-copier/pkg/models"
)

// EventSink receives the structured session log. Formatting and
// persistence are the sink's business, not the engine's.
type EventSink interface {
	FileEvent(models.Event)
	Summary(models.SessionStats)
}

// SnapshotFunc receives a progress snapshot after every processed file.
type SnapshotFunc func(models.Snapshot)

type nopSink struct{}

func (nopSink) FileEvent(models.Event)      {}
func (nopSink) Summary(models.SessionStats) {}

// Syncer drives one copy session: walks the device rolls, decides
// copy/skip per file against the destination index, streams the copies
// and feeds the progress estimator.
//
// Execution is strictly sequential. The device transport is stateful and
// not safe for concurrent access, so one roll and one file at a time,
// all on the caller's goroutine.
type Syncer struct {
	source     device.Source
	destRoot   string
	copier     *Copier
	estimator  *Estimator
	sink       EventSink
	onProgress SnapshotFunc
	verbose    bool
}

// SyncerConfig holds configuration for the syncer.
type SyncerConfig struct {
	// DestRoot is the resolved destination root; one subfolder per roll
	// is created beneath it.
	DestRoot string
	// Sink receives per-file events and the final summary. Optional.
	Sink EventSink
	// OnProgress receives a snapshot after every file. Optional.
	OnProgress SnapshotFunc
	// Verbose enables routine per-roll log lines. Warnings print either
	// way, prefixed with a newline so they land below a progress bar.
	Verbose bool
}

// NewSyncer creates a new syncer instance over an opened or not yet
// opened device source.
func NewSyncer(source device.Source, cfg SyncerConfig) *Syncer {
	sink := cfg.Sink
	if sink == nil {
		sink = nopSink{}
	}
	onProgress := cfg.OnProgress
	if onProgress == nil {
		onProgress = func(models.Snapshot) {}
	}
	return &Syncer{
		source:     source,
		destRoot:   cfg.DestRoot,
		copier:     NewCopier(source),
		estimator:  NewEstimator(),
		sink:       sink,
		onProgress: onProgress,
		verbose:    cfg.Verbose,
	}
}

// Run executes the whole session and returns the final stats. Only a
// device that never becomes available is fatal; per-roll enumeration
// failures and per-file transfer failures are counted and skipped over.
func (s *Syncer) Run(ctx context.Context) (models.SessionStats, error) {
	if err := s.source.Open(ctx); err != nil {
		if errors.Is(err, device.ErrDeviceUnavailable) {
			return models.SessionStats{}, err
		}
		return models.SessionStats{}, fmt.Errorf("%w: %v", device.ErrDeviceUnavailable, err)
	}
	defer s.source.Close()

	rolls, err := s.source.ListRolls(ctx)
	if err != nil {
		return models.SessionStats{}, fmt.Errorf("listing device rolls: %w", err)
	}
	s.estimator.SetRollCount(len(rolls))

	for i, roll := range rolls {
		if s.verbose {
			log.Printf("[%d/%d] Analyzing folder: %s", i+1, len(rolls), roll.Name)
		}

		// One listing per roll; the protocol re-reads the whole folder
		// on every call, so the result is materialized here and never
		// re-listed within the session.
		files, err := s.source.ListFiles(ctx, roll)
		if err != nil {
			log.Printf("\n[%d/%d] Failed to enumerate %s: %v", i+1, len(rolls), roll.Name, err)
			s.estimator.RollFailed(roll.Name)
			continue
		}
		if i == len(rolls)-1 {
			s.estimator.MarkEnumerationDone()
		}

		// The index must exist before the roll's sizes enter the known
		// totals: a roll that cannot be indexed is never processed, and
		// counting its bytes would leave the ETA chasing a remainder
		// that can never shrink.
		destDir := filepath.Join(s.destRoot, roll.Name)
		idx, err := NewRollIndex(destDir)
		if err != nil {
			log.Printf("\n[%d/%d] Failed to index destination for %s: %v", i+1, len(rolls), roll.Name, err)
			s.estimator.RollFailed(roll.Name)
			continue
		}

		var totalBytes int64
		for _, f := range files {
			totalBytes += f.Size
		}
		s.estimator.AddRollFiles(len(files), totalBytes)

		tally := s.copyRoll(ctx, files, destDir, idx)
		outcome := classifyRoll(tally, len(files))
		s.estimator.RollDone(outcome)
		if s.verbose {
			log.Printf("[%d/%d] %s: %s (%d copied, %d skipped, %d failed)",
				i+1, len(rolls), rollOutcomeLabel(outcome), roll.Name, tally.copied, tally.skipped, tally.failed)
		}
	}

	s.estimator.MarkEnumerationDone()

	stats := s.estimator.Finalize()
	s.sink.Summary(stats)
	return stats, nil
}

// rollTally counts per-file outcomes within one roll.
type rollTally struct {
	copied  int64
	skipped int64
	failed  int64
}

// classifyRoll reduces a roll's tally to its outcome: any failure makes
// it with-errors; all files already present makes it already-complete
// (an empty roll counts as already complete); anything else completed.
func classifyRoll(t rollTally, fileCount int) models.RollOutcome {
	switch {
	case t.failed > 0:
		return models.RollWithErrors
	case t.copied == 0 && t.skipped == int64(fileCount):
		return models.RollAlreadyComplete
	default:
		return models.RollCompleted
	}
}

func rollOutcomeLabel(o models.RollOutcome) string {
	switch o {
	case models.RollAlreadyComplete:
		return "Already complete"
	case models.RollWithErrors:
		return "Completed with errors"
	default:
		return "Completed"
	}
}

// copyRoll processes one materialized roll listing in enumeration order.
func (s *Syncer) copyRoll(ctx context.Context, files []device.FileEntry, destDir string, idx *RollIndex) rollTally {
	var tally rollTally
	seen := make(map[string]int, len(files))

	for _, entry := range files {
		finalName := entry.Name
		seen[entry.Name]++
		if n := seen[entry.Name]; n > 1 {
			// The device should never yield two entries with the same
			// name in one roll; if it does, the later one gets a
			// distinguishing suffix instead of silently overwriting.
			finalName = numberedName(entry.Name, n)
		}

		lookup := entry
		lookup.Name = finalName

		var result models.CopyResult
		if action, reason := Decide(lookup, idx); action == ActionSkip {
			tally.skipped++
			result = models.CopyResult{
				Roll:     entry.Roll,
				FileName: finalName,
				Outcome:  models.OutcomeSkipped,
				Reason:   reason,
			}
		} else {
			start := time.Now()
			err := s.copier.Copy(ctx, entry, destDir, finalName)
			duration := time.Since(start)
			if err != nil {
				tally.failed++
				result = models.CopyResult{
					Roll:     entry.Roll,
					FileName: finalName,
					Outcome:  models.OutcomeFailed,
					Reason:   err.Error(),
					Duration: duration,
				}
			} else {
				tally.copied++
				idx.Record(finalName, entry.Size)
				result = models.CopyResult{
					Roll:     entry.Roll,
					FileName: finalName,
					Outcome:  models.OutcomeCopied,
					Reason:   reason,
					Bytes:    entry.Size,
					Duration: duration,
				}
			}
		}

		s.estimator.Update(result, entry.Size)
		s.sink.FileEvent(models.EventFromResult(result, time.Now()))
		s.onProgress(s.estimator.Snapshot())
	}
	return tally
}

// numberedName inserts a counter before the extension:
// IMG_0001.JPG -> IMG_0001 (2).JPG.
func numberedName(name string, n int) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s (%d)%s", base, n, ext)
}
