package db

import (
	"log"
	"time"

	"github.com/8emezzo/iphone-photo-copier/pkg/models"
)

// recorderBatchSize bounds how many events are buffered before they are
// written out in one transaction.
const recorderBatchSize = 100

// Recorder persists the engine's session log into the history store.
// It implements the engine's EventSink: events are buffered and flushed
// in batches, the summary closes the session. Storage errors are logged
// and swallowed, a broken history file must never fail a copy session.
type Recorder struct {
	db        *DB
	sessionID int64
	buffer    []models.Event
}

// NewRecorder opens a new session row in the store.
func NewRecorder(database *DB) (*Recorder, error) {
	id, err := database.BeginSession(time.Now())
	if err != nil {
		return nil, err
	}
	return &Recorder{db: database, sessionID: id}, nil
}

func (r *Recorder) FileEvent(e models.Event) {
	r.buffer = append(r.buffer, e)
	if len(r.buffer) >= recorderBatchSize {
		r.flush()
	}
}

func (r *Recorder) Summary(stats models.SessionStats) {
	r.flush()
	if err := r.db.FinishSession(r.sessionID, time.Now(), stats); err != nil {
		log.Printf("Failed to record session summary: %v", err)
	}
}

func (r *Recorder) flush() {
	if len(r.buffer) == 0 {
		return
	}
	if err := r.db.AddEventsBatch(r.sessionID, r.buffer); err != nil {
		log.Printf("Failed to record %d file events: %v", len(r.buffer), err)
	}
	r.buffer = r.buffer[:0]
}
