package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/8emezzo/iphone-photo-copier/pkg/models"
)

// DB is the persistent session-history store. Every run appends one
// session row plus its per-file events, so `status` can report what a
// prior run copied, skipped and failed without the device attached.
type DB struct {
	*sql.DB
}

// New opens (creating if needed) the history database at path.
func New(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db := &DB{sqlDB}
	if err := db.initialize(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// initialize creates the necessary tables if they don't exist
func (db *DB) initialize() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at DATETIME NOT NULL,
			finished_at DATETIME,
			files_copied INTEGER DEFAULT 0,
			files_skipped INTEGER DEFAULT 0,
			files_failed INTEGER DEFAULT 0,
			rolls_failed INTEGER DEFAULT 0,
			bytes_copied INTEGER DEFAULT 0,
			elapsed_seconds REAL DEFAULT 0,
			average_speed REAL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS file_events (
			session_id INTEGER NOT NULL,
			timestamp DATETIME NOT NULL,
			roll_name TEXT NOT NULL,
			file_name TEXT NOT NULL,
			outcome TEXT NOT NULL,
			reason TEXT,
			bytes INTEGER DEFAULT 0,
			duration_ms INTEGER DEFAULT 0,
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		);
		CREATE INDEX IF NOT EXISTS idx_events_session ON file_events(session_id, outcome);
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
		PRAGMA temp_store=MEMORY;
	`)
	return err
}

// BeginSession inserts a new session row and returns its id.
func (db *DB) BeginSession(startedAt time.Time) (int64, error) {
	res, err := db.Exec(`INSERT INTO sessions (started_at) VALUES (?)`, startedAt)
	if err != nil {
		return 0, fmt.Errorf("starting session: %w", err)
	}
	return res.LastInsertId()
}

// AddEventsBatch appends file events in a single transaction.
func (db *DB) AddEventsBatch(sessionID int64, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO file_events (session_id, timestamp, roll_name, file_name, outcome, reason, bytes, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		_, err = stmt.Exec(sessionID, e.Timestamp, e.RollName, e.FileName, string(e.Outcome), e.Reason, e.Bytes, e.DurationMs)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// FinishSession records the final stats for a session.
func (db *DB) FinishSession(sessionID int64, finishedAt time.Time, stats models.SessionStats) error {
	_, err := db.Exec(`
		UPDATE sessions
		SET finished_at = ?, files_copied = ?, files_skipped = ?, files_failed = ?,
		    rolls_failed = ?, bytes_copied = ?, elapsed_seconds = ?, average_speed = ?
		WHERE id = ?
	`,
		finishedAt,
		stats.FilesCopied,
		stats.FilesSkipped,
		stats.FilesFailed,
		stats.RollsFailed,
		stats.BytesCopied,
		stats.Elapsed.Seconds(),
		stats.AverageSpeed,
		sessionID,
	)
	return err
}

// SessionRow is one history entry as reported by the status command.
type SessionRow struct {
	ID           int64
	StartedAt    time.Time
	FilesCopied  int64
	FilesSkipped int64
	FilesFailed  int64
	RollsFailed  int64
	BytesCopied  int64
	Elapsed      time.Duration
	AverageSpeed float64
}

// RecentSessions returns the most recent finished sessions, newest first.
func (db *DB) RecentSessions(limit int) ([]SessionRow, error) {
	rows, err := db.Query(`
		SELECT id, started_at, files_copied, files_skipped, files_failed,
		       rolls_failed, bytes_copied, elapsed_seconds, average_speed
		FROM sessions
		WHERE finished_at IS NOT NULL
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []SessionRow
	for rows.Next() {
		var s SessionRow
		var elapsedSeconds float64
		err = rows.Scan(&s.ID, &s.StartedAt, &s.FilesCopied, &s.FilesSkipped, &s.FilesFailed,
			&s.RollsFailed, &s.BytesCopied, &elapsedSeconds, &s.AverageSpeed)
		if err != nil {
			return nil, err
		}
		s.Elapsed = time.Duration(elapsedSeconds * float64(time.Second))
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// FailedFiles lists the failed file events of a session, for deciding
// whether a re-run is needed.
func (db *DB) FailedFiles(sessionID int64) ([]models.Event, error) {
	rows, err := db.Query(`
		SELECT timestamp, roll_name, file_name, outcome, reason, bytes, duration_ms
		FROM file_events
		WHERE session_id = ? AND outcome = 'failed'
		ORDER BY timestamp
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		var outcome string
		err = rows.Scan(&e.Timestamp, &e.RollName, &e.FileName, &outcome, &e.Reason, &e.Bytes, &e.DurationMs)
		if err != nil {
			return nil, err
		}
		e.Outcome = models.Outcome(outcome)
		events = append(events, e)
	}
	return events, rows.Err()
}
