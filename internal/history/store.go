// Package history persists completed diarization sessions in SQLite.
// Only metadata and segments are stored; the audio itself never is.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dan-lund/diamond/internal/types"
)

// Store handles SQLite persistence of session metadata.
type Store struct {
	db *sql.DB
}

// Session is one completed diarization run.
type Session struct {
	TaskID       string
	RequestName  string
	SourceFile   string
	Duration     float64
	SegmentCount int
	Segments     []types.Segment
	CreatedAt    time.Time
}

// Open creates or connects to the session database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id TEXT NOT NULL UNIQUE,
		request_name TEXT NOT NULL,
		source_file TEXT NOT NULL,
		duration REAL,
		segment_count INTEGER,
		segments TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveSession records one completed session.
func (s *Store) SaveSession(taskID, requestName, sourceFile string, duration float64, segs []types.Segment) error {
	segJSON, err := json.Marshal(segs)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}

	query := `
	INSERT INTO sessions (task_id, request_name, source_file, duration, segment_count, segments, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query, taskID, requestName, sourceFile, duration, len(segs),
		string(segJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// GetSession retrieves one session by task identifier.
func (s *Store) GetSession(taskID string) (*Session, error) {
	query := `
	SELECT task_id, request_name, source_file, duration, segment_count, segments, created_at
	FROM sessions WHERE task_id = ?
	`
	return scanSession(s.db.QueryRow(query, taskID))
}

// ListSessions returns the most recent sessions, newest first.
func (s *Store) ListSessions(limit int) ([]*Session, error) {
	query := `
	SELECT task_id, request_name, source_file, duration, segment_count, segments, created_at
	FROM sessions ORDER BY created_at DESC LIMIT ?
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var (
		session Session
		segJSON string
	)

	err := row.Scan(&session.TaskID, &session.RequestName, &session.SourceFile,
		&session.Duration, &session.SegmentCount, &segJSON, &session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if err := json.Unmarshal([]byte(segJSON), &session.Segments); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	return &session, nil
}
