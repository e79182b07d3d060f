// Package store persists intake sessions in a local SQLite database.
// One row per session; transcript and profile are JSON text columns and
// every save is a full overwrite of the mutable fields.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/studyloop/intake/internal/model/session"
	"github.com/studyloop/intake/internal/profile"
)

// timeLayout is fixed-width (no fractional-second trimming), so the BINARY
// collation of the created_at TEXT column agrees with chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	transcript TEXT NOT NULL DEFAULT '[]',
	profile    TEXT NOT NULL DEFAULT '{}',
	complete   INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at);
`

// Store is the durable session store.
type Store struct {
	db *sql.DB
}

// Open initializes the SQLite database at the given path, creating the
// parent directory and schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL keeps a crashed write from clobbering the previous row state;
	// the busy timeout covers concurrent turns hitting the single file.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load fetches a session by id, creating and persisting an empty one when
// absent. This is a side-effecting read: after Load the session exists
// durably either way.
func (s *Store) Load(ctx context.Context, sessionID string) (session.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT transcript, profile, complete, created_at FROM sessions WHERE session_id = ?`,
		sessionID)

	var (
		transcriptJSON string
		profileJSON    string
		complete       int
		createdAt      string
	)
	err := row.Scan(&transcriptJSON, &profileJSON, &complete, &createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return s.create(ctx, sessionID)
	case err != nil:
		return session.Session{}, fmt.Errorf("load session %q: %w", sessionID, err)
	}

	var transcript []session.Turn
	if err := json.Unmarshal([]byte(transcriptJSON), &transcript); err != nil {
		return session.Session{}, fmt.Errorf("decode transcript for %q: %w", sessionID, err)
	}
	prof := profile.New()
	if err := json.Unmarshal([]byte(profileJSON), prof); err != nil {
		return session.Session{}, fmt.Errorf("decode profile for %q: %w", sessionID, err)
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return session.Session{}, fmt.Errorf("decode created_at for %q: %w", sessionID, err)
	}

	return session.Session{
		ID:         sessionID,
		Transcript: transcript,
		Profile:    prof,
		Complete:   complete != 0,
		CreatedAt:  created,
	}, nil
}

func (s *Store) create(ctx context.Context, sessionID string) (session.Session, error) {
	created := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, transcript, profile, complete, created_at) VALUES (?, '[]', '{}', 0, ?)`,
		sessionID, created.Format(timeLayout))
	if err != nil {
		return session.Session{}, fmt.Errorf("create session %q: %w", sessionID, err)
	}
	return session.Session{
		ID:         sessionID,
		Transcript: []session.Turn{},
		Profile:    profile.New(),
		CreatedAt:  created,
	}, nil
}

// Save overwrites the mutable fields of a session. The single UPDATE rides
// on SQLite's journal, so an interrupted write leaves the prior row intact.
func (s *Store) Save(ctx context.Context, sessionID string, prof *profile.Map, transcript []session.Turn, complete bool) error {
	if transcript == nil {
		transcript = []session.Turn{}
	}
	transcriptJSON, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("encode transcript for %q: %w", sessionID, err)
	}
	if prof == nil {
		prof = profile.New()
	}
	profileJSON, err := json.Marshal(prof)
	if err != nil {
		return fmt.Errorf("encode profile for %q: %w", sessionID, err)
	}

	completeInt := 0
	if complete {
		completeInt = 1
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE sessions SET transcript = ?, profile = ?, complete = ? WHERE session_id = ?`,
		string(transcriptJSON), string(profileJSON), completeInt, sessionID)
	if err != nil {
		return fmt.Errorf("save session %q: %w", sessionID, err)
	}
	return nil
}

// List returns session summaries ordered by creation time, newest first.
func (s *Store) List(ctx context.Context) ([]session.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, complete, created_at FROM sessions ORDER BY created_at DESC, session_id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	summaries := make([]session.Summary, 0, 16)
	for rows.Next() {
		var (
			id        string
			complete  int
			createdAt string
		)
		if err := rows.Scan(&id, &complete, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("decode created_at for %q: %w", id, err)
		}
		summaries = append(summaries, session.Summary{
			ID:        id,
			Complete:  complete != 0,
			CreatedAt: created,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return summaries, nil
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session %q: %w", sessionID, err)
	}
	return nil
}
