// Package archive provides SQLite-backed persistence for completed turns.
// Every finished turn is written in full: the routing trail, each agent
// response, and the synthesized summary, keyed by context so a follow-up
// question can load the history it needs.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adperf/steward/internal/turn"
	"github.com/adperf/steward/pkg/models"
)

// DB wraps the turn archive database.
type DB struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultPath returns the archive location under XDG data.
func DefaultPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "steward", "archive.db")
}

// Open opens the archive at the given path, creating parent directories
// and applying the schema. WAL mode is enabled for concurrent reads.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS turns (
			turn_id TEXT PRIMARY KEY,
			context_id TEXT NOT NULL,
			request TEXT NOT NULL,
			outcome TEXT NOT NULL,
			summary TEXT NOT NULL,
			conversation TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS agent_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			turn_id TEXT NOT NULL REFERENCES turns(turn_id),
			seq INTEGER NOT NULL,
			agent TEXT NOT NULL,
			response TEXT NOT NULL,
			error TEXT NOT NULL,
			completed_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_turns_context ON turns(context_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_runs_turn ON agent_runs(turn_id, seq);
	`)
	if err != nil {
		return fmt.Errorf("apply archive schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Path returns the archive file path.
func (db *DB) Path() string {
	return db.path
}

// SaveTurn persists a completed turn atomically.
func (db *DB) SaveTurn(ctx context.Context, state *turn.State, outcome string, summary string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	conversation, err := json.Marshal(state.Conversation)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO turns (turn_id, context_id, request, outcome, summary, conversation)
		VALUES (?, ?, ?, ?, ?, ?)`,
		state.TurnID, state.ContextID, state.OriginalRequest, outcome, summary, string(conversation))
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	for i, r := range state.Responses {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO agent_runs (turn_id, seq, agent, response, error, completed_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			state.TurnID, i, string(r.Agent), r.Response, r.Err, r.CompletedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert agent run %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// TurnRecord is a persisted turn as read back from the archive.
type TurnRecord struct {
	TurnID    string
	ContextID string
	Request   string
	Outcome   string
	Summary   string
	Responses []models.AgentResponse
}

// TurnsForContext returns up to limit most recent turns for a context,
// oldest first.
func (db *DB) TurnsForContext(ctx context.Context, contextID string, limit int) ([]TurnRecord, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT turn_id, context_id, request, outcome, summary
		FROM turns WHERE context_id = ?
		ORDER BY created_at DESC LIMIT ?`, contextID, limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var records []TurnRecord
	for rows.Next() {
		var rec TurnRecord
		if err := rows.Scan(&rec.TurnID, &rec.ContextID, &rec.Request, &rec.Outcome, &rec.Summary); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	for i := range records {
		responses, err := db.responsesForTurn(ctx, records[i].TurnID)
		if err != nil {
			return nil, err
		}
		records[i].Responses = responses
	}
	return records, nil
}

func (db *DB) responsesForTurn(ctx context.Context, turnID string) ([]models.AgentResponse, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT agent, response, error, completed_at
		FROM agent_runs WHERE turn_id = ? ORDER BY seq`, turnID)
	if err != nil {
		return nil, fmt.Errorf("query agent runs: %w", err)
	}
	defer rows.Close()

	var responses []models.AgentResponse
	for rows.Next() {
		var r models.AgentResponse
		var completed string
		if err := rows.Scan(&r.Agent, &r.Response, &r.Err, &completed); err != nil {
			return nil, fmt.Errorf("scan agent run: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, completed); err == nil {
			r.CompletedAt = ts
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}
