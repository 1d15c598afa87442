// Package journal keeps a SQLite log of invocation outcomes.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/decyphertek-ai/adminotaur/internal/registry"
	"github.com/decyphertek-ai/adminotaur/internal/runtime"
)

const previewLen = 100

// Entry is one journaled invocation.
type Entry struct {
	InvocationID string              `json:"invocation_id"`
	SkillID      string              `json:"skill_id"`
	Mode         string              `json:"mode"`
	Succeeded    bool                `json:"succeeded"`
	FailureKind  runtime.FailureKind `json:"failure_kind,omitempty"`
	Latency      time.Duration       `json:"latency"`
	ExitCode     int                 `json:"exit_code"`
	Preview      string              `json:"preview"`
	CreatedAt    time.Time           `json:"created_at"`
}

// Journal is a SQLite-backed runtime.Recorder.
type Journal struct {
	db *sql.DB
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS invocations (
		invocation_id TEXT PRIMARY KEY,
		skill_id      TEXT NOT NULL,
		mode          TEXT NOT NULL DEFAULT '',
		succeeded     INTEGER NOT NULL,
		failure_kind  TEXT NOT NULL DEFAULT '',
		latency_ms    INTEGER NOT NULL,
		exit_code     INTEGER NOT NULL DEFAULT 0,
		preview       TEXT NOT NULL DEFAULT '',
		created_at    INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invocations_created ON invocations(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_invocations_skill ON invocations(skill_id)`,
}

// Open opens (or creates) the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal %s: %w", path, err)
	}
	return j, nil
}

func (j *Journal) migrate() error {
	for _, stmt := range migrations {
		if _, err := j.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record stores one result. It satisfies runtime.Recorder.
func (j *Journal) Record(ctx context.Context, r *runtime.Result) error {
	mode := ""
	if r.Mode != 0 {
		mode = r.Mode.String()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO invocations
			(invocation_id, skill_id, mode, succeeded, failure_kind, latency_ms, exit_code, preview, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.InvocationID, r.SkillID, mode, r.Succeeded, string(r.FailureKind),
		r.Latency.Milliseconds(), r.ExitCode, clip(r.Text), r.StartedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("recording invocation %s: %w", r.InvocationID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT invocation_id, skill_id, mode, succeeded, failure_kind, latency_ms, exit_code, preview, created_at
		FROM invocations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			kind      string
			latencyMS int64
			created   int64
		)
		if err := rows.Scan(&e.InvocationID, &e.SkillID, &e.Mode, &e.Succeeded, &kind, &latencyMS, &e.ExitCode, &e.Preview, &created); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		e.FailureKind = runtime.FailureKind(kind)
		e.Latency = time.Duration(latencyMS) * time.Millisecond
		e.CreatedAt = time.Unix(0, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func clip(s string) string {
	r := []rune(s)
	if len(r) > previewLen {
		return string(r[:previewLen])
	}
	return s
}

var _ runtime.Recorder = (*Journal)(nil)

// ParseMode converts a stored mode back to an ExecutionMode. Empty modes
// (unknown skills) return zero.
func ParseMode(s string) registry.ExecutionMode {
	m, err := registry.ParseExecutionMode(s)
	if err != nil {
		return 0
	}
	return m
}
