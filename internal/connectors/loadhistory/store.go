// Package loadhistory persists a small app-owned record of every data load
// the dashboard performs, so operators can see when live loads started
// failing over to synthetic data.
package loadhistory

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded load run.
type Entry struct {
	ID                  int64     `json:"id"`
	StartedAt           time.Time `json:"started_at"`
	DurationMS          int64     `json:"duration_ms"`
	Source              string    `json:"source"`
	PadCount            int       `json:"pad_count"`
	WellCount           int       `json:"well_count"`
	SyntheticFieldCount int       `json:"synthetic_field_count"`
	Error               string    `json:"error,omitempty"`
}

// Stats is the roll-up shown on the service-status panel.
type Stats struct {
	TotalRuns  int64      `json:"total_runs"`
	FailedRuns int64      `json:"failed_runs"`
	LastRunAt  *time.Time `json:"last_run_at,omitempty"`
}

// Store manages load-run history in SQLite.
type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS load_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  started_at DATETIME NOT NULL,
  duration_ms INTEGER NOT NULL DEFAULT 0,
  source TEXT NOT NULL,
  pad_count INTEGER NOT NULL DEFAULT 0,
  well_count INTEGER NOT NULL DEFAULT 0,
  synthetic_field_count INTEGER NOT NULL DEFAULT 0,
  error TEXT NOT NULL DEFAULT ''
);
`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_load_runs_started_at ON load_runs(started_at);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one run and returns its id.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO load_runs (started_at, duration_ms, source, pad_count, well_count, synthetic_field_count, error)
VALUES (?, ?, ?, ?, ?, ?, ?);
`, e.StartedAt.UTC(), e.DurationMS, strings.TrimSpace(e.Source), e.PadCount, e.WellCount, e.SyntheticFieldCount, strings.TrimSpace(e.Error))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Recent returns the newest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, started_at, duration_ms, source, pad_count, well_count, synthetic_field_count, error
FROM load_runs
ORDER BY started_at DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var item Entry
		if err := rows.Scan(&item.ID, &item.StartedAt, &item.DurationMS, &item.Source,
			&item.PadCount, &item.WellCount, &item.SyntheticFieldCount, &item.Error); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ServiceStats summarizes the history table for the status panel.
func (s *Store) ServiceStats(ctx context.Context) (*Stats, error) {
	out := &Stats{}
	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(CASE WHEN error <> '' THEN 1 ELSE 0 END), 0)
FROM load_runs;
`).Scan(&out.TotalRuns, &out.FailedRuns); err != nil {
		return nil, err
	}

	var last sql.NullTime
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(started_at) FROM load_runs;`).Scan(&last); err != nil {
		return nil, err
	}
	if last.Valid {
		t := last.Time.UTC()
		out.LastRunAt = &t
	}
	return out, nil
}
