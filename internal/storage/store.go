package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivyxu/EquityGo/internal/equity"
	"github.com/ivyxu/EquityGo/pkg/sqlite"
)

// Store persists completed projection runs, so scenarios can be
// compared after the fact without re-running them.
type Store struct {
	db *sql.DB
}

// RunRecord is one persisted projection run. Summary columns are
// denormalized for listing; the full result lives in the JSON blob.
type RunRecord struct {
	ID            int64
	Name          string
	CreatedAt     time.Time
	StartYear     int
	EndYear       int
	TotalTax      string
	TotalDonated  string
	TotalMatch    string
	FinalCash     string
	FinalNetWorth string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	name            TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	start_year      INTEGER NOT NULL,
	end_year        INTEGER NOT NULL,
	total_tax       TEXT NOT NULL,
	total_donated   TEXT NOT NULL,
	total_match     TEXT NOT NULL,
	final_cash      TEXT NOT NULL,
	final_net_worth TEXT NOT NULL,
	result_json     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Open opens the run-history database at dbPath, creating the schema
// if needed.
func Open(dbPath string) (*Store, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records one completed projection and returns its row id.
func (s *Store) SaveRun(res *equity.ProjectionResult) (int64, error) {
	if len(res.Years) == 0 {
		return 0, fmt.Errorf("save run: empty projection result")
	}
	blob, err := json.Marshal(res)
	if err != nil {
		return 0, fmt.Errorf("encode projection result: %w", err)
	}

	first := res.Years[0]
	last := res.Years[len(res.Years)-1]
	out, err := s.db.Exec(`
		INSERT INTO runs (name, start_year, end_year, total_tax, total_donated,
			total_match, final_cash, final_net_worth, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.PlanName, first.Year, last.Year,
		res.Summary.TotalTax.StringFixed(2),
		res.Summary.TotalDonated.StringFixed(2),
		res.Summary.TotalMatch.StringFixed(2),
		res.Summary.FinalCash.StringFixed(2),
		res.Summary.FinalNetWorth.StringFixed(2),
		string(blob),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := out.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	zap.L().Debug("projection run saved",
		zap.Int64("id", id),
		zap.String("name", res.PlanName),
	)
	return id, nil
}

// ListRuns returns up to limit runs, most recent first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, name, created_at, start_year, end_year,
			total_tax, total_donated, total_match, final_cash, final_net_worth
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt, &r.StartYear, &r.EndYear,
			&r.TotalTax, &r.TotalDonated, &r.TotalMatch, &r.FinalCash, &r.FinalNetWorth); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun loads one run's full projection result by row id.
func (s *Store) GetRun(id int64) (*equity.ProjectionResult, error) {
	var blob string
	err := s.db.QueryRow(`SELECT result_json FROM runs WHERE id = ?`, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %d: %w", id, err)
	}

	var res equity.ProjectionResult
	if err := json.Unmarshal([]byte(blob), &res); err != nil {
		return nil, fmt.Errorf("decode run %d: %w", id, err)
	}
	return &res, nil
}
