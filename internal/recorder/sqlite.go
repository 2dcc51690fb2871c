package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_runs (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL,
			run_date        TEXT NOT NULL,
			timestamp       INTEGER NOT NULL,
			spot_price      REAL,
			signal_value    REAL,
			signal_source   TEXT,
			gma200          REAL,
			fair_value      REAL,
			mvrv            REAL,
			proposed_action TEXT,
			final_action    TEXT,
			units_used      INTEGER,
			units_remaining INTEGER,
			ledger_ok       INTEGER,
			degraded        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_date ON daily_runs(run_date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun inserts a snapshot, assigning a RunID and CreatedAt when missing.
func (r *SQLiteRecorder) RecordRun(snap *RunSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if snap.RunID == "" {
		snap.RunID = uuid.NewString()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}
	var mvrv sql.NullFloat64
	if snap.MVRV != nil {
		mvrv = sql.NullFloat64{Float64: *snap.MVRV, Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO daily_runs
		(run_id, run_date, timestamp, spot_price, signal_value, signal_source,
		 gma200, fair_value, mvrv, proposed_action, final_action,
		 units_used, units_remaining, ledger_ok, degraded)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.RunID, snap.Date, snap.CreatedAt.Unix(), snap.SpotPrice, snap.SignalValue, snap.SignalSource,
		snap.GMA200, snap.FairValue, mvrv, snap.Proposed, snap.Action,
		snap.UnitsUsed, snap.UnitsRemaining, snap.LedgerOK, snap.Degraded,
	)
	return err
}

// RecentRuns returns up to limit snapshots, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, run_date, timestamp, spot_price, signal_value, signal_source,
		gma200, fair_value, mvrv, proposed_action, final_action,
		units_used, units_remaining, ledger_ok, degraded
		FROM daily_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSnapshot
	for rows.Next() {
		var s RunSnapshot
		var ts int64
		var mvrv sql.NullFloat64
		if err := rows.Scan(&s.RunID, &s.Date, &ts, &s.SpotPrice, &s.SignalValue, &s.SignalSource,
			&s.GMA200, &s.FairValue, &mvrv, &s.Proposed, &s.Action,
			&s.UnitsUsed, &s.UnitsRemaining, &s.LedgerOK, &s.Degraded); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.CreatedAt = time.Unix(ts, 0)
		if mvrv.Valid {
			v := mvrv.Float64
			s.MVRV = &v
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
