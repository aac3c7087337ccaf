package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
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

	log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS return_estimates (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT,
			timestamp   INTEGER NOT NULL,
			ticker      TEXT NOT NULL,
			mean_return REAL,
			volatility  REAL,
			periods     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_estimates_ticker_ts ON return_estimates(ticker, timestamp)`,

		`CREATE TABLE IF NOT EXISTS projection_runs (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id               TEXT,
			timestamp            INTEGER NOT NULL,
			tickers              TEXT,
			monthly_contribution REAL,
			horizon_months       INTEGER,
			confidence           REAL,
			blended_return       REAL,
			blended_volatility   REAL,
			final_expected       REAL,
			final_lower          REAL,
			final_upper          REAL,
			invested             REAL,
			trigger_type         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projection_ts ON projection_runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordEstimate(rec *EstimateRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO return_estimates
		(run_id, timestamp, ticker, mean_return, volatility, periods)
		VALUES (?,?,?,?,?,?)`,
		rec.RunID, ts.Unix(), rec.Stats.Ticker, rec.Stats.MeanReturn, rec.Stats.Volatility, rec.Stats.Periods,
	)
	return err
}

func (r *SQLiteRecorder) RecordProjection(rec *ProjectionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO projection_runs
		(run_id, timestamp, tickers, monthly_contribution, horizon_months, confidence,
		 blended_return, blended_volatility,
		 final_expected, final_lower, final_upper, invested, trigger_type)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.RunID, ts.Unix(), strings.Join(rec.Tickers, ","), rec.MonthlyContribution, rec.HorizonMonths, rec.Confidence,
		rec.BlendedReturn, rec.BlendedVolatility,
		rec.FinalExpected, rec.FinalLower, rec.FinalUpper, rec.Invested, rec.Trigger,
	)
	return err
}

// RecentProjections returns the latest runs, newest first.
func (r *SQLiteRecorder) RecentProjections(limit int) ([]ProjectionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, timestamp, tickers, monthly_contribution, horizon_months, confidence,
		blended_return, blended_volatility, final_expected, final_lower, final_upper, invested, trigger_type
		FROM projection_runs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query projections: %w", err)
	}
	defer rows.Close()

	var out []ProjectionRecord
	for rows.Next() {
		var rec ProjectionRecord
		var ts int64
		var runID, tickers sql.NullString
		if err := rows.Scan(&runID, &ts, &tickers, &rec.MonthlyContribution, &rec.HorizonMonths, &rec.Confidence,
			&rec.BlendedReturn, &rec.BlendedVolatility, &rec.FinalExpected, &rec.FinalLower, &rec.FinalUpper,
			&rec.Invested, &rec.Trigger); err != nil {
			return nil, fmt.Errorf("scan projection: %w", err)
		}
		rec.RunID = runID.String
		rec.Time = time.Unix(ts, 0)
		if tickers.String != "" {
			rec.Tickers = strings.Split(tickers.String, ",")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
