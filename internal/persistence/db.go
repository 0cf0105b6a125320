// Package persistence provides a SQLite archive of completed runs. The
// archive sits outside the engine core: the CLI writes to it after a run
// finishes, and nothing inside the step loop touches it.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/civicsim/heatsim/internal/scenario"
)

// DB wraps a SQLite connection for the run archive.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		scenario_id TEXT NOT NULL,
		name TEXT NOT NULL,
		seed INTEGER NOT NULL,
		grid_rows INTEGER NOT NULL,
		grid_cols INTEGER NOT NULL,
		agent_count INTEGER NOT NULL,
		days INTEGER NOT NULL,
		er_visits INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		total_cost REAL NOT NULL,
		coverage_pct REAL NOT NULL,
		complete INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS daily_metrics (
		run_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		er_visits INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		active_cost REAL NOT NULL,
		mean_temp_f REAL NOT NULL,
		PRIMARY KEY (run_id, day)
	);

	CREATE TABLE IF NOT EXISTS comparisons (
		baseline_run_id TEXT NOT NULL,
		scenario_run_id TEXT NOT NULL,
		deaths_averted INTEGER NOT NULL,
		er_visits_averted INTEGER NOT NULL,
		total_cost REAL NOT NULL,
		cost_per_life_saved REAL NOT NULL,
		coverage_pct REAL NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (baseline_run_id, scenario_run_id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_daily_run ON daily_metrics(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun writes a run summary and its daily series.
func (db *DB) SaveRun(res *scenario.Result) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	complete := 0
	if res.Complete {
		complete = 1
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO runs
		(run_id, scenario_id, name, seed, grid_rows, grid_cols, agent_count,
		 days, er_visits, deaths, total_cost, coverage_pct, complete, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID.String(), res.ScenarioID.String(), res.ScenarioName, res.Seed,
		res.GridRows, res.GridCols, res.AgentCount,
		len(res.Days), res.CumulativeERVisits, res.CumulativeDeaths,
		res.TotalCost, res.CoveragePct, complete,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO daily_metrics
		(run_id, day, er_visits, deaths, active_cost, mean_temp_f)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range res.Days {
		if _, err := stmt.Exec(res.RunID.String(), d.Day, d.ERVisits, d.Deaths, d.ActiveCost, d.MeanTempF); err != nil {
			return fmt.Errorf("insert day %d: %w", d.Day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("run archived", "run_id", res.RunID, "name", res.ScenarioName, "days", len(res.Days))
	return nil
}

// SaveComparison writes a paired comparison.
func (db *DB) SaveComparison(c *scenario.Comparison) error {
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO comparisons
		(baseline_run_id, scenario_run_id, deaths_averted, er_visits_averted,
		 total_cost, cost_per_life_saved, coverage_pct, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.BaselineRunID.String(), c.ScenarioRunID.String(),
		c.DeathsAverted, c.ERVisitsAverted,
		c.TotalCost, c.CostPerLifeSaved, c.CoveragePct,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// RunSummary is one archived run row.
type RunSummary struct {
	RunID       string  `db:"run_id"`
	Name        string  `db:"name"`
	Seed        int64   `db:"seed"`
	AgentCount  int     `db:"agent_count"`
	Days        int     `db:"days"`
	ERVisits    int     `db:"er_visits"`
	Deaths      int     `db:"deaths"`
	TotalCost   float64 `db:"total_cost"`
	CoveragePct float64 `db:"coverage_pct"`
	Complete    bool    `db:"complete"`
	CreatedAt   string  `db:"created_at"`
}

// RecentRuns returns the most recent N archived runs.
func (db *DB) RecentRuns(limit int) ([]RunSummary, error) {
	var runs []RunSummary
	err := db.conn.Select(&runs,
		`SELECT run_id, name, seed, agent_count, days, er_visits, deaths,
		        total_cost, coverage_pct, complete, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	return runs, err
}

// DailySeries returns the archived daily metrics for a run, in day order.
func (db *DB) DailySeries(runID string) ([]scenario.DailyMetrics, error) {
	var days []scenario.DailyMetrics
	err := db.conn.Select(&days,
		`SELECT day, er_visits, deaths, active_cost, mean_temp_f
		 FROM daily_metrics WHERE run_id = ? ORDER BY day`,
		runID,
	)
	return days, err
}
