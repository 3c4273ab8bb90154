// Package store persists run results in a local SQLite database: one row
// per run plus its per-flight outcomes and per-interval queue totals.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the results database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	scenario   TEXT NOT NULL,
	seed       INTEGER NOT NULL,
	intervals  INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS flight_outcomes (
	run_id   TEXT NOT NULL REFERENCES runs(id),
	flight   TEXT NOT NULL,
	planned  INTEGER NOT NULL,
	spawned  INTEGER NOT NULL,
	departed INTEGER NOT NULL,
	missed   INTEGER NOT NULL,
	PRIMARY KEY (run_id, flight)
);
CREATE TABLE IF NOT EXISTS queue_totals (
	run_id            TEXT NOT NULL REFERENCES runs(id),
	interval          INTEGER NOT NULL,
	ticket_queued     INTEGER NOT NULL,
	checkpoint_queued INTEGER NOT NULL,
	hold_room_total   INTEGER NOT NULL,
	PRIMARY KEY (run_id, interval)
);
`

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// RunRow identifies one completed simulation run.
type RunRow struct {
	ID        string
	Scenario  string
	Seed      int64
	Intervals int
	CreatedAt string
}

// FlightOutcomeRow is one flight's final accounting for a run.
type FlightOutcomeRow struct {
	Flight   string
	Planned  int
	Spawned  int
	Departed int
	Missed   int
}

// QueueTotalsRow is the queue occupancy at one interval boundary.
type QueueTotalsRow struct {
	Interval         int
	TicketQueued     int
	CheckpointQueued int
	HoldRoomTotal    int
}

// SaveRun writes a run and its detail rows in one transaction.
func (s *Store) SaveRun(run RunRow, outcomes []FlightOutcomeRow, totals []QueueTotalsRow) error {
	if run.CreatedAt == "" {
		run.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, scenario, seed, intervals, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Scenario, run.Seed, run.Intervals, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, o := range outcomes {
		if _, err := tx.Exec(
			`INSERT INTO flight_outcomes (run_id, flight, planned, spawned, departed, missed) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, o.Flight, o.Planned, o.Spawned, o.Departed, o.Missed,
		); err != nil {
			return fmt.Errorf("insert outcome %s: %w", o.Flight, err)
		}
	}

	for _, q := range totals {
		if _, err := tx.Exec(
			`INSERT INTO queue_totals (run_id, interval, ticket_queued, checkpoint_queued, hold_room_total) VALUES (?, ?, ?, ?, ?)`,
			run.ID, q.Interval, q.TicketQueued, q.CheckpointQueued, q.HoldRoomTotal,
		); err != nil {
			return fmt.Errorf("insert queue totals interval %d: %w", q.Interval, err)
		}
	}

	return tx.Commit()
}

// Runs lists stored runs, newest first.
func (s *Store) Runs() ([]RunRow, error) {
	rows, err := s.db.Query(`SELECT id, scenario, seed, intervals, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(&r.ID, &r.Scenario, &r.Seed, &r.Intervals, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunOutcomes returns a run's per-flight outcome rows.
func (s *Store) RunOutcomes(runID string) ([]FlightOutcomeRow, error) {
	rows, err := s.db.Query(
		`SELECT flight, planned, spawned, departed, missed FROM flight_outcomes WHERE run_id = ? ORDER BY flight`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []FlightOutcomeRow
	for rows.Next() {
		var o FlightOutcomeRow
		if err := rows.Scan(&o.Flight, &o.Planned, &o.Spawned, &o.Departed, &o.Missed); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// RunQueueTotals returns a run's queue-total series in interval order.
func (s *Store) RunQueueTotals(runID string) ([]QueueTotalsRow, error) {
	rows, err := s.db.Query(
		`SELECT interval, ticket_queued, checkpoint_queued, hold_room_total FROM queue_totals WHERE run_id = ? ORDER BY interval`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query queue totals: %w", err)
	}
	defer rows.Close()

	var out []QueueTotalsRow
	for rows.Next() {
		var q QueueTotalsRow
		if err := rows.Scan(&q.Interval, &q.TicketQueued, &q.CheckpointQueued, &q.HoldRoomTotal); err != nil {
			return nil, fmt.Errorf("scan queue totals: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
