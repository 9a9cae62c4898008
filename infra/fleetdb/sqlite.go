// Package fleetdb persists trainsets and the fleet metrics rollup in SQLite.
package fleetdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/railfleet/core/fleetmetrics"
	"github.com/kilianp07/railfleet/core/fleetstatus"
	"github.com/kilianp07/railfleet/core/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS trainsets (
    id TEXT PRIMARY KEY,
    number TEXT NOT NULL,
    status TEXT NOT NULL,
    record TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS fleet_metrics (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    record TEXT NOT NULL
);`

// SQLiteStore implements fleetstatus.Store on a SQLite database. Mutations
// and the metrics recomputation they trigger share one transaction.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ fleetstatus.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection serializes writers and keeps in-memory databases alive
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// WithClock replaces the time source used to stamp metrics.
func (s *SQLiteStore) WithClock(now func() time.Time) *SQLiteStore {
	s.now = now
	return s
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadAll(ctx context.Context, q queryer) ([]model.Trainset, error) {
	rows, err := q.QueryContext(ctx, `SELECT record FROM trainsets ORDER BY number, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	res := []model.Trainset{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var t model.Trainset
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			return nil, fmt.Errorf("decode trainset: %w", err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func loadOne(ctx context.Context, q queryer, id string) (model.Trainset, error) {
	var data string
	err := q.QueryRowContext(ctx, `SELECT record FROM trainsets WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Trainset{}, fmt.Errorf("%s: %w", id, fleetstatus.ErrNotFound)
	}
	if err != nil {
		return model.Trainset{}, err
	}
	var t model.Trainset
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return model.Trainset{}, fmt.Errorf("decode trainset %s: %w", id, err)
	}
	return t, nil
}

func loadMetrics(ctx context.Context, q queryer) (model.FleetMetrics, error) {
	var data string
	err := q.QueryRowContext(ctx, `SELECT record FROM fleet_metrics WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FleetMetrics{}, nil
	}
	if err != nil {
		return model.FleetMetrics{}, err
	}
	var m model.FleetMetrics
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return model.FleetMetrics{}, fmt.Errorf("decode metrics: %w", err)
	}
	return m, nil
}

func saveTrainset(ctx context.Context, tx *sql.Tx, t model.Trainset) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO trainsets (id, number, status, record) VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET number = excluded.number, status = excluded.status, record = excluded.record`,
		t.ID, t.Number, string(t.Status), string(b))
	return err
}

func saveMetrics(ctx context.Context, tx *sql.Tx, m model.FleetMetrics) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO fleet_metrics (id, record) VALUES (1, ?)
        ON CONFLICT(id) DO UPDATE SET record = excluded.record`, string(b))
	return err
}

// withTx runs fn in a transaction, committing on success.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("rollback: %v (cause: %w)", rerr, err)
		}
		return err
	}
	return tx.Commit()
}

// refreshLocked recomputes the rollup inside tx.
func (s *SQLiteStore) refreshLocked(ctx context.Context, tx *sql.Tx) (model.FleetMetrics, error) {
	prev, err := loadMetrics(ctx, tx)
	if err != nil {
		return model.FleetMetrics{}, err
	}
	all, err := loadAll(ctx, tx)
	if err != nil {
		return model.FleetMetrics{}, err
	}
	m := fleetmetrics.Refresh(prev, all, s.now())
	if err := saveMetrics(ctx, tx, m); err != nil {
		return model.FleetMetrics{}, err
	}
	return m, nil
}

func (s *SQLiteStore) Snapshot(ctx context.Context) ([]model.Trainset, error) {
	return loadAll(ctx, s.db)
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (model.Trainset, error) {
	return loadOne(ctx, s.db, id)
}

func (s *SQLiteStore) Upsert(ctx context.Context, t model.Trainset) (model.FleetMetrics, error) {
	if err := t.Validate(); err != nil {
		return model.FleetMetrics{}, err
	}
	var m model.FleetMetrics
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := saveTrainset(ctx, tx, t); err != nil {
			return err
		}
		var err error
		m, err = s.refreshLocked(ctx, tx)
		return err
	})
	return m, err
}

// UpdateStatus reads the previous status, writes the new one and refreshes
// the rollup in one transaction.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status model.Status) (fleetstatus.StatusUpdate, error) {
	if !status.Valid() {
		return fleetstatus.StatusUpdate{}, fmt.Errorf("%q: %w", status, model.ErrInvalidStatus)
	}
	var u fleetstatus.StatusUpdate
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		t, err := loadOne(ctx, tx, id)
		if err != nil {
			return err
		}
		u.Previous = t.Status
		t.Status = status
		if err := saveTrainset(ctx, tx, t); err != nil {
			return err
		}
		u.Trainset = t
		u.Metrics, err = s.refreshLocked(ctx, tx)
		return err
	})
	if err != nil {
		return fleetstatus.StatusUpdate{}, err
	}
	return u, nil
}

func (s *SQLiteStore) LatestMetrics(ctx context.Context) (model.FleetMetrics, error) {
	return loadMetrics(ctx, s.db)
}

func (s *SQLiteStore) RecordSchedule(ctx context.Context, averageConfidence float64) (model.FleetMetrics, error) {
	var m model.FleetMetrics
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		prev, err := loadMetrics(ctx, tx)
		if err != nil {
			return err
		}
		m = fleetmetrics.RecordSchedule(prev, averageConfidence, s.now())
		return saveMetrics(ctx, tx, m)
	})
	return m, err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
