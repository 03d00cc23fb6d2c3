// Package archive keeps a SQLite record of completed runs: their
// parameters, seed, diagnostic totals and both density profiles.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/danieljhkim/lanesim/internal/lattice"
	"github.com/danieljhkim/lanesim/internal/sim"
)

// ErrNotFound is returned when a run id is not in the archive.
var ErrNotFound = errors.New("run not found")

// RunRecord describes one archived run.
type RunRecord struct {
	ID        string        `json:"id"`
	Case      string        `json:"case,omitempty"`
	Param     string        `json:"param,omitempty"`
	Value     float64       `json:"value"`
	Seed      uint64        `json:"seed"`
	Config    sim.Config    `json:"config"`
	Totals    sim.Totals    `json:"totals"`
	MeanA     float64       `json:"mean_a"`
	MeanB     float64       `json:"mean_b"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store is a SQLite-backed run archive.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// Open opens or creates the archive at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Record stores a run and its density profiles, replacing any earlier
// record with the same id.
func (s *Store) Record(ctx context.Context, rec RunRecord, rhoA, rhoB []float64) error {
	if rec.ID == "" {
		return fmt.Errorf("run id is required")
	}
	if len(rhoA) != rec.Config.Length || len(rhoB) != rec.Config.Length {
		return fmt.Errorf("density length mismatch: lane A %d, lane B %d, lattice %d", len(rhoA), len(rhoB), rec.Config.Length)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, rec.ID); err != nil {
		return fmt.Errorf("failed to replace run %s: %w", rec.ID, err)
	}

	cfg := rec.Config
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, case_id, param, value, seed,
			length, particles, hop_a, convert_ab, hop_b, convert_ba, alpha, beta, steps, warmup,
			proposed, accepted, dropped, injected, extracted,
			mean_a, mean_b, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Case, rec.Param, rec.Value, strconv.FormatUint(rec.Seed, 10),
		cfg.Length, cfg.Particles, cfg.Rates.HopA, cfg.Rates.ConvertAB, cfg.Rates.HopB, cfg.Rates.ConvertBA,
		cfg.Alpha, cfg.Beta, cfg.Steps, cfg.Warmup,
		rec.Totals.Proposed, rec.Totals.Accepted, rec.Totals.Dropped, rec.Totals.Injected, rec.Totals.Extracted,
		rec.MeanA, rec.MeanB, rec.Duration.Milliseconds(), rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO densities (run_id, lane, site, rho) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare density insert: %w", err)
	}
	defer stmt.Close()

	for _, lane := range []struct {
		name string
		rho  []float64
	}{{lattice.LaneA.String(), rhoA}, {lattice.LaneB.String(), rhoB}} {
		for i, v := range lane.rho {
			if _, err := stmt.ExecContext(ctx, rec.ID, lane.name, i, v); err != nil {
				return fmt.Errorf("failed to insert density %s[%d]: %w", lane.name, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", rec.ID, err)
	}
	return nil
}

const selectRun = `
	SELECT id, case_id, param, value, seed,
		length, particles, hop_a, convert_ab, hop_b, convert_ba, alpha, beta, steps, warmup,
		proposed, accepted, dropped, injected, extracted,
		mean_a, mean_b, duration_ms, created_at
	FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var (
		rec        RunRecord
		seed       string
		durationMS int64
		createdAt  string
	)
	cfg := &rec.Config
	err := row.Scan(
		&rec.ID, &rec.Case, &rec.Param, &rec.Value, &seed,
		&cfg.Length, &cfg.Particles, &cfg.Rates.HopA, &cfg.Rates.ConvertAB, &cfg.Rates.HopB, &cfg.Rates.ConvertBA,
		&cfg.Alpha, &cfg.Beta, &cfg.Steps, &cfg.Warmup,
		&rec.Totals.Proposed, &rec.Totals.Accepted, &rec.Totals.Dropped, &rec.Totals.Injected, &rec.Totals.Extracted,
		&rec.MeanA, &rec.MeanB, &durationMS, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if rec.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return nil, fmt.Errorf("failed to parse seed of run %s: %w", rec.ID, err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse timestamp of run %s: %w", rec.ID, err)
	}
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	return &rec, nil
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := scanRun(s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return rec, nil
}

// List returns every archived run, newest first.
func (s *Store) List(ctx context.Context) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectRun+` ORDER BY created_at DESC, case_id, value, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return out, nil
}

// Densities returns the lane A and lane B profiles of a run.
func (s *Store) Densities(ctx context.Context, id string) (rhoA, rhoB []float64, err error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT lane, site, rho FROM densities WHERE run_id = ? ORDER BY lane, site`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load densities of run %s: %w", id, err)
	}
	defer rows.Close()

	rhoA = make([]float64, rec.Config.Length)
	rhoB = make([]float64, rec.Config.Length)
	for rows.Next() {
		var (
			lane string
			site int
			rho  float64
		)
		if err := rows.Scan(&lane, &site, &rho); err != nil {
			return nil, nil, fmt.Errorf("failed to scan density: %w", err)
		}
		if site < 0 || site >= rec.Config.Length {
			return nil, nil, fmt.Errorf("density site %d out of range for run %s", site, id)
		}
		switch lane {
		case lattice.LaneA.String():
			rhoA[site] = rho
		case lattice.LaneB.String():
			rhoB[site] = rho
		default:
			return nil, nil, fmt.Errorf("unknown lane %q in run %s", lane, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to load densities of run %s: %w", id, err)
	}
	return rhoA, rhoB, nil
}
