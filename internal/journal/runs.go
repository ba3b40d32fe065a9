package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/dungeonwalk/internal/sim"
)

var (
	ErrRunNotFound  = errors.New("journal: run not found")
	ErrDuplicateRun = errors.New("journal: run already recorded")
)

// Run is one journal row.
type Run struct {
	ID          uuid.UUID
	Level       string
	Seed        int64
	Rooms       int
	Attempts    int
	MapRows     int
	MapCols     int
	Fingerprint string
	Ticks       int
	Elapsed     time.Duration
	Outcome     sim.Outcome
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// RunFromWorld describes a finished world. runErr is the error the run
// ended with, if any.
func RunFromWorld(w *sim.World, runErr error, started, finished time.Time) Run {
	d := w.Dungeon()
	r := Run{
		ID:          w.ID,
		Level:       w.Level,
		Seed:        w.Seed,
		Rooms:       d.RoomCount(),
		MapRows:     d.Map().Rows(),
		MapCols:     d.Map().Cols(),
		Fingerprint: d.Fingerprint(),
		Ticks:       w.Ticks(),
		Elapsed:     w.ElapsedDuration(),
		Outcome:     w.Outcome(),
		StartedAt:   started,
		FinishedAt:  finished,
	}
	if w.Result != nil {
		r.Attempts = w.Result.Attempts
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	return r
}

const runColumns = `id, level, seed, rooms, attempts, map_rows, map_cols, fingerprint,
	ticks, elapsed_seconds, outcome, error, started_at, finished_at`

// Record stores a run.
func (j *Journal) Record(ctx context.Context, r Run) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	query := j.qb.Build(`INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := j.db.ExecContext(ctx, query,
		r.ID.String(), r.Level, r.Seed, r.Rooms, r.Attempts, r.MapRows, r.MapCols, r.Fingerprint,
		r.Ticks, r.Elapsed.Seconds(), string(r.Outcome), r.Error,
		r.StartedAt.UTC(), r.FinishedAt.UTC(),
	)
	if err != nil {
		if j.dialect.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateRun, r.ID)
		}
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Get returns the run with the given id.
func (j *Journal) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	query := j.qb.Build(`SELECT ` + runColumns + ` FROM runs WHERE id = ?`)
	r, err := scanRun(j.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := j.qb.Build(`SELECT ` + runColumns + ` FROM runs ORDER BY finished_at DESC, id LIMIT ?`)
	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// CountByFingerprint returns how many recorded runs used the same map.
func (j *Journal) CountByFingerprint(ctx context.Context, fingerprint string) (int, error) {
	var count int
	query := j.qb.Build(`SELECT COUNT(*) FROM runs WHERE fingerprint = ?`)
	if err := j.db.QueryRowContext(ctx, query, fingerprint).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r       Run
		id      string
		outcome string
		elapsed float64
	)
	err := s.Scan(&id, &r.Level, &r.Seed, &r.Rooms, &r.Attempts, &r.MapRows, &r.MapCols, &r.Fingerprint,
		&r.Ticks, &elapsed, &outcome, &r.Error, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		return Run{}, err
	}
	if r.ID, err = uuid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("bad run id %q: %w", id, err)
	}
	r.Outcome = sim.Outcome(outcome)
	r.Elapsed = time.Duration(elapsed * float64(time.Second))
	return r, nil
}
