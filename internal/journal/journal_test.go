package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/dungeonwalk/internal/config"
	"github.com/lawnchairsociety/dungeonwalk/internal/level"
	"github.com/lawnchairsociety/dungeonwalk/internal/sim"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "journal.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func testRun(fingerprint string, finished time.Time) Run {
	return Run{
		ID:          uuid.New(),
		Level:       "open_goal",
		Seed:        42,
		Rooms:       5,
		Attempts:    2,
		MapRows:     40,
		MapCols:     36,
		Fingerprint: fingerprint,
		Ticks:       812,
		Elapsed:     81200 * time.Millisecond,
		Outcome:     sim.OutcomeReached,
		StartedAt:   finished.Add(-time.Second),
		FinishedAt:  finished,
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "runs.db")
	j, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer j.Close()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected the database file: %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(config.JournalConfig{Driver: "mysql"}); err == nil {
		t.Error("Expected an unsupported driver error")
	}
}

func TestRecordAndGet(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	finished := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := testRun("abc", finished)
	run.Error = "tick limit"

	if err := j.Record(ctx, run); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, err := j.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != run.ID || got.Level != run.Level || got.Seed != run.Seed || got.Outcome != run.Outcome {
		t.Errorf("Got %+v, want %+v", got, run)
	}
	if got.Elapsed != run.Elapsed || got.Error != "tick limit" || got.Attempts != 2 {
		t.Errorf("Unexpected stats %+v", got)
	}
	if !got.FinishedAt.Equal(finished) {
		t.Errorf("FinishedAt = %v, want %v", got.FinishedAt, finished)
	}

	if err := j.Record(ctx, run); !errors.Is(err, ErrDuplicateRun) {
		t.Errorf("Expected ErrDuplicateRun, got %v", err)
	}
	if _, err := j.Get(ctx, uuid.New()); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
}

func TestRecordAssignsID(t *testing.T) {
	j := openTestJournal(t)
	run := testRun("abc", time.Now())
	run.ID = uuid.Nil
	if err := j.Record(context.Background(), run); err != nil {
		t.Fatalf("Record: %v", err)
	}
	runs, _ := j.Recent(context.Background(), 1)
	if len(runs) != 1 || runs[0].ID == uuid.Nil {
		t.Errorf("Expected a generated id, got %+v", runs)
	}
}

func TestRecentAndCount(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, fp := range []string{"aaa", "bbb", "aaa", "ccc"} {
		if err := j.Record(ctx, testRun(fp, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Fingerprint != "ccc" || recent[1].Fingerprint != "aaa" {
		t.Errorf("Expected the two newest runs, got %+v", recent)
	}

	tests := []struct {
		fingerprint string
		want        int
	}{
		{"aaa", 2},
		{"bbb", 1},
		{"zzz", 0},
	}
	for _, tt := range tests {
		got, err := j.CountByFingerprint(ctx, tt.fingerprint)
		if err != nil {
			t.Fatalf("CountByFingerprint: %v", err)
		}
		if got != tt.want {
			t.Errorf("CountByFingerprint(%q) = %d, want %d", tt.fingerprint, got, tt.want)
		}
	}
}

func TestRunFromWorld(t *testing.T) {
	cfg, err := level.DefaultConfig(8)
	if err != nil {
		t.Fatalf("DefaultConfig: %v", err)
	}
	w, err := level.Builtin().Build(level.OpenGoal, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	started := time.Now()
	runErr := w.Run(0.1, 20000)

	run := RunFromWorld(w, runErr, started, time.Now())
	if run.ID != w.ID || run.Outcome != sim.OutcomeReached || run.Error != "" {
		t.Errorf("Unexpected run %+v", run)
	}
	if run.Fingerprint != w.Dungeon().Fingerprint() || run.Attempts < 1 || run.Ticks != w.Ticks() {
		t.Errorf("Unexpected map stats %+v", run)
	}

	j := openTestJournal(t)
	if err := j.Record(context.Background(), run); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if n, _ := j.CountByFingerprint(context.Background(), run.Fingerprint); n != 1 {
		t.Errorf("Expected one run on this map, got %d", n)
	}
}

func TestQueryBuilder(t *testing.T) {
	tests := []struct {
		dialect DialectType
		input   string
		want    string
	}{
		{DialectSQLite, "SELECT * FROM runs WHERE id = ?", "SELECT * FROM runs WHERE id = ?"},
		{DialectPostgres, "SELECT * FROM runs WHERE id = ?", "SELECT * FROM runs WHERE id = $1"},
		{DialectPostgres, "VALUES (?, ?, ?)", "VALUES ($1, $2, $3)"},
		{DialectPostgres, "SELECT COUNT(*) FROM runs", "SELECT COUNT(*) FROM runs"},
	}
	for _, tt := range tests {
		qb := NewQueryBuilder(NewDialect(tt.dialect))
		if got := qb.Build(tt.input); got != tt.want {
			t.Errorf("%s Build(%q) = %q, want %q", tt.dialect, tt.input, got, tt.want)
		}
	}
}

func TestDialects(t *testing.T) {
	if _, ok := NewDialect("unknown").(*SQLiteDialect); !ok {
		t.Error("Expected SQLite as the default dialect")
	}
	sqlite, pg := &SQLiteDialect{}, &PostgresDialect{}
	if sqlite.DriverName() != "sqlite" || pg.DriverName() != "postgres" {
		t.Error("Unexpected driver names")
	}

	tests := []struct {
		name    string
		dialect Dialect
		err     error
		want    bool
	}{
		{"sqlite nil", sqlite, nil, false},
		{"sqlite unique", sqlite, errors.New("UNIQUE constraint failed: runs.id"), true},
		{"sqlite other", sqlite, errors.New("no such table"), false},
		{"postgres code", pg, errors.New("pq: 23505"), true},
		{"postgres text", pg, errors.New(`duplicate key value violates unique constraint "runs_pkey"`), true},
		{"postgres other", pg, errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.IsDuplicateKeyError(tt.err); got != tt.want {
				t.Errorf("IsDuplicateKeyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
