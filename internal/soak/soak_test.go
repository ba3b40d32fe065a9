package soak

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/lawnchairsociety/dungeonwalk/internal/config"
	"github.com/lawnchairsociety/dungeonwalk/internal/level"
	"github.com/lawnchairsociety/dungeonwalk/internal/sim"
)

func TestRunnerAllSeedsPass(t *testing.T) {
	for _, name := range []string{level.SimpleGate, level.OpenGoal} {
		var progress bytes.Buffer
		r := &Runner{
			Registry: level.Builtin(),
			Level:    name,
			Config:   config.DefaultConfig(),
			Workers:  3,
			Verbose:  &progress,
		}
		results := r.Run(100, 6)

		if len(results) != 6 {
			t.Fatalf("%s: expected 6 results, got %d", name, len(results))
		}
		for i, res := range results {
			if res.Seed != int64(100+i) {
				t.Errorf("%s: result %d has seed %d", name, i, res.Seed)
			}
			if !res.Passed() {
				t.Errorf("%s: seed %d failed: %s %v", name, res.Seed, res.Outcome, res.Err)
			}
		}
		if got := strings.Count(progress.String(), "[seed "); got != 6 {
			t.Errorf("%s: expected 6 progress lines, got %d", name, got)
		}
	}
}

func TestRunnerUnknownLevel(t *testing.T) {
	r := &Runner{Registry: level.Builtin(), Level: "nope", Config: config.DefaultConfig(), Workers: 1}
	results := r.Run(1, 2)
	for _, res := range results {
		if !errors.Is(res.Err, level.ErrUnknownLevel) || res.Passed() {
			t.Errorf("Expected ErrUnknownLevel, got %v", res.Err)
		}
	}
}

func TestRunnerTickLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Simulation.MaxTicks = 3
	r := &Runner{Registry: level.Builtin(), Level: level.OpenGoal, Config: cfg}
	res := r.Run(5, 1)[0]
	if !errors.Is(res.Err, sim.ErrTickLimit) || res.Outcome != sim.OutcomeTimeout {
		t.Errorf("Expected a timeout, got %s %v", res.Outcome, res.Err)
	}
}

func TestPrintResults(t *testing.T) {
	results := []Result{
		{Seed: 1, Outcome: sim.OutcomeReached, Ticks: 100},
		{Seed: 2, Outcome: sim.OutcomeReached, Ticks: 300},
		{Seed: 3, Outcome: sim.OutcomeTimeout, Ticks: 20000, Err: sim.ErrTickLimit},
	}
	var out bytes.Buffer
	failed := PrintResults(&out, "simple_gate", results)

	if failed != 1 {
		t.Errorf("Expected 1 failure, got %d", failed)
	}
	text := out.String()
	for _, want := range []string{"[PASS] seed 1", "[FAIL] seed 3", "Total: 3 | Passed: 2 | Failed: 1 | Avg ticks: 200"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output:\n%s", want, text)
		}
	}
}
