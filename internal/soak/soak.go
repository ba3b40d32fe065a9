// Package soak runs a level across many seeds and reports the outcomes.
package soak

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/lawnchairsociety/dungeonwalk/internal/config"
	"github.com/lawnchairsociety/dungeonwalk/internal/level"
	"github.com/lawnchairsociety/dungeonwalk/internal/sim"
)

// Result is the outcome of one seed.
type Result struct {
	Seed      int64
	Outcome   sim.Outcome
	Ticks     int
	Simulated time.Duration
	Err       error
}

// Passed reports whether the hero reached the goal.
func (r Result) Passed() bool {
	return r.Err == nil && r.Outcome == sim.OutcomeReached
}

// Runner plays one level for a range of seeds.
type Runner struct {
	Registry *level.Registry
	Level    string
	Config   *config.SimConfig
	Workers  int
	Verbose  io.Writer // per-seed progress, nil for none
}

// Run plays seeds first..first+count-1 and returns the results in seed
// order.
func (r *Runner) Run(first int64, count int) []Result {
	results := make([]Result, count)
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	seeds := make(chan int, count)
	for i := 0; i < count; i++ {
		seeds <- i
	}
	close(seeds)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range seeds {
				res := r.runSeed(first + int64(i))
				results[i] = res
				if r.Verbose != nil {
					mu.Lock()
					fmt.Fprintf(r.Verbose, "  [seed %d] %s in %d ticks\n", res.Seed, res.Outcome, res.Ticks)
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	return results
}

func (r *Runner) runSeed(seed int64) Result {
	res := Result{Seed: seed, Outcome: sim.OutcomeFailed}

	cfg, err := level.FromSimConfig(r.Config, seed)
	if err != nil {
		res.Err = err
		return res
	}
	w, err := r.Registry.Build(r.Level, cfg)
	if err != nil {
		res.Err = fmt.Errorf("build: %w", err)
		return res
	}

	res.Err = w.Run(r.Config.Simulation.TickSeconds, r.Config.Simulation.MaxTicks)
	res.Outcome = w.Outcome()
	res.Ticks = w.Ticks()
	res.Simulated = w.ElapsedDuration()
	return res
}

// PrintResults writes a result table and a summary line. It returns the
// number of failed seeds.
func PrintResults(out io.Writer, levelName string, results []Result) int {
	passed, failed, ticks := 0, 0, 0

	fmt.Fprintln(out, "============================================================")
	fmt.Fprintf(out, "Soak Results: %s\n", levelName)
	fmt.Fprintln(out, "============================================================")
	fmt.Fprintln(out)

	for _, r := range results {
		status := "PASS"
		if !r.Passed() {
			status = "FAIL"
			failed++
		} else {
			passed++
			ticks += r.Ticks
		}
		line := fmt.Sprintf("[%s] seed %-6d %-9s %6d ticks %8s", status, r.Seed, r.Outcome, r.Ticks, r.Simulated.Round(100*time.Millisecond))
		if r.Err != nil {
			line += "  " + r.Err.Error()
		}
		fmt.Fprintln(out, line)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "------------------------------------------------------------")
	fmt.Fprintf(out, "Total: %d | Passed: %d | Failed: %d", len(results), passed, failed)
	if passed > 0 {
		fmt.Fprintf(out, " | Avg ticks: %d", ticks/passed)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "------------------------------------------------------------")
	return failed
}
