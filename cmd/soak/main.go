package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lawnchairsociety/dungeonwalk/internal/config"
	"github.com/lawnchairsociety/dungeonwalk/internal/level"
	"github.com/lawnchairsociety/dungeonwalk/internal/logger"
	"github.com/lawnchairsociety/dungeonwalk/internal/soak"
)

func main() {
	configFile := flag.String("config", "data/dungeonwalk.yaml", "Path to run config YAML file")
	levelName := flag.String("level", level.SimpleGate, "Level to soak")
	first := flag.Int64("seed", 1, "First seed")
	count := flag.Int("count", 100, "Number of seeds to run")
	rooms := flag.Int("rooms", 0, "Number of rooms (overrides config)")
	workers := flag.Int("workers", 0, "Parallel runs (default: number of CPUs)")
	verbose := flag.Bool("v", false, "Verbose output - show each seed as it finishes")
	flag.Parse()

	// Soak runs are noisy at INFO; keep warnings and up.
	logger.SetOutput(os.Stderr, "text", "WARNING")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load run config, using defaults", "path", *configFile, "error", err)
		cfg = config.DefaultConfig()
	}
	if *rooms > 0 {
		cfg.Generation.Rooms = *rooms
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	registry := level.Builtin()
	if _, err := registry.Get(*levelName); err != nil {
		log.Fatalf("%v (available: %v)", err, registry.Names())
	}

	fmt.Printf("Soaking %s over seeds %d..%d\n", *levelName, *first, *first+int64(*count)-1)
	fmt.Println()

	runner := &soak.Runner{
		Registry: registry,
		Level:    *levelName,
		Config:   cfg,
		Workers:  *workers,
	}
	if *verbose {
		runner.Verbose = os.Stdout
	}

	results := runner.Run(*first, *count)
	if failed := soak.PrintResults(os.Stdout, *levelName, results); failed > 0 {
		os.Exit(1)
	}
}
