package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lawnchairsociety/dungeonwalk/internal/config"
	"github.com/lawnchairsociety/dungeonwalk/internal/event"
	"github.com/lawnchairsociety/dungeonwalk/internal/journal"
	"github.com/lawnchairsociety/dungeonwalk/internal/level"
	"github.com/lawnchairsociety/dungeonwalk/internal/logger"
	"github.com/lawnchairsociety/dungeonwalk/internal/sim"
	"github.com/lawnchairsociety/dungeonwalk/internal/stream"
)

// streamedEvents are forwarded to spectators as they happen.
var streamedEvents = []event.Kind{
	event.LevelStart,
	event.LevelEnd,
	event.HeroEntersRoom,
	event.NPCInteraction,
	event.ConversationEnd,
	event.NPCRemoved,
	event.FlagSet,
}

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "data/dungeonwalk.yaml", "Path to run config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	envFile := flag.String("env", ".env", "Path to an optional .env file")
	levelName := flag.String("level", "", "Level to play (overrides config)")
	seed := flag.Int64("seed", 0, "Run seed (default: config, then random based on current time)")
	rooms := flag.Int("rooms", 0, "Number of rooms (overrides config)")
	streamFlag := flag.Bool("stream", false, "Serve the spectator feed and run in real time")
	listLevels := flag.Bool("list", false, "List the available levels and exit")
	flag.Parse()

	registry := level.Builtin()
	if *listLevels {
		for _, name := range registry.Names() {
			l, _ := registry.Get(name)
			fmt.Printf("%-12s %s\n", l.Name, l.Description)
		}
		return 0
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}

	// Initialize logger first (before any logging)
	logConfig, err := logger.LoadConfig(*loggingConfig)
	if err != nil {
		log.Printf("Failed to load logging config, using defaults: %v", err)
		logConfig = logger.DefaultConfig()
	}
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load run config, using defaults", "path", *configFile, "error", err)
		cfg = config.DefaultConfig()
	}
	if *levelName != "" {
		cfg.Simulation.Level = *levelName
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *rooms > 0 {
		cfg.Generation.Rooms = *rooms
	}
	if *streamFlag {
		cfg.Stream.Enabled = true
	}
	if cfg.Stream.Enabled {
		cfg.Simulation.RealTime = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	runSeed := cfg.Simulation.Seed
	if runSeed == 0 {
		runSeed = time.Now().UnixNano()
		logger.Info("Run seed selected", "seed", runSeed, "random", true)
	} else {
		logger.Info("Run seed selected", "seed", runSeed, "random", false)
	}

	levelCfg, err := level.FromSimConfig(cfg, runSeed)
	if err != nil {
		log.Fatalf("Failed to prepare level: %v", err)
	}
	world, err := registry.Build(cfg.Simulation.Level, levelCfg)
	if err != nil {
		log.Fatalf("Failed to build level %q: %v", cfg.Simulation.Level, err)
	}

	var runJournal *journal.Journal
	if cfg.Journal.Enabled {
		runJournal, err = journal.Open(cfg.Journal)
		if err != nil {
			logger.Warning("Failed to open journal, run will not be recorded", "driver", cfg.Journal.Driver, "error", err)
		} else {
			defer runJournal.Close()
			logger.Info("Journal opened", "driver", cfg.Journal.Driver)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hub *stream.Hub
	if cfg.Stream.Enabled {
		hub = stream.NewHub()
		srv := stream.NewServer(cfg.Stream, hub)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				log.Fatalf("Spectator feed error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
		if len(cfg.Stream.AllowedOrigins) == 0 {
			logger.Info("WebSocket CORS policy", "mode", "same-origin")
		} else {
			logger.Info("WebSocket CORS policy", "allowed_origins", cfg.Stream.AllowedOrigins)
		}

		hub.Follow(world.Bus(), streamedEvents...)
		if err := hub.PublishMap(world.MapSnapshot()); err != nil {
			logger.Warning("Failed to publish map", "error", err)
		}
	}

	started := time.Now()
	if cfg.Simulation.RealTime {
		err = runRealTime(ctx, world, cfg, hub)
	} else {
		err = runHeadless(ctx, world, cfg)
	}
	finished := time.Now()

	if errors.Is(err, context.Canceled) {
		world.Abandon()
		logger.Info("Run interrupted")
	} else if err != nil {
		logger.Error("Run failed", "error", err)
	}

	if runJournal != nil {
		record := journal.RunFromWorld(world, err, started, finished)
		if jerr := runJournal.Record(context.Background(), record); jerr != nil {
			logger.Warning("Failed to record run", "error", jerr)
		}
	}

	fmt.Printf("%s seed=%d outcome=%s ticks=%d simulated=%s run_id=%s\n",
		world.Level, world.Seed, world.Outcome(), world.Ticks(), world.ElapsedDuration(), world.ID)
	if world.Outcome() != sim.OutcomeReached {
		return 1
	}
	return 0
}

// runHeadless ticks as fast as possible.
func runHeadless(ctx context.Context, world *sim.World, cfg *config.SimConfig) error {
	program, err := sim.NewProgram(sim.Entry{Content: &sim.Walk{World: world, MaxTicks: cfg.Simulation.MaxTicks}})
	if err != nil {
		return err
	}
	dt := cfg.Simulation.TickSeconds
	for !program.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := program.Update(dt); err != nil {
			return err
		}
	}
	return nil
}

// runRealTime paces ticks with a clock and feeds spectators snapshots.
func runRealTime(ctx context.Context, world *sim.World, cfg *config.SimConfig, hub *stream.Hub) error {
	program, err := sim.NewProgram(
		sim.Entry{Content: &sim.Hold{Title: world.Level}, Duration: 1},
		sim.Entry{Content: &sim.Walk{World: world, MaxTicks: cfg.Simulation.MaxTicks}},
	)
	if err != nil {
		return err
	}

	clock := sim.NewClock(cfg.Simulation.TickDuration())
	ticker := time.NewTicker(clock.Step())
	defer ticker.Stop()

	last := time.Now()
	var lastSnapshot time.Time
	for !program.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			for n := clock.Advance(now.Sub(last)); n > 0 && !program.Done(); n-- {
				if err := program.Update(clock.StepSeconds()); err != nil {
					return err
				}
			}
			last = now

			if hub != nil && now.Sub(lastSnapshot) >= cfg.Stream.SnapshotInterval {
				if err := hub.PublishSnapshot(world.Snapshot()); err != nil {
					logger.Warning("Failed to publish snapshot", "error", err)
				}
				lastSnapshot = now
			}
		}
	}

	logger.Debug("Run finished", "clock", clock.String())
	if hub != nil {
		hub.PublishSnapshot(world.Snapshot())
	}
	return nil
}
