// Package level builds ready-to-run worlds: a generated dungeon, its NPCs,
// the hero and the narrative wiring between them.
package level

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/lawnchairsociety/dungeonwalk/internal/config"
	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
	"github.com/lawnchairsociety/dungeonwalk/internal/npc"
	"github.com/lawnchairsociety/dungeonwalk/internal/sim"
)

// ErrUnknownLevel is returned when a registry has no level by that name.
var ErrUnknownLevel = errors.New("level: unknown level")

// Config carries what every level builder needs.
type Config struct {
	Seed       int64
	Rooms      int
	MaxRetries int
	HeroSpeed  float64
	Budget     int // BFS search budget, 0 for the default
	Catalog    *dungeon.Catalog
	Roster     *npc.Roster
}

// DefaultConfig returns a config using the built-in templates and roster.
func DefaultConfig(seed int64) (Config, error) {
	catalog, err := dungeon.DefaultCatalog()
	if err != nil {
		return Config{}, err
	}
	roster, err := npc.DefaultRoster()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Seed:       seed,
		Rooms:      dungeon.DefaultGeneratorConfig().Rooms,
		MaxRetries: dungeon.DefaultMaxRetries,
		Catalog:    catalog,
		Roster:     roster,
	}, nil
}

// Builder creates a world for a level.
type Builder func(cfg Config, rng *rand.Rand) (*sim.World, error)

// Level is a named way to set up a run.
type Level struct {
	Name        string
	Description string
	Build       Builder
}

// Registry holds the available levels by name.
type Registry struct {
	levels map[string]Level
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{levels: make(map[string]Level)}
}

// Builtin returns a registry holding the stock levels.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(Level{
		Name:        SimpleGate,
		Description: "Talk to the robot priest to open the gate to the goal",
		Build:       BuildSimpleGate,
	})
	r.Register(Level{
		Name:        OpenGoal,
		Description: "Find the goal in the last room",
		Build:       BuildOpenGoal,
	})
	return r
}

// Register adds or replaces a level.
func (r *Registry) Register(l Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels[l.Name] = l
}

// Get returns a level by name.
func (r *Registry) Get(name string) (Level, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.levels[name]
	if !ok {
		return Level{}, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
	return l, nil
}

// Names returns the registered level names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.levels))
	for name := range r.levels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build looks up a level and builds it with an rng seeded from cfg.Seed.
func (r *Registry) Build(name string, cfg Config) (*sim.World, error) {
	l, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return l.Build(cfg, rand.New(rand.NewSource(cfg.Seed)))
}

func generate(cfg Config, rng *rand.Rand, gated bool) (*dungeon.Result, error) {
	gen := dungeon.DefaultGeneratorConfig()
	if cfg.Rooms > 0 {
		gen.Rooms = cfg.Rooms
	}
	if cfg.MaxRetries > 0 {
		gen.MaxRetries = cfg.MaxRetries
	}
	gen.GatedGoal = gated
	return dungeon.NewGenerator(cfg.Catalog, gen, rng).Generate()
}

// FromSimConfig builds a level config from the run settings, loading the
// template and roster files when they are set.
func FromSimConfig(sc *config.SimConfig, seed int64) (Config, error) {
	cfg, err := DefaultConfig(seed)
	if err != nil {
		return Config{}, err
	}
	cfg.Rooms = sc.Generation.Rooms
	cfg.MaxRetries = sc.Generation.MaxRetries
	cfg.HeroSpeed = sc.Simulation.HeroSpeed
	cfg.Budget = sc.Simulation.SearchBudget

	if path := sc.Generation.TemplateFile; path != "" {
		if cfg.Catalog, err = dungeon.LoadCatalog(path); err != nil {
			return Config{}, fmt.Errorf("load templates: %w", err)
		}
	}
	if path := sc.Generation.RosterFile; path != "" {
		if cfg.Roster, err = npc.LoadRoster(path); err != nil {
			return Config{}, fmt.Errorf("load roster: %w", err)
		}
	}
	return cfg, nil
}
