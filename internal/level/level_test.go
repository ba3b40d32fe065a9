package level

import (
	"errors"
	"math/rand"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lawnchairsociety/dungeonwalk/internal/agent"
	"github.com/lawnchairsociety/dungeonwalk/internal/config"
	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
	"github.com/lawnchairsociety/dungeonwalk/internal/event"
	"github.com/lawnchairsociety/dungeonwalk/internal/sim"
)

func testConfig(t *testing.T, seed int64) Config {
	t.Helper()
	cfg, err := DefaultConfig(seed)
	if err != nil {
		t.Fatalf("DefaultConfig: %v", err)
	}
	return cfg
}

func TestRegistry(t *testing.T) {
	r := Builtin()
	if got := r.Names(); !reflect.DeepEqual(got, []string{OpenGoal, SimpleGate}) {
		t.Errorf("Names() = %v", got)
	}
	if _, err := r.Get("labyrinth"); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("Expected ErrUnknownLevel, got %v", err)
	}

	r.Register(Level{Name: "custom", Build: BuildOpenGoal})
	l, err := r.Get("custom")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if l.Build == nil {
		t.Error("Expected the registered builder")
	}
}

func TestFindNPCSpot(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		cfg := testConfig(t, seed)
		result, err := generate(cfg, rand.New(rand.NewSource(seed)), true)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		d := dungeon.New(result)

		spot, ok := FindNPCSpot(d, 0, 2, 1, result.StartTile)
		if !ok {
			t.Fatalf("seed %d: no spot in the start room", seed)
		}
		doors, _ := d.FindDoorsInRoom(0)
		for _, p := range []dungeon.Position{spot, spot.Add(dungeon.Pos(0, 1))} {
			if d.Map().At(p.Row, p.Col) != dungeon.TileFloor {
				t.Errorf("seed %d: base tile %v is %s", seed, p, d.Map().At(p.Row, p.Col))
			}
			if p == result.StartTile {
				t.Errorf("seed %d: spot covers the start tile", seed)
			}
			for _, door := range doors {
				if door.Tile.Manhattan(p) < minDoorDistance {
					t.Errorf("seed %d: base tile %v is %d from door %s", seed, p, door.Tile.Manhattan(p), door.Direction)
				}
			}
		}
		below := spot.Add(dungeon.Pos(1, 0))
		if !d.IsTileWalkable(below.Row, below.Col) {
			t.Errorf("seed %d: no approach tile below %v", seed, spot)
		}
	}
}

func TestFindNPCSpotUnknownRoom(t *testing.T) {
	cfg := testConfig(t, 1)
	result, err := generate(cfg, rand.New(rand.NewSource(1)), true)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, ok := FindNPCSpot(dungeon.New(result), 99, 2, 1); ok {
		t.Error("Expected no spot in a missing room")
	}
}

func TestSimpleGateSetup(t *testing.T) {
	w, err := Builtin().Build(SimpleGate, testConfig(t, 3))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	d := w.Dungeon()

	priest, ok := w.NPC(PriestID)
	if !ok {
		t.Fatal("Expected the priest")
	}
	if priest.BaseTileWidth() != 2 || priest.BaseTileHeight() != 1 {
		t.Errorf("Expected a 2x1 priest, got %dx%d", priest.BaseTileWidth(), priest.BaseTileHeight())
	}
	if priest.RoomID() != priestRoom && priest.RoomID() != 0 {
		t.Errorf("Expected the priest in room 1 or 0, got %d", priest.RoomID())
	}

	if _, ok := w.NPC(GatekeeperID); !ok {
		t.Fatal("Expected the gatekeeper")
	}
	gate := w.Result.GateDoor
	if d.IsTileWalkable(gate.Row, gate.Col) {
		t.Errorf("Expected the gatekeeper to block the gate at %v", gate)
	}
	if gr, _ := d.GoalRoom(); d.RoomIDForTile(gate.Row, gate.Col) != gr {
		t.Errorf("Expected the gate door in the goal room %d", gr)
	}
}

func TestSimpleGateRun(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		w, err := Builtin().Build(SimpleGate, testConfig(t, seed))
		if err != nil {
			t.Fatalf("seed %d: Build: %v", seed, err)
		}
		priest, _ := w.NPC(PriestID)

		var order []event.Kind
		for _, kind := range []event.Kind{event.NPCInteraction, event.ConversationEnd, event.NPCRemoved, event.LevelEnd} {
			w.Bus().Subscribe(kind, func(e event.Event) { order = append(order, e.Kind) })
		}

		if err := w.Run(0.1, 20000); err != nil {
			t.Fatalf("seed %d: Run: %v", seed, err)
		}
		if w.Outcome() != sim.OutcomeReached {
			t.Errorf("seed %d: outcome %s", seed, w.Outcome())
		}
		if priest.Interactions() != 1 {
			t.Errorf("seed %d: expected 1 priest interaction, got %d", seed, priest.Interactions())
		}
		if !w.Flags().IsSet(GateOpenFlag) {
			t.Errorf("seed %d: expected the gate to be open", seed)
		}
		if _, ok := w.NPC(GatekeeperID); ok {
			t.Errorf("seed %d: expected the gatekeeper to be gone", seed)
		}
		expected := []event.Kind{event.NPCInteraction, event.ConversationEnd, event.NPCRemoved, event.LevelEnd}
		if !reflect.DeepEqual(order, expected) {
			t.Errorf("seed %d: events %v, expected %v", seed, order, expected)
		}
	}
}

func TestPriestInteractionOnFirstAdjacency(t *testing.T) {
	w, err := Builtin().Build(SimpleGate, testConfig(t, 5))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	d := w.Dungeon()
	priest, _ := w.NPC(PriestID)
	hero := w.Hero()

	for tick := 0; tick < 20000 && priest.Interactions() == 0; tick++ {
		adjacent := d.IsAdjacentToNPC(hero.Tile(), priest)
		deciding := hero.State() == agent.StateIdle

		if err := w.Tick(0.1); err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}

		interacted := priest.Interactions() > 0
		if interacted && !adjacent {
			t.Fatalf("tick %d: interacted from %v, not adjacent to %v", tick, hero.Tile(), priest.Tiles())
		}
		if adjacent && deciding && !interacted {
			t.Fatalf("tick %d: adjacent at %v without interacting", tick, hero.Tile())
		}
	}

	if priest.Interactions() != 1 {
		t.Fatal("Expected the hero to reach the priest")
	}
	if hero.State() != agent.StateTalking {
		t.Errorf("Expected the hero to be talking, got %s", hero.State())
	}
	if page, ok := w.Conversation(); !ok || page.Speaker != "Robot Priest" {
		t.Errorf("Expected the priest's first page, got %+v", page)
	}
}

func TestOpenGoalRun(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		w, err := Builtin().Build(OpenGoal, testConfig(t, seed))
		if err != nil {
			t.Fatalf("seed %d: Build: %v", seed, err)
		}
		if len(w.Dungeon().NPCs()) != 0 {
			t.Errorf("seed %d: expected no NPCs", seed)
		}
		if err := w.Run(0.1, 20000); err != nil {
			t.Fatalf("seed %d: Run: %v", seed, err)
		}
		goal, _ := w.Dungeon().GoalTile()
		if w.Hero().Tile() != goal {
			t.Errorf("seed %d: hero at %v, goal at %v", seed, w.Hero().Tile(), goal)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a, err := Builtin().Build(SimpleGate, testConfig(t, 11))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Builtin().Build(SimpleGate, testConfig(t, 11))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.Dungeon().Fingerprint() != b.Dungeon().Fingerprint() {
		t.Error("Expected identical maps for the same seed")
	}
	if err := a.Run(0.1, 20000); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := b.Run(0.1, 20000); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.Ticks() != b.Ticks() {
		t.Errorf("Expected identical runs, got %d and %d ticks", a.Ticks(), b.Ticks())
	}
}

func TestFromSimConfig(t *testing.T) {
	sc := config.DefaultConfig()
	sc.Generation.Rooms = 7
	sc.Simulation.HeroSpeed = 200

	cfg, err := FromSimConfig(sc, 9)
	if err != nil {
		t.Fatalf("FromSimConfig: %v", err)
	}
	if cfg.Seed != 9 || cfg.Rooms != 7 || cfg.HeroSpeed != 200 || cfg.Budget != sc.Simulation.SearchBudget {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.Catalog == nil || cfg.Roster == nil {
		t.Fatal("Expected the built-in catalog and roster")
	}

	sc.Generation.TemplateFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := FromSimConfig(sc, 9); err == nil {
		t.Error("Expected a missing template file to fail")
	}
}
