package level

import (
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/dungeonwalk/internal/agent"
	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
	"github.com/lawnchairsociety/dungeonwalk/internal/npc"
	"github.com/lawnchairsociety/dungeonwalk/internal/sim"
	"github.com/lawnchairsociety/dungeonwalk/internal/strategy"
)

const (
	SimpleGate = "simple_gate"
	OpenGoal   = "open_goal"

	PriestID     = "robot_priest"
	GatekeeperID = "gatekeeper"

	// GateOpenFlag is set once the gatekeeper has stepped aside.
	GateOpenFlag = "gate_open"

	priestRoom = 1
)

// BuildSimpleGate builds the gated level. The gatekeeper stands in the goal
// room's doorway; talking to the robot priest sends the gatekeeper away and
// the hero then heads for the goal.
func BuildSimpleGate(cfg Config, rng *rand.Rand) (*sim.World, error) {
	result, err := generate(cfg, rng, true)
	if err != nil {
		return nil, err
	}
	d := dungeon.New(result)

	spot, ok := priestSpot(d, result)
	if !ok {
		return nil, fmt.Errorf("%w: no room for the priest", dungeon.ErrNoFloorTile)
	}
	priest, err := cfg.Roster.Create(PriestID, spot)
	if err != nil {
		return nil, err
	}

	gatekeeper, err := cfg.Roster.Create(GatekeeperID, result.GateDoor)
	if err != nil {
		return nil, err
	}

	hero := newHero(result, strategy.NewNPCSeeking(priest, rng, cfg.Budget), cfg)
	w := sim.NewWorld(SimpleGate, cfg.Seed, result, d, hero)
	w.AddNPC(priest)
	w.AddNPC(gatekeeper)

	priest.OnConversationEnd(func(*npc.NPC) {
		if !w.Dungeon().RemoveNPC(GatekeeperID) {
			return
		}
		w.Flags().Set(GateOpenFlag)
		w.Log().Info("Gate opened", "npc_id", GatekeeperID)
		w.Hero().ResetStrategy()
	})

	w.Log().Debug("Placed NPCs",
		"priest_tile", spot.String(),
		"priest_room", priest.RoomID(),
		"gatekeeper_tile", result.GateDoor.String(),
		"gatekeeper_room", gatekeeper.RoomID())
	return w, nil
}

// BuildOpenGoal builds an ungated level with the goal in the last room and
// nobody in the way.
func BuildOpenGoal(cfg Config, rng *rand.Rand) (*sim.World, error) {
	result, err := generate(cfg, rng, false)
	if err != nil {
		return nil, err
	}
	d := dungeon.New(result)
	hero := newHero(result, strategy.NewGoalSeeking(rng, cfg.Budget), cfg)
	return sim.NewWorld(OpenGoal, cfg.Seed, result, d, hero), nil
}

// priestSpot places the priest in the first grown room, falling back to
// the start room. Goal chain rooms sit behind the gate and are never used.
func priestSpot(d *dungeon.Dungeon, result *dungeon.Result) (dungeon.Position, bool) {
	for _, id := range []int{priestRoom, 0} {
		room, err := d.Room(id)
		if err != nil || room.Template.Reserved {
			continue
		}
		if spot, ok := FindNPCSpot(d, id, 2, 1, result.StartTile); ok {
			return spot, true
		}
	}
	return dungeon.Position{}, false
}

func newHero(result *dungeon.Result, s strategy.Strategy, cfg Config) *agent.Hero {
	h := agent.NewHero(result.StartX, result.StartY, s)
	if cfg.HeroSpeed > 0 {
		h.Speed = cfg.HeroSpeed
	}
	return h
}
