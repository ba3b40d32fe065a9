package strategy

import (
	"math/rand"

	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
	"github.com/lawnchairsociety/dungeonwalk/internal/logger"
	"github.com/lawnchairsociety/dungeonwalk/internal/npc"
	"github.com/lawnchairsociety/dungeonwalk/internal/pathfind"
)

// NPCSeeking walks up to one NPC and interacts with it once, then hands
// over to goal seeking for the rest of the run.
type NPCSeeking struct {
	target *npc.NPC
	inner  *GoalSeeking
	rng    *rand.Rand
	budget int

	interacted bool

	path   pathfind.Path
	cursor int
}

// NewNPCSeeking creates a strategy that seeks out n before the goal.
func NewNPCSeeking(n *npc.NPC, rng *rand.Rand, budget int) *NPCSeeking {
	if budget <= 0 {
		budget = pathfind.DefaultBudget
	}
	return &NPCSeeking{
		target: n,
		inner:  NewGoalSeeking(rng, budget),
		rng:    rng,
		budget: budget,
	}
}

// Interacted reports whether the NPC phase is over.
func (s *NPCSeeking) Interacted() bool { return s.interacted }

// GoalSeeking returns the strategy used once the NPC phase is over.
func (s *NPCSeeking) GoalSeeking() *GoalSeeking { return s.inner }

// Reset drops the cached approach path and the goal-seeking memory. An
// interaction that already happened stays done.
func (s *NPCSeeking) Reset() {
	s.path = nil
	s.cursor = 0
	s.inner.Reset()
}

// Decide implements Strategy.
func (s *NPCSeeking) Decide(x, y float64, d *dungeon.Dungeon) (Command, error) {
	if s.interacted {
		return s.inner.Decide(x, y, d)
	}

	if _, ok := d.NPC(s.target.ID()); !ok {
		logger.Warning("NPC to seek is gone, seeking goal", "npc_id", s.target.ID())
		return s.giveUp(x, y, d)
	}

	hero := dungeon.TileAt(x, y)
	if d.IsAdjacentToNPC(hero, s.target) {
		s.interacted = true
		s.path = nil
		return Interact{NPC: s.target}, nil
	}

	if s.path == nil || s.cursor >= len(s.path) {
		path, found, err := s.approach(hero, d)
		if err != nil {
			return nil, err
		}
		if !found {
			logger.Warning("No way to reach NPC, seeking goal",
				"npc_id", s.target.ID(),
				"hero_tile", hero.String())
			return s.giveUp(x, y, d)
		}
		s.path, s.cursor = path, 0
	}

	next := s.path[s.cursor]
	s.cursor++
	return moveTo(hero, next), nil
}

func (s *NPCSeeking) giveUp(x, y float64, d *dungeon.Dungeon) (Command, error) {
	s.interacted = true
	s.path = nil
	return s.inner.Decide(x, y, d)
}

// approach finds a path to the first reachable tile next to the NPC.
func (s *NPCSeeking) approach(hero dungeon.Position, d *dungeon.Dungeon) (pathfind.Path, bool, error) {
	for _, tile := range ApproachTiles(s.target) {
		if !d.IsTileWalkable(tile.Row, tile.Col) {
			continue
		}
		path, found, err := pathfind.FindPath(hero, tile, d.IsTileWalkable, s.budget, s.rng)
		if err != nil {
			return nil, false, err
		}
		if found && len(path) > 0 {
			return path, true, nil
		}
	}
	return nil, false, nil
}

// ApproachTiles lists the tiles bordering an NPC's base in the order an
// agent prefers to stand on them: the row below first, then the sides
// from the bottom up, then the row above.
func ApproachTiles(n *npc.NPC) []dungeon.Position {
	top, left := n.TileRow(), n.TileCol()
	bottom := top + n.BaseTileHeight() - 1
	right := left + n.BaseTileWidth() - 1

	var tiles []dungeon.Position
	for c := left; c <= right; c++ {
		tiles = append(tiles, dungeon.Pos(bottom+1, c))
	}
	for r := bottom; r >= top; r-- {
		tiles = append(tiles, dungeon.Pos(r, right+1), dungeon.Pos(r, left-1))
	}
	for c := left; c <= right; c++ {
		tiles = append(tiles, dungeon.Pos(top-1, c))
	}
	return tiles
}
