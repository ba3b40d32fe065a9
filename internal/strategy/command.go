// Package strategy decides where an agent goes next.
package strategy

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
	"github.com/lawnchairsociety/dungeonwalk/internal/npc"
)

// ErrNoPathToTarget means a chosen target cannot be reached at all. For a
// door target this points at a broken dungeon, so callers treat it as fatal.
var ErrNoPathToTarget = errors.New("strategy: no path to target")

// Command is what a strategy tells an agent to do next. It is one of
// Move, Interact or Idle.
type Command interface {
	command()
}

// Move steps the agent onto an adjacent tile.
type Move struct {
	Tile      dungeon.Position
	X, Y      float64 // pixel center of Tile
	Direction dungeon.Direction
}

// Interact starts an interaction with an NPC next to the agent.
type Interact struct {
	NPC *npc.NPC
}

// Idle means there is nothing to do this tick.
type Idle struct{}

func (Move) command()     {}
func (Interact) command() {}
func (Idle) command()     {}

func (m Move) String() string {
	return fmt.Sprintf("move %s to %s", m.Direction, m.Tile)
}

func (i Interact) String() string {
	return fmt.Sprintf("interact with %s", i.NPC.ID())
}

func (Idle) String() string { return "idle" }

// Strategy is re-evaluated every time its agent is idle.
type Strategy interface {
	// Decide returns the next command for an agent at pixel (x, y).
	Decide(x, y float64, d *dungeon.Dungeon) (Command, error)
	// Reset forgets dead ends, targets and cached paths. Used when the
	// dungeon's topology changes under the agent.
	Reset()
}

// moveTo builds the command for one step from a tile to its neighbor.
func moveTo(from, next dungeon.Position) Move {
	x, y := next.Center()
	return Move{Tile: next, X: x, Y: y, Direction: dungeon.DirectionBetween(from, next)}
}
