package strategy

import (
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
	"github.com/lawnchairsociety/dungeonwalk/internal/logger"
	"github.com/lawnchairsociety/dungeonwalk/internal/pathfind"
	"github.com/zyedidia/generic/mapset"
)

// doorClearance is how far past a door the agent aims, so it ends up
// fully inside the next room.
const doorClearance = 2

// GoalSeeking walks room to room toward the goal. It remembers which doors
// lead only to exhausted branches and avoids them.
type GoalSeeking struct {
	rng    *rand.Rand
	budget int

	lastDoor    dungeon.Direction // direction of the last door tile stood on
	hasLastDoor bool
	lastRoom    int
	roomKnown   bool
	entry       dungeon.Direction // door of the current room we came in by
	hasEntry    bool
	dead        mapset.Set[dungeon.DoorKey]

	target    dungeon.Position
	hasTarget bool

	path       pathfind.Path
	cursor     int
	pathTarget dungeon.Position
}

// NewGoalSeeking creates a goal-seeking strategy. A budget of zero uses
// pathfind.DefaultBudget.
func NewGoalSeeking(rng *rand.Rand, budget int) *GoalSeeking {
	if budget <= 0 {
		budget = pathfind.DefaultBudget
	}
	return &GoalSeeking{
		rng:    rng,
		budget: budget,
		dead:   mapset.New[dungeon.DoorKey](),
	}
}

// Reset clears every bit of navigation memory.
func (s *GoalSeeking) Reset() {
	s.hasLastDoor = false
	s.roomKnown = false
	s.hasEntry = false
	s.dead = mapset.New[dungeon.DoorKey]()
	s.clearTarget()
}

func (s *GoalSeeking) clearTarget() {
	s.hasTarget = false
	s.path = nil
	s.cursor = 0
}

// IsDeadEnd reports whether a door has been marked as leading nowhere new.
func (s *GoalSeeking) IsDeadEnd(room int, dir dungeon.Direction) bool {
	return s.dead.Has(dungeon.DoorKey{Room: room, Direction: dir})
}

// DeadEnds returns the number of doors marked as dead ends.
func (s *GoalSeeking) DeadEnds() int { return s.dead.Size() }

// Target returns the tile currently aimed for.
func (s *GoalSeeking) Target() (dungeon.Position, bool) { return s.target, s.hasTarget }

// Decide implements Strategy.
func (s *GoalSeeking) Decide(x, y float64, d *dungeon.Dungeon) (Command, error) {
	hero := dungeon.TileAt(x, y)

	if dir, ok := d.Map().At(hero.Row, hero.Col).DoorDirection(); ok {
		s.lastDoor, s.hasLastDoor = dir, true
	}

	room := d.RoomIDForTile(hero.Row, hero.Col)
	switch {
	case !s.roomKnown:
		s.lastRoom, s.roomKnown = room, true
	case room != s.lastRoom:
		s.crossed(d, s.lastRoom, room)
		s.lastRoom = room
	}

	if d.IsOnGoal(x, y) {
		return Idle{}, nil
	}

	if s.hasTarget && hero == s.target {
		s.clearTarget()
	}

	if !s.hasTarget {
		if err := s.selectTarget(d, room); err != nil {
			return nil, err
		}
		if !s.hasTarget {
			return Idle{}, nil
		}
	}

	if s.path == nil || s.cursor >= len(s.path) || s.pathTarget != s.target {
		path, found, err := pathfind.FindPath(hero, s.target, d.IsTileWalkable, s.budget, s.rng)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%w: %s from %s in room %d", ErrNoPathToTarget, s.target, hero, room)
		}
		s.path, s.cursor, s.pathTarget = path, 0, s.target
	}

	if s.cursor >= len(s.path) {
		s.clearTarget()
		return Idle{}, nil
	}
	next := s.path[s.cursor]
	s.cursor++
	return moveTo(hero, next), nil
}

// crossed updates the dead-end memory after walking from room a into
// room b.
func (s *GoalSeeking) crossed(d *dungeon.Dungeon, a, b int) {
	if !s.hasLastDoor {
		return
	}
	e := s.lastDoor
	s.entry, s.hasEntry = e, true

	// b offers nothing past the door we came in by: the door out of a is a dead end
	if !s.hasLiveDoorOtherThan(d, b, e) {
		s.markDead(a, e.Opposite())
	}
	// a offers nothing past the door we left by: don't walk back into it
	if !s.hasLiveDoorOtherThan(d, a, e.Opposite()) {
		s.markDead(b, e)
	}
}

func (s *GoalSeeking) markDead(room int, dir dungeon.Direction) {
	key := dungeon.DoorKey{Room: room, Direction: dir}
	if s.dead.Has(key) {
		return
	}
	s.dead.Put(key)
	logger.Debug("Marked dead end", "room", room, "door", dir.String())
}

func (s *GoalSeeking) hasLiveDoorOtherThan(d *dungeon.Dungeon, room int, except dungeon.Direction) bool {
	doors, err := d.FindDoorsInRoom(room)
	if err != nil {
		return false
	}
	for _, door := range doors {
		if door.Direction != except && !s.IsDeadEnd(room, door.Direction) {
			return true
		}
	}
	return false
}

// selectTarget aims at the goal when it is in this room, otherwise at a
// tile just past one of the room's doors.
func (s *GoalSeeking) selectTarget(d *dungeon.Dungeon, room int) error {
	if goal, ok := d.GoalTile(); ok && d.RoomIDForTile(goal.Row, goal.Col) == room {
		s.target, s.hasTarget = goal, true
		return nil
	}

	doors, err := d.FindDoorsInRoom(room)
	if err != nil {
		return err
	}
	if len(doors) == 0 {
		logger.Warning("No goal or doors in room, idling", "room", room)
		return nil
	}

	var fresh, live []dungeon.Door
	for _, door := range doors {
		if s.IsDeadEnd(room, door.Direction) {
			continue
		}
		live = append(live, door)
		if !s.hasEntry || door.Direction != s.entry {
			fresh = append(fresh, door)
		}
	}

	choices := fresh
	if len(choices) == 0 {
		choices = live
	}
	if len(choices) == 0 {
		choices = doors
	}
	door := choices[s.rng.Intn(len(choices))]

	s.target, s.hasTarget = door.Tile.Move(door.Direction, doorClearance), true
	logger.Debug("Selected door", "room", room, "door", door.Direction.String(), "target", s.target.String())
	return nil
}
