package dungeon

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/dungeonwalk/internal/logger"
	"github.com/zyedidia/generic/mapset"
)

const (
	// StartTemplate is always the first room. It has a door on every side
	// and enough open floor for a two-tile NPC.
	StartTemplate = "large"

	// GoalTemplate has a single south door so a gate can block it.
	GoalTemplate = "goal"

	// WestConnector joins a west-facing open door to the goal room.
	WestConnector = "connector-l"

	// EastConnector joins an east-facing open door to the goal room.
	EastConnector = "connector-j"

	// CropPadding is the empty border kept around the cropped map.
	CropPadding = 5

	// DefaultMaxRetries bounds how many times generation starts over.
	DefaultMaxRetries = 50
)

// GeneratorConfig contains parameters for dungeon generation
type GeneratorConfig struct {
	Rooms      int  // Rooms grown from the start room, start included
	MaxRetries int  // Whole-dungeon attempts before giving up
	GatedGoal  bool // Attach a south-door goal room instead of using the last room
}

// DefaultGeneratorConfig returns a 5-room gated dungeon configuration
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Rooms:      5,
		MaxRetries: DefaultMaxRetries,
		GatedGoal:  true,
	}
}

// Result is the output of a successful generation
type Result struct {
	Map   *Map
	Rooms []Room // indexed by room id

	StartTile Position
	StartX    float64 // pixel center of StartTile
	StartY    float64

	GoalRoom int
	GoalTile Position

	Gated         bool
	GateDirection Direction // side of the goal room the gate blocks
	GateDoor      Position  // primary tile of the goal room's gated door

	Attempts    int
	SealedDoors int
}

// Generator grows dungeons from a template catalog
type Generator struct {
	catalog    *Catalog
	config     GeneratorConfig
	rng        *rand.Rand
	maxRetries int
}

// NewGenerator creates a new dungeon generator. All randomness comes from rng.
func NewGenerator(catalog *Catalog, config GeneratorConfig, rng *rand.Rand) *Generator {
	maxRetries := config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Generator{
		catalog:    catalog,
		config:     config,
		rng:        rng,
		maxRetries: maxRetries,
	}
}

type openDoor struct {
	room int
	dir  Direction
	pos  Position // canvas position of the primary door tile
}

// attempt holds the state of one generation try
type attempt struct {
	canvas    *Canvas
	rooms     []Room
	open      []openDoor
	abandoned []openDoor
	connected mapset.Set[DoorKey]

	goalRoom int
	gateDoor Position
}

// Generate builds a dungeon, retrying from scratch when the goal room
// cannot be attached.
func (g *Generator) Generate() (*Result, error) {
	if g.config.Rooms < 1 {
		return nil, fmt.Errorf("%w: room count must be at least 1, got %d", ErrInvalidConfig, g.config.Rooms)
	}
	start, ok := g.catalog.Get(StartTemplate)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, StartTemplate)
	}

	var lastErr error
	for n := 1; n <= g.maxRetries; n++ {
		a := g.grow(start)

		if g.config.GatedGoal {
			if err := g.attachGoal(a); err != nil {
				if errors.Is(err, ErrNoGoalAttachment) {
					logger.Debug("Discarding dungeon attempt", "attempt", n, "reason", err)
					lastErr = err
					continue
				}
				return nil, err
			}
		} else {
			a.goalRoom = len(a.rooms) - 1
		}

		result, err := g.finish(a)
		if err != nil {
			return nil, err
		}
		result.Attempts = n
		return result, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", g.maxRetries, lastErr)
}

func (g *Generator) canvasSize() int {
	// every room reaches at most one template width further out
	size := (g.config.Rooms + 3) * 2 * 24
	if size < 128 {
		size = 128
	}
	return size
}

// grow places the start room and then rooms on open doors until the room
// count is reached or no open door is left.
func (g *Generator) grow(start *RoomTemplate) *attempt {
	a := &attempt{
		canvas:    NewCanvas(g.canvasSize()),
		connected: mapset.New[DoorKey](),
	}

	a.addRoom(start, a.canvas.Center())
	growth := g.catalog.Growth()

	for len(a.rooms) < g.config.Rooms && len(a.open) > 0 {
		g.rng.Shuffle(len(a.open), func(i, j int) { a.open[i], a.open[j] = a.open[j], a.open[i] })
		door := a.open[len(a.open)-1]
		a.open = a.open[:len(a.open)-1]

		var candidates []*RoomTemplate
		for _, t := range growth {
			if t.HasMatchingDoor(door.dir) {
				candidates = append(candidates, t)
			}
		}
		g.rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

		placed := false
		for _, t := range candidates {
			pos, err := CalculatePlacement(door.dir, door.pos, t)
			if err != nil || a.canvas.WouldOverlap(t, pos) {
				continue
			}
			id := a.addRoom(t, pos)
			a.connect(door.room, door.dir, id)
			placed = true
			break
		}

		if !placed {
			a.abandoned = append(a.abandoned, door)
		}
	}
	return a
}

// addRoom stamps a template and queues its unconnected doors.
func (a *attempt) addRoom(t *RoomTemplate, pos Position) int {
	id := len(a.rooms)
	a.canvas.Place(t, pos)
	a.rooms = append(a.rooms, Room{ID: id, Origin: pos, Template: t})
	for _, dir := range t.Doors() {
		local, _ := t.DoorPosition(dir)
		a.open = append(a.open, openDoor{room: id, dir: dir, pos: pos.Add(local)})
	}
	return id
}

// connect marks the door of from facing dir and the matching door of to as
// connected and drops the latter from the open queue.
func (a *attempt) connect(from int, dir Direction, to int) {
	a.connected.Put(DoorKey{Room: from, Direction: dir})
	a.connected.Put(DoorKey{Room: to, Direction: dir.Opposite()})

	kept := a.open[:0]
	for _, d := range a.open {
		if a.connected.Has(DoorKey{Room: d.room, Direction: d.dir}) {
			continue
		}
		kept = append(kept, d)
	}
	a.open = kept
}

// attachGoal connects the goal room to an unconnected door, preferring a
// north door, then a west door through the L connector, then an east door
// through the J connector.
func (g *Generator) attachGoal(a *attempt) error {
	goal, ok := g.catalog.Get(GoalTemplate)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, GoalTemplate)
	}

	candidates := append(append([]openDoor(nil), a.open...), a.abandoned...)
	g.rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	for _, dir := range []Direction{North, West, East} {
		for _, door := range candidates {
			if door.dir != dir {
				continue
			}

			if dir == North {
				pos, err := CalculatePlacement(North, door.pos, goal)
				if err != nil {
					return err
				}
				if a.canvas.WouldOverlap(goal, pos) {
					continue
				}
				id := a.addRoom(goal, pos)
				a.connect(door.room, North, id)
				a.setGoal(id)
				return nil
			}

			name := WestConnector
			if dir == East {
				name = EastConnector
			}
			connector, ok := g.catalog.Get(name)
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
			}

			cpos, err := CalculatePlacement(dir, door.pos, connector)
			if err != nil {
				return err
			}
			if a.canvas.WouldOverlap(connector, cpos) {
				continue
			}
			cdoor, ok := connector.DoorPosition(North)
			if !ok {
				return fmt.Errorf("%w: connector %q has no north door", ErrMissingDoor, name)
			}
			gpos, err := CalculatePlacement(North, cpos.Add(cdoor), goal)
			if err != nil {
				return err
			}
			if a.canvas.WouldOverlap(goal, gpos) || boxOf(connector, cpos).intersects(boxOf(goal, gpos)) {
				continue
			}

			cid := a.addRoom(connector, cpos)
			a.connect(door.room, dir, cid)
			gid := a.addRoom(goal, gpos)
			a.connect(cid, North, gid)
			a.setGoal(gid)
			return nil
		}
	}

	return ErrNoGoalAttachment
}

func (a *attempt) setGoal(id int) {
	a.goalRoom = id
	a.gateDoor, _ = a.rooms[id].DoorTile(South)
}

// finish seals blind doors, crops the canvas and locates the start and
// goal tiles.
func (g *Generator) finish(a *attempt) (*Result, error) {
	sealed := sealDoors(a.canvas, a.rooms, a.connected)

	m, origin := cropCanvas(a.canvas, CropPadding)

	rooms := make([]Room, len(a.rooms))
	for i, room := range a.rooms {
		room.Origin = room.Origin.Sub(origin)
		rooms[i] = room
	}

	startTile, err := FindFloorTileInRoom(m, rooms[0])
	if err != nil {
		return nil, err
	}
	// a lone start room still needs a goal the hero has to walk to
	goalTile, err := FindFloorTileInRoom(m, rooms[a.goalRoom], startTile)
	if err != nil {
		return nil, err
	}
	m.set(goalTile.Row, goalTile.Col, TileGoal)

	r := &Result{
		Map:         m,
		Rooms:       rooms,
		StartTile:   startTile,
		GoalRoom:    a.goalRoom,
		GoalTile:    goalTile,
		Gated:       g.config.GatedGoal,
		SealedDoors: sealed,
	}
	r.StartX, r.StartY = startTile.Center()
	if r.Gated {
		r.GateDirection = South
		r.GateDoor = a.gateDoor.Sub(origin)
	}

	logger.Debug("Generated dungeon",
		"rooms", len(rooms),
		"rows", m.Rows(),
		"cols", m.Cols(),
		"goal_room", a.goalRoom,
		"sealed_doors", sealed)

	return r, nil
}
