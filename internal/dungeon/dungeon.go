package dungeon

import (
	"fmt"
	"math"

	"github.com/lawnchairsociety/dungeonwalk/internal/event"
)

// Occupant is anything standing on the map that blocks the tiles under it.
// NPCs implement it.
type Occupant interface {
	ID() string
	Position() (x, y float64)
	Tiles() []Position
	SetRoom(id int)
}

// Door is one door of a room, identified by its primary tile.
type Door struct {
	Direction Direction
	Tile      Position
	X, Y      float64 // pixel center of Tile
}

// Dungeon is the runtime model agents navigate. Only the owning world
// mutates it, through the methods below.
type Dungeon struct {
	m      *Map
	rooms  []Room
	start  Position
	goal   Position
	goalOK bool

	npcs     []Occupant
	npcRooms map[string]int

	bus *event.Bus
}

// New creates the runtime model for a generation result.
func New(r *Result) *Dungeon {
	return NewDungeon(r.Map, r.Rooms, r.StartTile)
}

// NewDungeon creates a runtime model from a map and its rooms. The map is
// owned by the dungeon from here on.
func NewDungeon(m *Map, rooms []Room, start Position) *Dungeon {
	d := &Dungeon{
		m:        m,
		rooms:    append([]Room(nil), rooms...),
		start:    start,
		npcRooms: make(map[string]int),
	}
	d.goal, d.goalOK = m.Find(TileGoal)
	return d
}

// SetEventBus attaches a bus. Mutations emit events on it from then on.
func (d *Dungeon) SetEventBus(bus *event.Bus) { d.bus = bus }

// Bus returns the attached event bus, or nil.
func (d *Dungeon) Bus() *event.Bus { return d.bus }

func (d *Dungeon) emit(e event.Event) {
	if d.bus != nil {
		d.bus.Emit(e)
	}
}

// Map returns the tile grid. Callers must not mutate it.
func (d *Dungeon) Map() *Map { return d.m }

// Rooms returns the placed rooms indexed by id.
func (d *Dungeon) Rooms() []Room { return append([]Room(nil), d.rooms...) }

// RoomCount returns the number of rooms.
func (d *Dungeon) RoomCount() int { return len(d.rooms) }

// Room returns a room by id.
func (d *Dungeon) Room(id int) (Room, error) {
	if id < 0 || id >= len(d.rooms) {
		return Room{}, fmt.Errorf("%w: %d", ErrUnknownRoom, id)
	}
	return d.rooms[id], nil
}

// StartTile returns the hero spawn tile.
func (d *Dungeon) StartTile() Position { return d.start }

// StartPosition returns the hero spawn pixel.
func (d *Dungeon) StartPosition() (x, y float64) { return d.start.Center() }

// WidthPixels returns the map width in pixels.
func (d *Dungeon) WidthPixels() int { return d.m.Cols() * TileSize }

// HeightPixels returns the map height in pixels.
func (d *Dungeon) HeightPixels() int { return d.m.Rows() * TileSize }

// IsTileWalkable reports whether an agent may step onto a tile. Tiles
// under an NPC are never walkable.
func (d *Dungeon) IsTileWalkable(row, col int) bool {
	if !d.m.InBounds(row, col) {
		return false
	}
	if !d.m.At(row, col).Walkable() {
		return false
	}
	_, occupied := d.NPCAtTile(row, col)
	return !occupied
}

// IsWalkable reports whether the tile under a pixel is walkable.
func (d *Dungeon) IsWalkable(x, y float64) bool {
	p := TileAt(x, y)
	return d.IsTileWalkable(p.Row, p.Col)
}

// RoomID returns the room containing a pixel.
func (d *Dungeon) RoomID(x, y float64) int {
	p := TileAt(x, y)
	return d.RoomIDForTile(p.Row, p.Col)
}

// RoomIDForTile returns the first room whose bounding box contains the
// tile. Tiles outside every room belong to room 0.
func (d *Dungeon) RoomIDForTile(row, col int) int {
	p := Position{Row: row, Col: col}
	for _, room := range d.rooms {
		if room.Contains(p) {
			return room.ID
		}
	}
	return 0
}

// GoalTile returns the goal tile, if a goal is placed.
func (d *Dungeon) GoalTile() (Position, bool) { return d.goal, d.goalOK }

// FindGoalPosition returns the pixel center of the goal tile.
func (d *Dungeon) FindGoalPosition() (x, y float64, ok bool) {
	if !d.goalOK {
		return 0, 0, false
	}
	x, y = d.goal.Center()
	return x, y, true
}

// GoalRoom returns the room holding the goal.
func (d *Dungeon) GoalRoom() (int, bool) {
	if !d.goalOK {
		return 0, false
	}
	return d.RoomIDForTile(d.goal.Row, d.goal.Col), true
}

// IsOnGoal reports whether a pixel lies on the goal tile.
func (d *Dungeon) IsOnGoal(x, y float64) bool {
	return d.goalOK && TileAt(x, y) == d.goal
}

// DistanceToGoal returns the straight-line pixel distance from a point to
// the goal center, or +Inf when there is no goal.
func (d *Dungeon) DistanceToGoal(x, y float64) float64 {
	gx, gy, ok := d.FindGoalPosition()
	if !ok {
		return math.Inf(1)
	}
	return math.Hypot(gx-x, gy-y)
}

// PlaceGoal moves the goal to the floor tile nearest the center of a room.
func (d *Dungeon) PlaceGoal(roomID int) (Position, error) {
	room, err := d.Room(roomID)
	if err != nil {
		return Position{}, err
	}
	d.RemoveGoal()

	p, err := FindFloorTileInRoom(d.m, room)
	if err != nil {
		return Position{}, err
	}
	d.m.set(p.Row, p.Col, TileGoal)
	d.goal, d.goalOK = p, true
	d.emit(event.Event{Kind: event.GoalPlaced, Room: roomID, Row: p.Row, Col: p.Col})
	return p, nil
}

// PlaceGoalAt moves the goal to a specific floor tile.
func (d *Dungeon) PlaceGoalAt(p Position) error {
	if d.m.At(p.Row, p.Col) != TileFloor {
		return fmt.Errorf("%w: %s is %s", ErrNoFloorTile, p, d.m.At(p.Row, p.Col))
	}
	d.RemoveGoal()
	d.m.set(p.Row, p.Col, TileGoal)
	d.goal, d.goalOK = p, true
	d.emit(event.Event{Kind: event.GoalPlaced, Room: d.RoomIDForTile(p.Row, p.Col), Row: p.Row, Col: p.Col})
	return nil
}

// RemoveGoal turns the goal tile back into floor. It reports whether a
// goal was present.
func (d *Dungeon) RemoveGoal() bool {
	if !d.goalOK {
		return false
	}
	d.m.set(d.goal.Row, d.goal.Col, TileFloor)
	d.goalOK = false
	d.emit(event.Event{Kind: event.GoalRemoved, Row: d.goal.Row, Col: d.goal.Col})
	return true
}

// SetTile rewrites one tile and emits TileChanged.
func (d *Dungeon) SetTile(p Position, t Tile) error {
	if !d.m.set(p.Row, p.Col, t) {
		return fmt.Errorf("dungeon: tile %s out of bounds", p)
	}
	switch {
	case t == TileGoal:
		d.goal, d.goalOK = p, true
	case d.goalOK && d.goal == p:
		d.goalOK = false
	}
	d.emit(event.Event{Kind: event.TileChanged, Row: p.Row, Col: p.Col, Value: int(t)})
	return nil
}

// FindDoorsInRoom returns each door of a room once, found by scanning the
// room box for primary door tiles.
func (d *Dungeon) FindDoorsInRoom(roomID int) ([]Door, error) {
	room, err := d.Room(roomID)
	if err != nil {
		return nil, err
	}

	var doors []Door
	for r := 0; r < room.Template.Height(); r++ {
		for c := 0; c < room.Template.Width(); c++ {
			p := room.Origin.Add(Position{Row: r, Col: c})
			tile := d.m.At(p.Row, p.Col)
			if !tile.IsPrimaryDoor() {
				continue
			}
			dir, _ := tile.DoorDirection()
			x, y := p.Center()
			doors = append(doors, Door{Direction: dir, Tile: p, X: x, Y: y})
		}
	}
	return doors, nil
}

// AddNPC registers an occupant and assigns it the room it stands in.
func (d *Dungeon) AddNPC(o Occupant) {
	x, y := o.Position()
	room := d.RoomID(x, y)
	o.SetRoom(room)
	d.npcs = append(d.npcs, o)
	d.npcRooms[o.ID()] = room
	d.emit(event.Event{Kind: event.NPCAdded, ID: o.ID(), Room: room})
}

// RemoveNPC removes an occupant by id. It reports whether one was found.
func (d *Dungeon) RemoveNPC(id string) bool {
	for i, o := range d.npcs {
		if o.ID() == id {
			d.npcs = append(d.npcs[:i], d.npcs[i+1:]...)
			delete(d.npcRooms, id)
			d.emit(event.Event{Kind: event.NPCRemoved, ID: id})
			return true
		}
	}
	return false
}

// NPCs returns every registered occupant.
func (d *Dungeon) NPCs() []Occupant { return append([]Occupant(nil), d.npcs...) }

// NPC returns an occupant by id.
func (d *Dungeon) NPC(id string) (Occupant, bool) {
	for _, o := range d.npcs {
		if o.ID() == id {
			return o, true
		}
	}
	return nil, false
}

// NPCAtTile returns the occupant whose footprint covers a tile.
func (d *Dungeon) NPCAtTile(row, col int) (Occupant, bool) {
	p := Position{Row: row, Col: col}
	for _, o := range d.npcs {
		for _, t := range o.Tiles() {
			if t == p {
				return o, true
			}
		}
	}
	return nil, false
}

// NPCsInRoom returns the occupants assigned to a room.
func (d *Dungeon) NPCsInRoom(roomID int) []Occupant {
	var out []Occupant
	for _, o := range d.npcs {
		if d.npcRooms[o.ID()] == roomID {
			out = append(out, o)
		}
	}
	return out
}

// IsAdjacentToNPC reports whether a tile shares an edge with any tile of
// the occupant's footprint.
func (d *Dungeon) IsAdjacentToNPC(p Position, o Occupant) bool {
	for _, t := range o.Tiles() {
		if p.Adjacent(t) {
			return true
		}
	}
	return false
}

// approachOrder is the neighbor order used to stand next to something.
var approachOrder = []Direction{South, East, West, North}

// FindAdjacentWalkableTile returns a walkable neighbor of a tile,
// preferring south, then east, west and north.
func (d *Dungeon) FindAdjacentWalkableTile(p Position) (Position, bool) {
	for _, dir := range approachOrder {
		n := p.Add(dir.Step())
		if d.IsTileWalkable(n.Row, n.Col) {
			return n, true
		}
	}
	return Position{}, false
}

// Fingerprint returns the fingerprint of the current tile grid.
func (d *Dungeon) Fingerprint() string { return d.m.Fingerprint() }
