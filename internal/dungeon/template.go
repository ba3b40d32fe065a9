package dungeon

import (
	"errors"
	"fmt"
)

// doorChars maps each side to its two door characters, primary half first.
var doorChars = map[Direction][2]rune{
	North: {'n', 'N'},
	South: {'s', 'S'},
	East:  {'e', 'E'},
	West:  {'w', 'W'},
}

// TemplateError describes a problem at one cell of a room template.
type TemplateError struct {
	Template string
	Row, Col int
	Message  string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %q at (%d,%d): %s", e.Template, e.Row, e.Col, e.Message)
}

// Unwrap lets callers match any template problem with ErrInvalidTemplate.
func (e *TemplateError) Unwrap() error { return ErrInvalidTemplate }

// RoomTemplate is an immutable room shape stamped onto the canvas during
// generation.
type RoomTemplate struct {
	Name     string
	Rows     []string
	Reserved bool

	width  int
	height int
	tiles  []Tile
	doors  map[Direction]Position
}

// NewRoomTemplate parses ASCII rows into a template. Rows shorter than the
// widest one are padded with nothing.
func NewRoomTemplate(name string, rows []string, reserved bool) (*RoomTemplate, error) {
	if len(rows) == 0 {
		return nil, &TemplateError{Template: name, Message: "empty ASCII art"}
	}

	t := &RoomTemplate{
		Name:     name,
		Rows:     append([]string(nil), rows...),
		Reserved: reserved,
		height:   len(rows),
		doors:    make(map[Direction]Position),
	}
	for _, line := range rows {
		if n := len([]rune(line)); n > t.width {
			t.width = n
		}
	}

	var errs []error
	t.tiles = make([]Tile, t.width*t.height)
	for r, line := range rows {
		for c, ch := range []rune(line) {
			tile, ok := TileForRune(ch)
			if !ok || tile == TileGoal {
				errs = append(errs, &TemplateError{Template: name, Row: r, Col: c, Message: fmt.Sprintf("unknown character %q", ch)})
				continue
			}
			t.tiles[r*t.width+c] = tile
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, dir := range AllDirections() {
		if pos, ok := t.scanDoor(dir); ok {
			t.doors[dir] = pos
		}
	}
	return t, nil
}

// scanDoor returns the first cell in row-major order holding either half of
// the door on the given side.
func (t *RoomTemplate) scanDoor(dir Direction) (Position, bool) {
	chars := doorChars[dir]
	for r, line := range t.Rows {
		for c, ch := range []rune(line) {
			if ch == chars[0] || ch == chars[1] {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}

// Width returns the template width in tiles.
func (t *RoomTemplate) Width() int { return t.width }

// Height returns the template height in tiles.
func (t *RoomTemplate) Height() int { return t.height }

// TileAt returns the template tile at a local coordinate. Cells outside the
// template are nothing.
func (t *RoomTemplate) TileAt(row, col int) Tile {
	if row < 0 || row >= t.height || col < 0 || col >= t.width {
		return TileNothing
	}
	return t.tiles[row*t.width+col]
}

// HasDoor reports whether the template has a door on the given side.
func (t *RoomTemplate) HasDoor(dir Direction) bool {
	_, ok := t.doors[dir]
	return ok
}

// HasMatchingDoor reports whether the template can connect to an existing
// door facing dir, i.e. whether it has a door on the opposite side.
func (t *RoomTemplate) HasMatchingDoor(dir Direction) bool {
	return t.HasDoor(dir.Opposite())
}

// DoorPosition returns the local position of the primary tile of the door
// on the given side.
func (t *RoomTemplate) DoorPosition(dir Direction) (Position, bool) {
	pos, ok := t.doors[dir]
	return pos, ok
}

// Doors returns the sides that have a door, in direction order.
func (t *RoomTemplate) Doors() []Direction {
	var dirs []Direction
	for _, dir := range AllDirections() {
		if t.HasDoor(dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Contains reports whether a local coordinate lies inside the template box.
func (t *RoomTemplate) Contains(row, col int) bool {
	return row >= 0 && row < t.height && col >= 0 && col < t.width
}

// Validate checks door pairing and base tiles. Every problem found is
// returned, joined.
func (t *RoomTemplate) Validate() error {
	var errs []error
	fail := func(r, c int, format string, args ...any) {
		errs = append(errs, &TemplateError{Template: t.Name, Row: r, Col: c, Message: fmt.Sprintf(format, args...)})
	}

	for r := 0; r < t.height; r++ {
		for c := 0; c < t.width; c++ {
			tile := t.TileAt(r, c)

			switch tile {
			case TileNorthDoorWest:
				if t.TileAt(r, c+1) != TileNorthDoorEast {
					fail(r, c, "north door west half without east half to its right")
				}
			case TileNorthDoorEast:
				if t.TileAt(r, c-1) != TileNorthDoorWest {
					fail(r, c, "north door east half without west half to its left")
				}
			case TileSouthDoorWest:
				if t.TileAt(r, c+1) != TileSouthDoorEast {
					fail(r, c, "south door west half without east half to its right")
				}
			case TileSouthDoorEast:
				if t.TileAt(r, c-1) != TileSouthDoorWest {
					fail(r, c, "south door east half without west half to its left")
				}
			case TileWestDoorNorth:
				if t.TileAt(r+1, c) != TileWestDoorSouth {
					fail(r, c, "west door north half without south half below")
				}
			case TileWestDoorSouth:
				if t.TileAt(r-1, c) != TileWestDoorNorth {
					fail(r, c, "west door south half without north half above")
				}
			case TileEastDoorNorth:
				if t.TileAt(r+1, c) != TileEastDoorSouth {
					fail(r, c, "east door north half without south half below")
				}
			case TileEastDoorSouth:
				if t.TileAt(r-1, c) != TileEastDoorNorth {
					fail(r, c, "east door south half without north half above")
				}
			}

			if bases := tile.RequiredBase(); bases != nil {
				if !containsTile(bases, t.TileAt(r+1, c)) {
					fail(r, c, "%s needs one of %v below, found %s", tile, bases, t.TileAt(r+1, c))
				}
			}
		}
	}

	for _, dir := range AllDirections() {
		primary := doorChars[dir][0]
		count := 0
		for _, line := range t.Rows {
			for _, ch := range line {
				if ch == primary {
					count++
				}
			}
		}
		if count > 1 {
			fail(0, 0, "%d %s doors, at most one allowed", count, dir)
		}
	}

	return errors.Join(errs...)
}

func containsTile(tiles []Tile, t Tile) bool {
	for _, candidate := range tiles {
		if candidate == t {
			return true
		}
	}
	return false
}
