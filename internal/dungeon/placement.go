package dungeon

import "fmt"

// Canvas is the oversized grid rooms are stamped onto during generation.
// It tracks the bounding box of everything placed so far.
type Canvas struct {
	size  int
	tiles []Tile

	minRow, minCol int
	maxRow, maxCol int
	empty          bool

	boxes []box // bounding box of every placed room
}

type box struct {
	top, left, bottom, right int // inclusive
}

func (b box) intersects(o box) bool {
	return b.top <= o.bottom && o.top <= b.bottom && b.left <= o.right && o.left <= b.right
}

func boxOf(t *RoomTemplate, pos Position) box {
	return box{top: pos.Row, left: pos.Col, bottom: pos.Row + t.Height() - 1, right: pos.Col + t.Width() - 1}
}

// NewCanvas creates an empty size x size canvas.
func NewCanvas(size int) *Canvas {
	return &Canvas{
		size:  size,
		tiles: make([]Tile, size*size),
		empty: true,
	}
}

// Size returns the canvas edge length.
func (c *Canvas) Size() int { return c.size }

// Center returns the middle cell of the canvas.
func (c *Canvas) Center() Position {
	return Position{Row: c.size / 2, Col: c.size / 2}
}

func (c *Canvas) inBounds(row, col int) bool {
	return row >= 0 && row < c.size && col >= 0 && col < c.size
}

// At returns the tile at a canvas cell. Out of bounds reads are nothing.
func (c *Canvas) At(row, col int) Tile {
	if !c.inBounds(row, col) {
		return TileNothing
	}
	return c.tiles[row*c.size+col]
}

// Set writes a tile. Out of bounds writes are ignored.
func (c *Canvas) Set(row, col int, t Tile) {
	if !c.inBounds(row, col) {
		return
	}
	c.tiles[row*c.size+col] = t
}

// WouldOverlap reports whether stamping the template at pos would cover any
// non-empty cell, reach into another room's box or run off the canvas.
// Room boxes stay disjoint even where a template has empty cells.
func (c *Canvas) WouldOverlap(t *RoomTemplate, pos Position) bool {
	b := boxOf(t, pos)
	for _, placed := range c.boxes {
		if b.intersects(placed) {
			return true
		}
	}
	for r := 0; r < t.Height(); r++ {
		for col := 0; col < t.Width(); col++ {
			row, column := pos.Row+r, pos.Col+col
			if !c.inBounds(row, column) {
				return true
			}
			if c.tiles[row*c.size+column] != TileNothing {
				return true
			}
		}
	}
	return false
}

// Place stamps every template cell onto the canvas. Callers check
// WouldOverlap first.
func (c *Canvas) Place(t *RoomTemplate, pos Position) {
	for r := 0; r < t.Height(); r++ {
		for col := 0; col < t.Width(); col++ {
			c.Set(pos.Row+r, pos.Col+col, t.TileAt(r, col))
		}
	}
	c.boxes = append(c.boxes, boxOf(t, pos))
	c.extend(pos, pos.Add(Position{Row: t.Height() - 1, Col: t.Width() - 1}))
}

func (c *Canvas) extend(topLeft, bottomRight Position) {
	if c.empty {
		c.minRow, c.minCol = topLeft.Row, topLeft.Col
		c.maxRow, c.maxCol = bottomRight.Row, bottomRight.Col
		c.empty = false
		return
	}
	c.minRow = min(c.minRow, topLeft.Row)
	c.minCol = min(c.minCol, topLeft.Col)
	c.maxRow = max(c.maxRow, bottomRight.Row)
	c.maxCol = max(c.maxCol, bottomRight.Col)
}

// CalculatePlacement returns the top-left canvas position for newTemplate so
// that its door on the opposite side lands one step beyond the existing door
// at doorPos, which faces dir.
func CalculatePlacement(dir Direction, doorPos Position, newTemplate *RoomTemplate) (Position, error) {
	target := doorPos.Add(dir.Step())

	local, ok := newTemplate.DoorPosition(dir.Opposite())
	if !ok {
		return Position{}, fmt.Errorf("%w: %q has no %s door", ErrMissingDoor, newTemplate.Name, dir.Opposite())
	}
	return target.Sub(local), nil
}

// HasDoor reports whether the template has a door on the given side.
func HasDoor(t *RoomTemplate, dir Direction) bool { return t.HasDoor(dir) }

// HasMatchingDoor reports whether the template can connect to a door facing dir.
func HasMatchingDoor(t *RoomTemplate, dir Direction) bool { return t.HasMatchingDoor(dir) }
