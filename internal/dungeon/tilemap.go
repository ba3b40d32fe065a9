package dungeon

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Map is a finished, cropped dungeon tile grid.
type Map struct {
	rows, cols int
	tiles      []Tile
}

// NewMap creates a map filled with nothing.
func NewMap(rows, cols int) *Map {
	return &Map{rows: rows, cols: cols, tiles: make([]Tile, rows*cols)}
}

// ParseMap builds a map from rows in the ASCII dialect, with '*' for the goal.
func ParseMap(lines []string) (*Map, error) {
	cols := 0
	for _, line := range lines {
		cols = max(cols, len([]rune(line)))
	}
	m := NewMap(len(lines), cols)
	for r, line := range lines {
		for c, ch := range []rune(line) {
			t, ok := TileForRune(ch)
			if !ok {
				return nil, fmt.Errorf("%w: unknown character %q at (%d,%d)", ErrInvalidTemplate, ch, r, c)
			}
			m.tiles[r*cols+c] = t
		}
	}
	return m, nil
}

// Rows returns the map height in tiles.
func (m *Map) Rows() int { return m.rows }

// Cols returns the map width in tiles.
func (m *Map) Cols() int { return m.cols }

// InBounds reports whether a tile coordinate is on the map.
func (m *Map) InBounds(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.cols
}

// At returns the tile at (row, col); off-map cells are nothing.
func (m *Map) At(row, col int) Tile {
	if !m.InBounds(row, col) {
		return TileNothing
	}
	return m.tiles[row*m.cols+col]
}

func (m *Map) set(row, col int, t Tile) bool {
	if !m.InBounds(row, col) {
		return false
	}
	m.tiles[row*m.cols+col] = t
	return true
}

// Find returns the first position holding tile t in row-major order.
func (m *Map) Find(t Tile) (Position, bool) {
	for i, tile := range m.tiles {
		if tile == t {
			return Position{Row: i / m.cols, Col: i % m.cols}, true
		}
	}
	return Position{}, false
}

// Each calls fn for every cell in row-major order.
func (m *Map) Each(fn func(p Position, t Tile)) {
	for i, tile := range m.tiles {
		fn(Position{Row: i / m.cols, Col: i % m.cols}, tile)
	}
}

// Clone returns an independent copy of the map.
func (m *Map) Clone() *Map {
	out := &Map{rows: m.rows, cols: m.cols, tiles: make([]Tile, len(m.tiles))}
	copy(out.tiles, m.tiles)
	return out
}

// Lines renders the map in the ASCII dialect, one string per row.
func (m *Map) Lines() []string {
	lines := make([]string, m.rows)
	var sb strings.Builder
	for r := 0; r < m.rows; r++ {
		sb.Reset()
		for c := 0; c < m.cols; c++ {
			sb.WriteRune(m.At(r, c).Rune())
		}
		lines[r] = sb.String()
	}
	return lines
}

// String renders the map in the ASCII dialect.
func (m *Map) String() string {
	return strings.Join(m.Lines(), "\n")
}

// Fingerprint returns a short hex digest of the map layout. Identical
// layouts always share a fingerprint.
func (m *Map) Fingerprint() string {
	h, _ := blake2b.New(16, nil)
	fmt.Fprintf(h, "%dx%d:", m.rows, m.cols)
	buf := make([]byte, len(m.tiles))
	for i, t := range m.tiles {
		buf[i] = byte(t)
	}
	h.Write(buf)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// cropCanvas copies the canvas bounding box plus padding into a new map and
// returns the crop origin in canvas coordinates.
func cropCanvas(c *Canvas, padding int) (*Map, Position) {
	if c.empty {
		return NewMap(0, 0), Position{}
	}
	minRow := max(0, c.minRow-padding)
	minCol := max(0, c.minCol-padding)
	maxRow := min(c.size-1, c.maxRow+padding)
	maxCol := min(c.size-1, c.maxCol+padding)

	m := NewMap(maxRow-minRow+1, maxCol-minCol+1)
	for r := minRow; r <= maxRow; r++ {
		copy(m.tiles[(r-minRow)*m.cols:(r-minRow+1)*m.cols], c.tiles[r*c.size+minCol:r*c.size+maxCol+1])
	}
	return m, Position{Row: minRow, Col: minCol}
}

// Room is a template placed on the map.
type Room struct {
	ID       int
	Origin   Position // top-left tile
	Template *RoomTemplate
}

// Contains reports whether a tile lies inside the room's bounding box.
func (r Room) Contains(p Position) bool {
	return r.Template.Contains(p.Row-r.Origin.Row, p.Col-r.Origin.Col)
}

// Center returns the middle tile of the room box.
func (r Room) Center() Position {
	return Position{Row: r.Origin.Row + r.Template.Height()/2, Col: r.Origin.Col + r.Template.Width()/2}
}

// DoorTile returns the map position of the primary tile of a door.
func (r Room) DoorTile(dir Direction) (Position, bool) {
	local, ok := r.Template.DoorPosition(dir)
	if !ok {
		return Position{}, false
	}
	return r.Origin.Add(local), true
}

// FindFloorTileInRoom returns the floor tile nearest the room center,
// searching outward ring by ring. Tiles in avoid are skipped.
func FindFloorTileInRoom(m *Map, room Room, avoid ...Position) (Position, error) {
	usable := func(p Position) bool {
		if m.At(p.Row, p.Col) != TileFloor {
			return false
		}
		for _, a := range avoid {
			if a == p {
				return false
			}
		}
		return true
	}

	center := room.Center()
	if usable(center) {
		return center, nil
	}

	h, w := room.Template.Height(), room.Template.Width()
	for offset := 1; offset < max(h, w); offset++ {
		for dr := -offset; dr <= offset; dr++ {
			for dc := -offset; dc <= offset; dc++ {
				if abs(dr) != offset && abs(dc) != offset {
					continue
				}
				p := Position{Row: center.Row + dr, Col: center.Col + dc}
				if room.Contains(p) && usable(p) {
					return p, nil
				}
			}
		}
	}
	return Position{}, fmt.Errorf("%w: room %d (%s)", ErrNoFloorTile, room.ID, room.Template.Name)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
