package dungeon

import "fmt"

// Position is a tile coordinate in the dungeon grid.
type Position struct {
	Row, Col int
}

// Pos is a convenience constructor for Position.
func Pos(row, col int) Position { return Position{Row: row, Col: col} }

// Add returns the sum of two positions.
func (p Position) Add(other Position) Position {
	p.Row += other.Row
	p.Col += other.Col
	return p
}

// Sub returns p minus other.
func (p Position) Sub(other Position) Position {
	p.Row -= other.Row
	p.Col -= other.Col
	return p
}

// Move returns the position n steps away in a direction.
func (p Position) Move(d Direction, n int) Position {
	step := d.Step()
	return Position{Row: p.Row + step.Row*n, Col: p.Col + step.Col*n}
}

// Adjacent reports whether two tiles share an edge.
func (p Position) Adjacent(other Position) bool {
	dr, dc := p.Row-other.Row, p.Col-other.Col
	return (dr == 0 && (dc == 1 || dc == -1)) || (dc == 0 && (dr == 1 || dr == -1))
}

// Manhattan returns the 4-connected distance between two tiles.
func (p Position) Manhattan(other Position) int {
	dr, dc := p.Row-other.Row, p.Col-other.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// Center returns the pixel coordinates of the tile center.
func (p Position) Center() (x, y float64) {
	return float64(p.Col*TileSize + TileSize/2), float64(p.Row*TileSize + TileSize/2)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// TileAt converts a pixel position to the tile containing it.
func TileAt(x, y float64) Position {
	return Position{Row: pixelToTile(y), Col: pixelToTile(x)}
}

func pixelToTile(v float64) int {
	t := int(v) / TileSize
	if v < 0 && int(v)%TileSize != 0 {
		t--
	}
	return t
}
