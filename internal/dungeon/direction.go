package dungeon

// Direction represents a cardinal direction in the grid
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Opposite returns the opposite direction
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// Step returns the offset of one move in this direction.
func (d Direction) Step() Position {
	switch d {
	case North:
		return Position{Row: -1}
	case East:
		return Position{Col: 1}
	case South:
		return Position{Row: 1}
	case West:
		return Position{Col: -1}
	default:
		return Position{}
	}
}

// AllDirections returns all four cardinal directions
func AllDirections() []Direction {
	return []Direction{North, East, South, West}
}

// DirectionBetween returns the direction of a single step from one tile to
// an adjacent one. Non-adjacent pairs fall back to the dominant axis.
func DirectionBetween(from, to Position) Direction {
	switch {
	case to.Col > from.Col:
		return East
	case to.Col < from.Col:
		return West
	case to.Row > from.Row:
		return South
	default:
		return North
	}
}
