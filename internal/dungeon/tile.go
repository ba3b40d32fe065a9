package dungeon

// TileSize is the edge length of one tile in pixels.
const TileSize = 64

// Tile represents the type of a single cell in the dungeon grid
type Tile uint8

const (
	TileNothing Tile = 0

	// Walkable floor variants. The base tiles sit directly below a tile
	// that needs one (see RequiredBase).
	TileFloor         Tile = 1
	TileNorthWallBase Tile = 2
	TilePillarBase    Tile = 3
	TileConvexSEBase  Tile = 4
	TileConvexSWBase  Tile = 5

	// Walls are named for the side of the room they are on.
	TileNorthWall Tile = 10
	TileSouthWall Tile = 11
	TileWestWall  Tile = 12
	TileEastWall  Tile = 13

	TileNWCorner Tile = 20
	TileNECorner Tile = 21
	TileSWCorner Tile = 22
	TileSECorner Tile = 23

	// Convex corners point toward the dungeon corner they are named for.
	TileConvexNW Tile = 30
	TileConvexNE Tile = 31
	TileConvexSW Tile = 32
	TileConvexSE Tile = 33

	TilePillar Tile = 40

	// Doors always come in pairs. The first half (west or north) is the
	// primary tile used to identify the door.
	TileNorthDoorWest Tile = 50
	TileNorthDoorEast Tile = 51
	TileSouthDoorWest Tile = 52
	TileSouthDoorEast Tile = 53
	TileWestDoorNorth Tile = 54
	TileWestDoorSouth Tile = 55
	TileEastDoorNorth Tile = 56
	TileEastDoorSouth Tile = 57

	TileGoal Tile = 60
)

type tileInfo struct {
	name     string
	char     rune
	sprite   string
	walkable bool
}

var tileTable = map[Tile]tileInfo{
	TileNothing:       {"nothing", ' ', "", false},
	TileFloor:         {"floor", '.', "floor", true},
	TileNorthWallBase: {"north_wall_base", ',', "north_wall_base", true},
	TilePillarBase:    {"pillar_base", ';', "pillar_base", true},
	TileConvexSEBase:  {"convex_se_base", '>', "convex_se_base", true},
	TileConvexSWBase:  {"convex_sw_base", '<', "convex_sw_base", true},
	TileNorthWall:     {"north_wall", '-', "wall_north", false},
	TileSouthWall:     {"south_wall", '_', "wall_south", false},
	TileWestWall:      {"west_wall", '[', "wall_west", false},
	TileEastWall:      {"east_wall", ']', "wall_east", false},
	TileNWCorner:      {"nw_corner", '1', "wall_nw_corner", false},
	TileNECorner:      {"ne_corner", '2', "wall_ne_corner", false},
	TileSWCorner:      {"sw_corner", '3', "wall_sw_corner", false},
	TileSECorner:      {"se_corner", '4', "wall_se_corner", false},
	TileConvexNW:      {"convex_nw", '^', "convex_nw", false},
	TileConvexNE:      {"convex_ne", '!', "convex_ne", false},
	TileConvexSW:      {"convex_sw", '~', "convex_sw", false},
	TileConvexSE:      {"convex_se", '`', "convex_se", false},
	TilePillar:        {"pillar", 'P', "pillar", false},
	TileNorthDoorWest: {"north_door_west", 'n', "floor", true},
	TileNorthDoorEast: {"north_door_east", 'N', "floor", true},
	TileSouthDoorWest: {"south_door_west", 's', "floor", true},
	TileSouthDoorEast: {"south_door_east", 'S', "floor", true},
	// Side door north halves sit in the shadow row and render as convex bases.
	TileWestDoorNorth: {"west_door_north", 'w', "convex_se_base", true},
	TileWestDoorSouth: {"west_door_south", 'W', "floor", true},
	TileEastDoorNorth: {"east_door_north", 'e', "convex_sw_base", true},
	TileEastDoorSouth: {"east_door_south", 'E', "floor", true},
	TileGoal:          {"goal", '*', "goal", true},
}

var charToTile = func() map[rune]Tile {
	m := make(map[rune]Tile, len(tileTable))
	for t, info := range tileTable {
		m[info.char] = t
	}
	return m
}()

// TileForRune returns the tile for a character of the ASCII room dialect.
func TileForRune(r rune) (Tile, bool) {
	t, ok := charToTile[r]
	return t, ok
}

// String returns the string representation of a Tile
func (t Tile) String() string {
	if info, ok := tileTable[t]; ok {
		return info.name
	}
	return "unknown"
}

// Rune returns the ASCII dialect character for the tile, '?' if it has none.
func (t Tile) Rune() rune {
	if info, ok := tileTable[t]; ok {
		return info.char
	}
	return '?'
}

// SpriteKey returns the renderer asset key for the tile. Empty means the
// tile is not drawn.
func (t Tile) SpriteKey() string {
	return tileTable[t].sprite
}

// Walkable reports whether agents may stand on the tile.
func (t Tile) Walkable() bool {
	return tileTable[t].walkable
}

// IsDoor reports whether the tile is one half of a door.
func (t Tile) IsDoor() bool {
	return t >= TileNorthDoorWest && t <= TileEastDoorSouth
}

// IsPrimaryDoor reports whether the tile is the half used to identify a door.
func (t Tile) IsPrimaryDoor() bool {
	switch t {
	case TileNorthDoorWest, TileSouthDoorWest, TileWestDoorNorth, TileEastDoorNorth:
		return true
	}
	return false
}

// DoorDirection returns the side of the room a door tile sits on.
func (t Tile) DoorDirection() (Direction, bool) {
	switch t {
	case TileNorthDoorWest, TileNorthDoorEast:
		return North, true
	case TileSouthDoorWest, TileSouthDoorEast:
		return South, true
	case TileWestDoorNorth, TileWestDoorSouth:
		return West, true
	case TileEastDoorNorth, TileEastDoorSouth:
		return East, true
	}
	return 0, false
}

// RequiredBase returns the tiles allowed directly below t. A nil result
// means t has no base requirement.
func (t Tile) RequiredBase() []Tile {
	switch t {
	case TileNorthWall:
		return []Tile{TileNorthWallBase}
	case TilePillar:
		return []Tile{TilePillarBase}
	case TileConvexSE:
		return []Tile{TileConvexSEBase, TileWestDoorNorth}
	case TileConvexSW:
		return []Tile{TileConvexSWBase, TileEastDoorNorth}
	}
	return nil
}

// AllTiles returns every defined tile type in ascending order.
func AllTiles() []Tile {
	tiles := make([]Tile, 0, len(tileTable))
	for t := Tile(0); ; t++ {
		if _, ok := tileTable[t]; ok {
			tiles = append(tiles, t)
		}
		if t == 255 {
			break
		}
	}
	return tiles
}
