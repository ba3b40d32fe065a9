package dungeon

import "github.com/zyedidia/generic/mapset"

// DoorKey identifies one door of one placed room.
type DoorKey struct {
	Room      int
	Direction Direction
}

// flank replacement rules for sealed doors, per side
var (
	northFlankToWall = map[Tile]bool{TileConvexSE: true, TileConvexSW: true}
	southFlankToWall = map[Tile]bool{TileConvexNE: true, TileConvexNW: true}
	westFlankToWall  = map[Tile]bool{TileConvexSE: true, TileConvexNE: true}
	eastFlankToWall  = map[Tile]bool{TileConvexSW: true, TileConvexNW: true}
)

// sealDoors rewrites every door that was never connected into wall, fixing
// up the tiles on either side so walls stay continuous and every north
// wall keeps a base below it.
func sealDoors(c *Canvas, rooms []Room, connected mapset.Set[DoorKey]) int {
	sealed := 0
	for _, room := range rooms {
		for _, dir := range room.Template.Doors() {
			if connected.Has(DoorKey{Room: room.ID, Direction: dir}) {
				continue
			}
			local, _ := room.Template.DoorPosition(dir)
			sealDoor(c, room.Origin.Add(local), dir)
			sealed++
		}
	}
	return sealed
}

func sealDoor(c *Canvas, door Position, dir Direction) {
	row, col := door.Row, door.Col

	switch dir {
	case North, South:
		wall := TileNorthWall
		flankToWall := northFlankToWall
		westCorner, eastCorner := TileNWCorner, TileNECorner
		if dir == South {
			wall = TileSouthWall
			flankToWall = southFlankToWall
			westCorner, eastCorner = TileSWCorner, TileSECorner
		}

		for offset := 0; offset < 2; offset++ {
			if c.At(row, col+offset).IsDoor() {
				c.Set(row, col+offset, wall)
			}
			if dir == North && c.At(row+1, col+offset) == TileFloor {
				c.Set(row+1, col+offset, TileNorthWallBase)
			}
		}

		sealFlank := func(fc int, perpendicular, corner Tile) {
			switch tile := c.At(row, fc); {
			case flankToWall[tile]:
				c.Set(row, fc, wall)
				if dir == North {
					// the convex corner's base now sits under a north wall
					if below := c.At(row+1, fc); below == TileConvexSEBase || below == TileConvexSWBase || below == TileFloor {
						c.Set(row+1, fc, TileNorthWallBase)
					}
				}
			case tile == perpendicular:
				c.Set(row, fc, corner)
			}
		}
		sealFlank(col-1, TileWestWall, westCorner)
		sealFlank(col+2, TileEastWall, eastCorner)

	case West, East:
		wall := TileWestWall
		flankToWall := westFlankToWall
		northCorner, southCorner := TileNWCorner, TileSWCorner
		if dir == East {
			wall = TileEastWall
			flankToWall = eastFlankToWall
			northCorner, southCorner = TileNECorner, TileSECorner
		}

		for offset := 0; offset < 2; offset++ {
			if c.At(row+offset, col).IsDoor() {
				c.Set(row+offset, col, wall)
			}
		}

		switch tile := c.At(row-1, col); {
		case flankToWall[tile]:
			c.Set(row-1, col, wall)
		case tile == TileNorthWall:
			c.Set(row-1, col, northCorner)
		}

		switch tile := c.At(row+2, col); {
		case flankToWall[tile]:
			c.Set(row+2, col, wall)
		case tile == TileSouthWall:
			c.Set(row+2, col, southCorner)
		}
	}
}
