package level

import (
	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
)

// minDoorDistance keeps NPCs out of doorways.
const minDoorDistance = 3

// FindNPCSpot returns the top-left tile for a width×height NPC base in a
// room. Every base tile must be floor at least minDoorDistance steps from
// each door, and the ring of tiles around the base must be walkable so
// the NPC blocks no route and can be approached. Among valid spots the one
// furthest from the doors wins, ties going to the first in row-major
// order. Tiles in avoid are never covered.
func FindNPCSpot(d *dungeon.Dungeon, roomID, width, height int, avoid ...dungeon.Position) (dungeon.Position, bool) {
	room, err := d.Room(roomID)
	if err != nil {
		return dungeon.Position{}, false
	}
	doors, err := d.FindDoorsInRoom(roomID)
	if err != nil {
		return dungeon.Position{}, false
	}

	best, bestScore, found := dungeon.Position{}, -1, false
	for r := 0; r < room.Template.Height(); r++ {
		for c := 0; c < room.Template.Width(); c++ {
			top := room.Origin.Add(dungeon.Pos(r, c))
			score, ok := spotScore(d, room, doors, top, width, height, avoid)
			if ok && score > bestScore {
				best, bestScore, found = top, score, true
			}
		}
	}
	return best, found
}

// spotScore returns the smallest door distance of a candidate base.
func spotScore(d *dungeon.Dungeon, room dungeon.Room, doors []dungeon.Door, top dungeon.Position, width, height int, avoid []dungeon.Position) (int, bool) {
	m := d.Map()
	score := 1 << 30

	for dr := -1; dr <= height; dr++ {
		for dc := -1; dc <= width; dc++ {
			p := top.Add(dungeon.Pos(dr, dc))
			inBase := dr >= 0 && dr < height && dc >= 0 && dc < width
			if !inBase {
				if !d.IsTileWalkable(p.Row, p.Col) {
					return 0, false
				}
				continue
			}

			if !room.Contains(p) || m.At(p.Row, p.Col) != dungeon.TileFloor {
				return 0, false
			}
			if _, occupied := d.NPCAtTile(p.Row, p.Col); occupied {
				return 0, false
			}
			for _, a := range avoid {
				if a == p {
					return 0, false
				}
			}
			for _, door := range doors {
				dist := door.Tile.Manhattan(p)
				if dist < minDoorDistance {
					return 0, false
				}
				score = min(score, dist)
			}
		}
	}
	return score, true
}
