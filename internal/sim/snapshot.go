package sim

import (
	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
	"github.com/lawnchairsociety/dungeonwalk/internal/npc"
)

// Snapshot is a read-only copy of what a renderer needs for one frame.
type Snapshot struct {
	RunID   string  `json:"run_id"`
	Level   string  `json:"level"`
	Tick    int     `json:"tick"`
	Elapsed float64 `json:"elapsed"`
	Outcome Outcome `json:"outcome"`

	Hero         HeroSnapshot          `json:"hero"`
	NPCs         []NPCSnapshot         `json:"npcs"`
	Goal         *TileSnapshot         `json:"goal,omitempty"`
	Conversation *ConversationSnapshot `json:"conversation,omitempty"`
}

type HeroSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Facing string  `json:"facing"`
	State  string  `json:"state"`
	Frame  int     `json:"frame"`
	Room   int     `json:"room"`
}

type NPCSnapshot struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Sprite       string         `json:"sprite"`
	X            float64        `json:"x"`
	Y            float64        `json:"y"`
	Facing       string         `json:"facing"`
	SpriteWidth  int            `json:"sprite_width"`
	SpriteHeight int            `json:"sprite_height"`
	Tiles        []TileSnapshot `json:"tiles"`
}

type TileSnapshot struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type ConversationSnapshot struct {
	NPC      string `json:"npc"`
	Speaker  string `json:"speaker"`
	Portrait string `json:"portrait,omitempty"`
	Text     string `json:"text"`
}

// MapSnapshot is the static part of a level, sent once per spectator.
type MapSnapshot struct {
	RunID    string   `json:"run_id"`
	Level    string   `json:"level"`
	TileSize int      `json:"tile_size"`
	Rows     []string `json:"rows"`
}

// Snapshot copies the current state out of the world.
func (w *World) Snapshot() Snapshot {
	h := w.hero
	s := Snapshot{
		RunID:   w.ID.String(),
		Level:   w.Level,
		Tick:    w.ticks,
		Elapsed: w.elapsed,
		Outcome: w.outcome,
		Hero: HeroSnapshot{
			X:      h.X,
			Y:      h.Y,
			Facing: h.Facing.String(),
			State:  h.State().String(),
			Frame:  h.Frame(),
			Room:   w.dungeon.RoomID(h.X, h.Y),
		},
		NPCs: []NPCSnapshot{},
	}

	for _, o := range w.dungeon.NPCs() {
		n, ok := o.(*npc.NPC)
		if !ok {
			continue
		}
		x, y := n.Position()
		s.NPCs = append(s.NPCs, NPCSnapshot{
			ID:           n.ID(),
			Name:         n.Name,
			Sprite:       n.Sprite,
			X:            x,
			Y:            y,
			Facing:       n.Facing.String(),
			SpriteWidth:  n.SpriteWidth,
			SpriteHeight: n.SpriteHeight,
			Tiles:        tileSnapshots(n.Tiles()),
		})
	}

	if goal, ok := w.dungeon.GoalTile(); ok {
		s.Goal = &TileSnapshot{Row: goal.Row, Col: goal.Col}
	}
	if w.talk != nil {
		s.Conversation = &ConversationSnapshot{
			NPC:      w.talk.npc.ID(),
			Speaker:  w.talk.page.Speaker,
			Portrait: w.talk.page.Portrait,
			Text:     w.talk.page.Text,
		}
	}
	return s
}

// MapSnapshot copies the current tile grid out of the world.
func (w *World) MapSnapshot() MapSnapshot {
	return MapSnapshot{
		RunID:    w.ID.String(),
		Level:    w.Level,
		TileSize: dungeon.TileSize,
		Rows:     w.dungeon.Map().Lines(),
	}
}

func tileSnapshots(tiles []dungeon.Position) []TileSnapshot {
	out := make([]TileSnapshot, len(tiles))
	for i, t := range tiles {
		out[i] = TileSnapshot{Row: t.Row, Col: t.Col}
	}
	return out
}
