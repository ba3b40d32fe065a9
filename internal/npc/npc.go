package npc

import (
	"fmt"
	"math"
	"sync"

	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
)

// Callback is called with the NPC that triggered it.
type Callback func(n *NPC)

// NPC represents a non-player character standing in the dungeon.
//
// X and Y are the pixel center of the NPC's base, not of its sprite. Large
// NPCs like the robot priest draw a sprite much taller than the base; only
// the base blocks movement and counts for adjacency.
type NPC struct {
	id           string
	Name         string
	X, Y         float64
	Facing       dungeon.Direction
	Sprite       string // renderer asset key
	SpriteWidth  int    // pixels
	SpriteHeight int
	BaseWidth    int // pixels, a multiple of the tile size
	BaseHeight   int

	Conversation ConversationEngine // nil means the NPC has nothing to say

	roomID            int
	interactions      int
	onInteract        []Callback
	onConversationEnd []Callback
	mu                sync.RWMutex
}

// NewNPC creates a one-tile NPC centered on the given tile.
func NewNPC(id, name string, tile dungeon.Position) *NPC {
	x, y := tile.Center()
	return &NPC{
		id:           id,
		Name:         name,
		X:            x,
		Y:            y,
		Facing:       dungeon.South,
		Sprite:       id,
		SpriteWidth:  dungeon.TileSize,
		SpriteHeight: dungeon.TileSize,
		BaseWidth:    dungeon.TileSize,
		BaseHeight:   dungeon.TileSize,
		roomID:       -1,
	}
}

// PlaceAt positions the NPC so the top-left tile of its base is the given
// tile.
func (n *NPC) PlaceAt(tile dungeon.Position) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.X = float64(tile.Col*dungeon.TileSize) + float64(n.BaseWidth)/2
	n.Y = float64(tile.Row*dungeon.TileSize) + float64(n.BaseHeight)/2
}

// ID returns the NPC's unique id
func (n *NPC) ID() string {
	return n.id
}

// Position returns the pixel center of the base
func (n *NPC) Position() (x, y float64) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.X, n.Y
}

// TileRow returns the top row of the base
func (n *NPC) TileRow() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return int(math.Floor((n.Y - float64(n.BaseHeight)/2) / dungeon.TileSize))
}

// TileCol returns the leftmost column of the base
func (n *NPC) TileCol() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return int(math.Floor((n.X - float64(n.BaseWidth)/2) / dungeon.TileSize))
}

// BaseTileWidth returns the base width in tiles, at least one
func (n *NPC) BaseTileWidth() int {
	return max(1, n.BaseWidth/dungeon.TileSize)
}

// BaseTileHeight returns the base height in tiles, at least one
func (n *NPC) BaseTileHeight() int {
	return max(1, n.BaseHeight/dungeon.TileSize)
}

// Tiles returns every tile covered by the base, row by row.
func (n *NPC) Tiles() []dungeon.Position {
	row, col := n.TileRow(), n.TileCol()
	w, h := n.BaseTileWidth(), n.BaseTileHeight()
	tiles := make([]dungeon.Position, 0, w*h)
	for r := row; r < row+h; r++ {
		for c := col; c < col+w; c++ {
			tiles = append(tiles, dungeon.Pos(r, c))
		}
	}
	return tiles
}

// OccupiesTile reports whether the base covers a tile
func (n *NPC) OccupiesTile(row, col int) bool {
	top, left := n.TileRow(), n.TileCol()
	return row >= top && row < top+n.BaseTileHeight() && col >= left && col < left+n.BaseTileWidth()
}

// SetRoom records the room the NPC was placed in
func (n *NPC) SetRoom(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.roomID = id
}

// RoomID returns the room the NPC was placed in, -1 before placement
func (n *NPC) RoomID() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.roomID
}

// OnInteract registers a callback run when the hero interacts with the NPC
func (n *NPC) OnInteract(cb Callback) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onInteract = append(n.onInteract, cb)
}

// OnConversationEnd registers a callback run when the NPC's conversation ends
func (n *NPC) OnConversationEnd(cb Callback) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onConversationEnd = append(n.onConversationEnd, cb)
}

// Interact counts an interaction and runs the interaction callbacks
func (n *NPC) Interact() {
	n.mu.Lock()
	n.interactions++
	callbacks := append([]Callback(nil), n.onInteract...)
	n.mu.Unlock()

	for _, cb := range callbacks {
		cb(n)
	}
}

// EndConversation runs the conversation-end callbacks
func (n *NPC) EndConversation() {
	n.mu.RLock()
	callbacks := append([]Callback(nil), n.onConversationEnd...)
	n.mu.RUnlock()

	for _, cb := range callbacks {
		cb(n)
	}
}

// Interactions returns how many times the hero interacted with the NPC
func (n *NPC) Interactions() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.interactions
}

func (n *NPC) String() string {
	return fmt.Sprintf("%s (%s) at %s", n.Name, n.id, dungeon.Pos(n.TileRow(), n.TileCol()))
}
