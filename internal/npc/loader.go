package npc

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
	"github.com/lawnchairsociety/dungeonwalk/internal/logger"
	"gopkg.in/yaml.v3"
)

//go:embed npcs.yaml
var defaultRosterYAML []byte

// ErrUnknownNPC is returned when a roster has no definition for an id.
var ErrUnknownNPC = errors.New("npc: unknown npc")

// PageYAML represents a conversation page in YAML format
type PageYAML struct {
	Speaker  string        `yaml:"speaker"`
	Portrait string        `yaml:"portrait"`
	Text     string        `yaml:"text"`
	Duration time.Duration `yaml:"duration"` // e.g. "4s"
}

// NPCDefinition represents an NPC definition from the YAML file
type NPCDefinition struct {
	Name         string     `yaml:"name"`
	Sprite       string     `yaml:"sprite"`        // Renderer asset key, defaults to the id
	Facing       string     `yaml:"facing"`        // north, east, south or west
	SpriteWidth  int        `yaml:"sprite_width"`  // Visual size in pixels
	SpriteHeight int        `yaml:"sprite_height"` // Visual size in pixels
	BaseWidth    int        `yaml:"base_width"`    // Footprint in pixels, multiple of 64
	BaseHeight   int        `yaml:"base_height"`   // Footprint in pixels, multiple of 64
	Conversation []PageYAML `yaml:"conversation"`  // Scripted pages, in order
}

// Roster represents the structure of an NPC roster file
type Roster struct {
	NPCs map[string]NPCDefinition `yaml:"npcs"`
}

// DefaultRoster returns the built-in NPC roster
func DefaultRoster() (*Roster, error) {
	return ParseRoster(defaultRosterYAML)
}

// LoadRoster loads NPC definitions from a YAML file
func LoadRoster(filename string) (*Roster, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read NPC roster: %w", err)
	}
	return ParseRoster(data)
}

// ParseRoster parses NPC definitions, filling in defaults for missing sizes
func ParseRoster(data []byte) (*Roster, error) {
	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse NPC roster YAML: %w", err)
	}

	for id, def := range roster.NPCs {
		if def.BaseWidth == 0 || def.BaseHeight == 0 {
			logger.Warning("NPC base size defaulted",
				"npc_id", id,
				"base_width", def.BaseWidth,
				"base_height", def.BaseHeight)
			if def.BaseWidth == 0 {
				def.BaseWidth = dungeon.TileSize
			}
			if def.BaseHeight == 0 {
				def.BaseHeight = dungeon.TileSize
			}
		}
		if def.BaseWidth%dungeon.TileSize != 0 || def.BaseHeight%dungeon.TileSize != 0 {
			return nil, fmt.Errorf("npc %q: base %dx%d is not tile aligned", id, def.BaseWidth, def.BaseHeight)
		}
		if def.SpriteWidth == 0 {
			def.SpriteWidth = def.BaseWidth
		}
		if def.SpriteHeight == 0 {
			def.SpriteHeight = def.BaseHeight
		}
		if _, err := parseFacing(def.Facing); err != nil {
			return nil, fmt.Errorf("npc %q: %w", id, err)
		}
		roster.NPCs[id] = def
	}

	return &roster, nil
}

// IDs returns the defined NPC ids in sorted order
func (r *Roster) IDs() []string {
	ids := make([]string, 0, len(r.NPCs))
	for id := range r.NPCs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Create builds the NPC with the given id so that the top-left tile of its
// base is at tile.
func (r *Roster) Create(id string, tile dungeon.Position) (*NPC, error) {
	def, ok := r.NPCs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNPC, id)
	}
	return CreateNPCFromDefinition(id, def, tile)
}

// CreateNPCFromDefinition creates an NPC from an NPCDefinition
func CreateNPCFromDefinition(id string, def NPCDefinition, tile dungeon.Position) (*NPC, error) {
	n := NewNPC(id, def.Name, tile)
	if def.Sprite != "" {
		n.Sprite = def.Sprite
	}
	n.SpriteWidth = def.SpriteWidth
	n.SpriteHeight = def.SpriteHeight
	n.BaseWidth = def.BaseWidth
	n.BaseHeight = def.BaseHeight

	facing, err := parseFacing(def.Facing)
	if err != nil {
		return nil, fmt.Errorf("npc %q: %w", id, err)
	}
	n.Facing = facing

	if len(def.Conversation) > 0 {
		pages := make([]Page, len(def.Conversation))
		for i, p := range def.Conversation {
			pages[i] = Page{
				Text:     strings.TrimSpace(p.Text),
				Speaker:  p.Speaker,
				Portrait: p.Portrait,
				Duration: p.Duration,
			}
		}
		conv, err := NewScripted(pages...)
		if err != nil {
			return nil, err
		}
		n.Conversation = conv
	}

	n.PlaceAt(tile)
	return n, nil
}

func parseFacing(s string) (dungeon.Direction, error) {
	switch strings.ToLower(s) {
	case "", "south":
		return dungeon.South, nil
	case "north":
		return dungeon.North, nil
	case "east":
		return dungeon.East, nil
	case "west":
		return dungeon.West, nil
	}
	return 0, fmt.Errorf("unknown facing %q", s)
}
