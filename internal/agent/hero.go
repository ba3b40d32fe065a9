// Package agent turns strategy commands into continuous motion.
package agent

import (
	"fmt"
	"math"

	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
	"github.com/lawnchairsociety/dungeonwalk/internal/strategy"
)

const (
	// DefaultSpeed is the hero's walking speed in pixels per second.
	DefaultSpeed = 150.0

	// FrameDistance is how far the hero walks between walk frame flips.
	FrameDistance = dungeon.TileSize / 2
)

// State represents what the hero is currently doing
type State int

const (
	StateIdle State = iota
	StateWalking
	StateTalking
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	case StateTalking:
		return "talking"
	default:
		return "unknown"
	}
}

// Hero is the agent that walks the dungeon. It owns its strategy.
type Hero struct {
	X, Y   float64 // pixel position
	Speed  float64 // pixels per second
	Facing dungeon.Direction

	state            State
	targetX, targetY float64
	frame            int     // 0 resting, 1 stepping
	walked           float64 // distance since the last frame flip
	strategy         strategy.Strategy
	talkingTo        string
}

// NewHero creates an idle hero at a pixel position.
func NewHero(x, y float64, s strategy.Strategy) *Hero {
	return &Hero{
		X:        x,
		Y:        y,
		Speed:    DefaultSpeed,
		Facing:   dungeon.South,
		strategy: s,
	}
}

// State returns what the hero is doing.
func (h *Hero) State() State { return h.state }

// Frame returns the walk cycle frame. It is 0 whenever the hero is not
// walking.
func (h *Hero) Frame() int {
	if h.state != StateWalking {
		return 0
	}
	return h.frame
}

// Tile returns the tile under the hero.
func (h *Hero) Tile() dungeon.Position { return dungeon.TileAt(h.X, h.Y) }

// Target returns the pixel the hero is walking to.
func (h *Hero) Target() (x, y float64, ok bool) {
	return h.targetX, h.targetY, h.state == StateWalking
}

// TalkingTo returns the id of the NPC the hero is in conversation with.
func (h *Hero) TalkingTo() string { return h.talkingTo }

// Strategy returns the hero's strategy.
func (h *Hero) Strategy() strategy.Strategy { return h.strategy }

// SetStrategy swaps the hero's strategy.
func (h *Hero) SetStrategy(s strategy.Strategy) { h.strategy = s }

// ResetStrategy clears the strategy's navigation memory. Call it after
// changing the dungeon's topology.
func (h *Hero) ResetStrategy() {
	if h.strategy != nil {
		h.strategy.Reset()
	}
}

// Update advances the hero by dt seconds. When the hero is idle the
// strategy is asked for the next command. A returned Interact is the
// interaction that started this tick; the hero is talking until
// EndConversation is called.
func (h *Hero) Update(dt float64, d *dungeon.Dungeon) (*strategy.Interact, error) {
	switch h.state {
	case StateTalking:
		return nil, nil
	case StateWalking:
		h.advance(dt)
		return nil, nil
	}

	if h.strategy == nil {
		return nil, nil
	}
	cmd, err := h.strategy.Decide(h.X, h.Y, d)
	if err != nil {
		return nil, err
	}

	switch c := cmd.(type) {
	case strategy.Move:
		h.targetX, h.targetY = c.X, c.Y
		h.Facing = c.Direction
		h.state = StateWalking
		h.advance(dt)
		return nil, nil
	case strategy.Interact:
		h.faceTowards(c.NPC.Tiles())
		h.state = StateTalking
		h.talkingTo = c.NPC.ID()
		h.rest()
		return &c, nil
	case strategy.Idle:
		h.rest()
		return nil, nil
	default:
		return nil, fmt.Errorf("agent: unknown command %T", cmd)
	}
}

// EndConversation returns a talking hero to idle.
func (h *Hero) EndConversation() {
	if h.state == StateTalking {
		h.state = StateIdle
		h.talkingTo = ""
	}
}

func (h *Hero) advance(dt float64) {
	dx := h.targetX - h.X
	dy := h.targetY - h.Y
	dist2 := dx*dx + dy*dy
	move := h.Speed * dt

	h.walked += math.Min(move, math.Sqrt(dist2))
	if h.walked >= FrameDistance {
		h.frame = 1 - h.frame
		h.walked = 0
	}

	if dist2 <= move*move {
		h.X, h.Y = h.targetX, h.targetY
		h.state = StateIdle
		h.rest()
		return
	}

	dist := math.Sqrt(dist2)
	h.X += dx / dist * move
	h.Y += dy / dist * move
}

func (h *Hero) rest() {
	h.frame = 0
	h.walked = 0
}

func (h *Hero) faceTowards(tiles []dungeon.Position) {
	here := h.Tile()
	for _, t := range tiles {
		if here.Adjacent(t) {
			h.Facing = dungeon.DirectionBetween(here, t)
			return
		}
	}
}

func (h *Hero) String() string {
	return fmt.Sprintf("hero at (%.1f,%.1f) %s facing %s", h.X, h.Y, h.state, h.Facing)
}
