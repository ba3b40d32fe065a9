// Package sim runs the single-threaded tick loop that owns a dungeon and
// the agents in it.
package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lawnchairsociety/dungeonwalk/internal/agent"
	"github.com/lawnchairsociety/dungeonwalk/internal/dungeon"
	"github.com/lawnchairsociety/dungeonwalk/internal/event"
	"github.com/lawnchairsociety/dungeonwalk/internal/logger"
	"github.com/lawnchairsociety/dungeonwalk/internal/npc"
)

// ErrTickLimit is returned by Run when the hero has not reached the goal
// within the tick limit.
var ErrTickLimit = errors.New("sim: tick limit reached")

// Outcome describes how a run ended.
type Outcome string

const (
	OutcomeRunning   Outcome = "running"
	OutcomeReached   Outcome = "reached"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeFailed    Outcome = "failed"
	OutcomeAbandoned Outcome = "abandoned"
)

// World owns one dungeon, its hero and its NPCs. Only Tick mutates it.
type World struct {
	ID     uuid.UUID
	Level  string
	Seed   int64
	Result *dungeon.Result

	dungeon *dungeon.Dungeon
	hero    *agent.Hero
	bus     *event.Bus
	flags   *event.Flags
	log     *logger.Scoped

	talk *conversation

	ticks    int
	elapsed  float64
	heroRoom int
	heroTile dungeon.Position
	started  bool
	outcome  Outcome
}

// conversation is the page currently on screen.
type conversation struct {
	npc       *npc.NPC
	page      npc.Page
	remaining float64
}

// NewWorld wires a generated dungeon and a hero into a world. The dungeon
// gets the world's event bus.
func NewWorld(level string, seed int64, result *dungeon.Result, d *dungeon.Dungeon, hero *agent.Hero) *World {
	bus := d.Bus()
	if bus == nil {
		bus = event.NewBus()
		d.SetEventBus(bus)
	}
	id := uuid.New()
	return &World{
		ID:      id,
		Level:   level,
		Seed:    seed,
		Result:  result,
		dungeon: d,
		hero:    hero,
		bus:     bus,
		flags:   event.NewFlags(bus),
		log:     logger.With("run_id", id.String(), "level", level),
		outcome: OutcomeRunning,
	}
}

// Dungeon returns the world's dungeon.
func (w *World) Dungeon() *dungeon.Dungeon { return w.dungeon }

// Hero returns the world's hero.
func (w *World) Hero() *agent.Hero { return w.hero }

// Bus returns the world's event bus.
func (w *World) Bus() *event.Bus { return w.bus }

// Flags returns the narrative flags.
func (w *World) Flags() *event.Flags { return w.flags }

// Log returns the run-scoped logger.
func (w *World) Log() *logger.Scoped { return w.log }

// Ticks returns the number of ticks run.
func (w *World) Ticks() int { return w.ticks }

// Elapsed returns the simulated time in seconds.
func (w *World) Elapsed() float64 { return w.elapsed }

// Outcome returns how the run stands.
func (w *World) Outcome() Outcome { return w.outcome }

// Done reports whether the run is over.
func (w *World) Done() bool { return w.outcome != OutcomeRunning }

// AddNPC places an NPC in the dungeon.
func (w *World) AddNPC(n *npc.NPC) {
	w.dungeon.AddNPC(n)
}

// NPC returns a placed NPC by id.
func (w *World) NPC(id string) (*npc.NPC, bool) {
	o, ok := w.dungeon.NPC(id)
	if !ok {
		return nil, false
	}
	n, ok := o.(*npc.NPC)
	return n, ok
}

// Conversation returns the page on screen, if any.
func (w *World) Conversation() (npc.Page, bool) {
	if w.talk == nil {
		return npc.Page{}, false
	}
	return w.talk.page, true
}

// Start emits LevelStart. Tick calls it on the first tick if needed.
func (w *World) Start() {
	if w.started {
		return
	}
	w.started = true
	w.heroTile = w.hero.Tile()
	w.heroRoom = w.dungeon.RoomIDForTile(w.heroTile.Row, w.heroTile.Col)
	w.log.Info("Level started",
		"seed", w.Seed,
		"rooms", w.dungeon.RoomCount(),
		"map_rows", w.dungeon.Map().Rows(),
		"map_cols", w.dungeon.Map().Cols())
	w.bus.Emit(event.Event{Kind: event.LevelStart, Room: w.heroRoom})
	w.bus.Emit(event.Event{Kind: event.HeroEntersRoom, Room: w.heroRoom})
	w.checkGoal(w.heroTile, w.heroRoom)
}

// Tick advances the world by dt seconds.
func (w *World) Tick(dt float64) error {
	if w.Done() {
		return nil
	}
	w.Start()
	if w.Done() {
		return nil
	}
	w.ticks++
	w.elapsed += dt

	if w.talk != nil {
		w.advanceConversation(dt)
		return nil
	}

	interact, err := w.hero.Update(dt, w.dungeon)
	if err != nil {
		w.outcome = OutcomeFailed
		w.log.Error("Hero update failed", "tick", w.ticks, "error", err)
		return fmt.Errorf("tick %d: %w", w.ticks, err)
	}
	if interact != nil {
		w.startInteraction(interact.NPC)
	}

	w.trackHero()
	return nil
}

func (w *World) trackHero() {
	tile := w.hero.Tile()
	if tile == w.heroTile {
		return
	}
	w.heroTile = tile

	room := w.dungeon.RoomIDForTile(tile.Row, tile.Col)
	if room != w.heroRoom {
		w.bus.Emit(event.Event{Kind: event.HeroExitsRoom, Room: w.heroRoom})
		w.bus.Emit(event.Event{Kind: event.HeroEntersRoom, Room: room})
		w.heroRoom = room
	}
	w.bus.Emit(event.Event{Kind: event.HeroReachesTile, Room: room, Row: tile.Row, Col: tile.Col})
	w.checkGoal(tile, room)
}

func (w *World) checkGoal(tile dungeon.Position, room int) {
	if goal, ok := w.dungeon.GoalTile(); ok && goal == tile {
		w.outcome = OutcomeReached
		w.log.Always("Goal reached", "tick", w.ticks, "elapsed", w.elapsed)
		w.bus.Emit(event.Event{Kind: event.LevelEnd, Room: room, Row: tile.Row, Col: tile.Col})
	}
}

func (w *World) startInteraction(n *npc.NPC) {
	w.log.Info("Interaction", "npc_id", n.ID(), "tick", w.ticks)
	w.bus.Emit(event.Event{Kind: event.NPCInteraction, ID: n.ID(), Room: n.RoomID()})
	n.Interact()

	if n.Conversation == nil {
		w.finishConversation(n)
		return
	}
	page := n.Conversation.Start()
	w.talk = &conversation{npc: n, page: page, remaining: page.DisplayDuration().Seconds()}
	w.bus.Emit(event.Event{Kind: event.ConversationStart, ID: n.ID(), Room: n.RoomID()})
	w.log.Debug("Conversation page", "speaker", page.Speaker, "text", page.Text)
}

func (w *World) advanceConversation(dt float64) {
	w.talk.remaining -= dt
	if w.talk.remaining > 1e-9 {
		return
	}

	n := w.talk.npc
	if next, ok := n.Conversation.Respond(w.talk.page); ok {
		w.talk.page = next
		w.talk.remaining = next.DisplayDuration().Seconds()
		w.log.Debug("Conversation page", "speaker", next.Speaker, "text", next.Text)
		return
	}
	w.talk = nil
	w.finishConversation(n)
}

func (w *World) finishConversation(n *npc.NPC) {
	w.hero.EndConversation()
	w.bus.Emit(event.Event{Kind: event.ConversationEnd, ID: n.ID(), Room: n.RoomID()})
	n.EndConversation()
}

// Run ticks until the hero reaches the goal, a tick fails or maxTicks
// ticks have run.
func (w *World) Run(dt float64, maxTicks int) error {
	for !w.Done() {
		if w.ticks >= maxTicks {
			w.outcome = OutcomeTimeout
			w.log.Warning("Tick limit reached", "ticks", w.ticks)
			return fmt.Errorf("%w after %d ticks", ErrTickLimit, w.ticks)
		}
		if err := w.Tick(dt); err != nil {
			return err
		}
	}
	return nil
}

// Abandon ends a run that is stopped from outside, such as on shutdown.
func (w *World) Abandon() {
	if !w.Done() {
		w.outcome = OutcomeAbandoned
	}
}

// ElapsedDuration returns the simulated time as a duration.
func (w *World) ElapsedDuration() time.Duration {
	return time.Duration(w.elapsed * float64(time.Second))
}
