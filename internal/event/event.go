package event

import (
	"fmt"
	"sync"

	"github.com/lawnchairsociety/dungeonwalk/internal/logger"
)

// Kind identifies what happened.
type Kind int

const (
	LevelStart Kind = iota
	LevelEnd

	HeroEntersRoom
	HeroExitsRoom
	HeroReachesTile

	NPCInteraction
	ConversationStart
	ConversationEnd

	NPCAdded
	NPCRemoved
	GoalPlaced
	GoalRemoved
	TileChanged

	FlagSet
	FlagCleared
)

var kindNames = map[Kind]string{
	LevelStart:        "level_start",
	LevelEnd:          "level_end",
	HeroEntersRoom:    "hero_enters_room",
	HeroExitsRoom:     "hero_exits_room",
	HeroReachesTile:   "hero_reaches_tile",
	NPCInteraction:    "npc_interaction",
	ConversationStart: "conversation_start",
	ConversationEnd:   "conversation_end",
	NPCAdded:          "npc_added",
	NPCRemoved:        "npc_removed",
	GoalPlaced:        "goal_placed",
	GoalRemoved:       "goal_removed",
	TileChanged:       "tile_changed",
	FlagSet:           "flag_set",
	FlagCleared:       "flag_cleared",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event carries the data for one emitted event. Which fields are set
// depends on the kind:
//
//	HeroEntersRoom, HeroExitsRoom, GoalPlaced   Room
//	HeroReachesTile                             Row, Col
//	NPC*, Conversation*                         ID (npc id)
//	TileChanged                                 Row, Col, Value (tile code)
//	FlagSet, FlagCleared                        ID (flag name)
//	LevelStart, LevelEnd                        ID (level name)
type Event struct {
	Kind  Kind
	Room  int
	Row   int
	Col   int
	ID    string
	Value int
}

func (e Event) String() string {
	return fmt.Sprintf("%s{room=%d row=%d col=%d id=%q value=%d}", e.Kind, e.Room, e.Row, e.Col, e.ID, e.Value)
}

// Handler receives emitted events.
type Handler func(Event)

// Subscription identifies a registered handler so it can be removed.
type Subscription uint64

type entry struct {
	id      Subscription
	handler Handler
}

// Bus dispatches events to subscribed handlers in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]entry
	nextID   Subscription
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]entry)}
}

// Subscribe registers a handler for one kind of event.
func (b *Bus) Subscribe(kind Kind, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.handlers[kind] = append(b.handlers[kind], entry{id: b.nextID, handler: h})
	return b.nextID
}

// Unsubscribe removes a handler. It reports whether the subscription existed.
func (b *Bus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for kind, entries := range b.handlers {
		for i, e := range entries {
			if e.id == sub {
				b.handlers[kind] = append(entries[:i:i], entries[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Emit calls every handler subscribed to the event's kind. A panicking
// handler is logged and does not stop the others.
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	entries := append([]entry(nil), b.handlers[e.Kind]...)
	b.mu.RUnlock()

	logger.Debug("Event", "kind", e.Kind.String(), "room", e.Room, "row", e.Row, "col", e.Col, "id", e.ID)

	for _, en := range entries {
		b.call(e, en)
	}
}

func (b *Bus) call(e Event, en entry) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Event handler failed", "kind", e.Kind.String(), "subscription", en.id, "panic", r)
		}
	}()
	en.handler(e)
}

// Clear removes every handler.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[Kind][]entry)
}

// HandlerCount returns the number of handlers for one kind.
func (b *Bus) HandlerCount(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[kind])
}

// TotalHandlers returns the number of handlers across all kinds.
func (b *Bus) TotalHandlers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, entries := range b.handlers {
		n += len(entries)
	}
	return n
}
