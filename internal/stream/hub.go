// Package stream serves a read-only websocket feed of a running world to
// spectators.
package stream

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lawnchairsociety/dungeonwalk/internal/event"
	"github.com/lawnchairsociety/dungeonwalk/internal/logger"
	"github.com/lawnchairsociety/dungeonwalk/internal/sim"
)

// MessageType tags every message sent to spectators.
type MessageType string

const (
	MessageMap      MessageType = "map"
	MessageSnapshot MessageType = "snapshot"
	MessageEvent    MessageType = "event"
)

// Message is the envelope written to the websocket.
type Message struct {
	Type MessageType `json:"type"`
	Data any         `json:"data"`
}

// EventMessage is the wire form of an event.Event.
type EventMessage struct {
	Kind  string `json:"kind"`
	Room  int    `json:"room"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	ID    string `json:"id,omitempty"`
	Value int    `json:"value"`
}

// Hub fans messages out to spectators. The last map message is kept and
// sent to every spectator as soon as it joins.
type Hub struct {
	mu         sync.RWMutex
	spectators map[*Spectator]struct{}
	welcome    []byte
	closed     bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{spectators: make(map[*Spectator]struct{})}
}

// PublishMap replaces the welcome map and sends it to everyone.
func (h *Hub) PublishMap(m sim.MapSnapshot) error {
	data, err := encode(MessageMap, m)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.welcome = data
	h.mu.Unlock()

	h.broadcast(data)
	return nil
}

// PublishSnapshot sends a world snapshot to everyone.
func (h *Hub) PublishSnapshot(s sim.Snapshot) error {
	data, err := encode(MessageSnapshot, s)
	if err != nil {
		return err
	}
	h.broadcast(data)
	return nil
}

// PublishEvent sends a world event to everyone.
func (h *Hub) PublishEvent(e event.Event) error {
	data, err := encode(MessageEvent, EventMessage{
		Kind:  e.Kind.String(),
		Room:  e.Room,
		Row:   e.Row,
		Col:   e.Col,
		ID:    e.ID,
		Value: e.Value,
	})
	if err != nil {
		return err
	}
	h.broadcast(data)
	return nil
}

// Follow forwards the given event kinds from bus to the hub. It returns
// the subscriptions so the caller can drop them.
func (h *Hub) Follow(bus *event.Bus, kinds ...event.Kind) []event.Subscription {
	subs := make([]event.Subscription, 0, len(kinds))
	for _, kind := range kinds {
		subs = append(subs, bus.Subscribe(kind, func(e event.Event) {
			if err := h.PublishEvent(e); err != nil {
				logger.Warning("Failed to publish event", "event", e.Kind.String(), "error", err)
			}
		}))
	}
	return subs
}

// Count returns the number of connected spectators.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.spectators)
}

// Close disconnects every spectator and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.spectators {
		s.stop()
		delete(h.spectators, s)
	}
}

func (h *Hub) add(s *Spectator) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.welcome != nil {
		s.enqueue(h.welcome)
	}
	h.spectators[s] = struct{}{}
	return true
}

func (h *Hub) remove(s *Spectator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.spectators[s]; ok {
		delete(h.spectators, s)
		s.stop()
	}
}

func (h *Hub) broadcast(data []byte) {
	var slow []*Spectator

	h.mu.RLock()
	for s := range h.spectators {
		if !s.enqueue(data) {
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		logger.Warning("Dropping slow spectator", "client_ip", s.RemoteAddr())
		h.remove(s)
	}
}

func encode(t MessageType, data any) ([]byte, error) {
	b, err := json.Marshal(Message{Type: t, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", t, err)
	}
	return b, nil
}
