package sim

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/dungeonwalk/internal/logger"
)

// ErrEmptyProgram is returned when a program has nothing to play.
var ErrEmptyProgram = errors.New("sim: program has no entries")

// Content is one segment of a program, such as a title card or a level.
type Content interface {
	Name() string
	Enter() error
	Update(dt float64) error
	Complete() bool
}

// Entry plays Content for at most Duration seconds. A zero duration plays
// until the content completes.
type Entry struct {
	Content  Content
	Duration float64
}

// Program plays its entries in order.
type Program struct {
	entries []Entry
	index   int
	time    float64
	entered bool
}

// NewProgram creates a program from its entries.
func NewProgram(entries ...Entry) (*Program, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyProgram
	}
	return &Program{entries: entries}, nil
}

// Done reports whether every entry has played.
func (p *Program) Done() bool { return p.index >= len(p.entries) }

// Current returns the entry playing now.
func (p *Program) Current() (Content, bool) {
	if p.Done() {
		return nil, false
	}
	return p.entries[p.index].Content, true
}

// Update advances the current entry by dt seconds and moves on when it
// completes or runs out of time.
func (p *Program) Update(dt float64) error {
	if p.Done() {
		return nil
	}
	entry := p.entries[p.index]

	if !p.entered {
		logger.Debug("Entering content", "content", entry.Content.Name(), "index", p.index)
		if err := entry.Content.Enter(); err != nil {
			return fmt.Errorf("enter %s: %w", entry.Content.Name(), err)
		}
		p.entered = true
	}

	if err := entry.Content.Update(dt); err != nil {
		return fmt.Errorf("update %s: %w", entry.Content.Name(), err)
	}
	p.time += dt

	if entry.Content.Complete() || (entry.Duration > 0 && p.time >= entry.Duration) {
		p.index++
		p.time = 0
		p.entered = false
	}
	return nil
}

// Hold is content that shows nothing in particular; it only ends when its
// entry's duration runs out.
type Hold struct {
	Title   string
	Elapsed float64
}

func (h *Hold) Name() string { return h.Title }

func (h *Hold) Enter() error {
	h.Elapsed = 0
	return nil
}

func (h *Hold) Update(dt float64) error {
	h.Elapsed += dt
	return nil
}

func (h *Hold) Complete() bool { return false }

// Walk plays a world until its run is over.
type Walk struct {
	World    *World
	MaxTicks int
}

func (w *Walk) Name() string { return w.World.Level }

func (w *Walk) Enter() error {
	w.World.Start()
	return nil
}

func (w *Walk) Update(dt float64) error {
	if w.MaxTicks > 0 && w.World.Ticks() >= w.MaxTicks && !w.World.Done() {
		w.World.outcome = OutcomeTimeout
		return fmt.Errorf("%w after %d ticks", ErrTickLimit, w.World.Ticks())
	}
	return w.World.Tick(dt)
}

func (w *Walk) Complete() bool { return w.World.Done() }
