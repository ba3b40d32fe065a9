package npc

import (
	"errors"
	"time"
)

// DefaultPageDuration is how long a page stays up when it does not say.
const DefaultPageDuration = 4 * time.Second

// ErrEmptyConversation is returned for a scripted conversation without pages.
var ErrEmptyConversation = errors.New("npc: conversation needs at least one page")

// Page is one page of conversation text.
type Page struct {
	Text     string
	Speaker  string
	Portrait string        // renderer asset key, may be empty
	Duration time.Duration // zero means DefaultPageDuration
}

// DisplayDuration returns how long the page is shown.
func (p Page) DisplayDuration() time.Duration {
	if p.Duration <= 0 {
		return DefaultPageDuration
	}
	return p.Duration
}

// ConversationEngine produces conversation pages one at a time, so a later
// page may depend on what was said before.
type ConversationEngine interface {
	// Start begins the conversation and returns its first page.
	Start() Page
	// Respond returns the page after prev, or false when the conversation
	// is over.
	Respond(prev Page) (Page, bool)
}

// Scripted plays a fixed list of pages in order.
type Scripted struct {
	pages []Page
	index int
}

// NewScripted creates a scripted conversation.
func NewScripted(pages ...Page) (*Scripted, error) {
	if len(pages) == 0 {
		return nil, ErrEmptyConversation
	}
	return &Scripted{pages: append([]Page(nil), pages...)}, nil
}

func (s *Scripted) Start() Page {
	s.index = 0
	return s.pages[0]
}

func (s *Scripted) Respond(prev Page) (Page, bool) {
	s.index++
	if s.index < len(s.pages) {
		return s.pages[s.index], true
	}
	return Page{}, false
}

// Len returns the number of pages.
func (s *Scripted) Len() int { return len(s.pages) }
