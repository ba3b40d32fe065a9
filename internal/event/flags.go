package event

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// Flags is the narrative state of a level: named booleans that emit
// FlagSet and FlagCleared when they change.
type Flags struct {
	bus *Bus
	set mapset.Set[string]
}

// NewFlags creates an empty flag set. bus may be nil.
func NewFlags(bus *Bus) *Flags {
	return &Flags{bus: bus, set: mapset.New[string]()}
}

// Set raises a flag. Setting a raised flag does nothing.
func (f *Flags) Set(name string) {
	if f.set.Has(name) {
		return
	}
	f.set.Put(name)
	if f.bus != nil {
		f.bus.Emit(Event{Kind: FlagSet, ID: name})
	}
}

// Clear lowers a flag. Clearing a lowered flag does nothing.
func (f *Flags) Clear(name string) {
	if !f.set.Has(name) {
		return
	}
	f.set.Remove(name)
	if f.bus != nil {
		f.bus.Emit(Event{Kind: FlagCleared, ID: name})
	}
}

// IsSet reports whether a flag is raised.
func (f *Flags) IsSet(name string) bool {
	return f.set.Has(name)
}

// Names returns the raised flags in sorted order.
func (f *Flags) Names() []string {
	names := make([]string, 0, f.set.Size())
	f.set.Each(func(name string) {
		names = append(names, name)
	})
	sort.Strings(names)
	return names
}
