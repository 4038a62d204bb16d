// Package theme owns the console's light/dark display preference.
package theme

import (
	"sort"
	"sync"
)

// Preference is the display mode.
type Preference string

const (
	Light Preference = "light"
	Dark  Preference = "dark"
)

// SlotName is the fixed storage slot for the persisted preference.
const SlotName = "webhooks-theme"

// Parse returns the preference named by value.
func Parse(value string) (Preference, bool) {
	switch Preference(value) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	default:
		return "", false
	}
}

// Toggled returns the opposite preference.
func (p Preference) Toggled() Preference {
	if p == Dark {
		return Light
	}
	return Dark
}

// Class is the root element class applied for the preference.
func (p Preference) Class() string {
	if p == Dark {
		return "dark"
	}
	return ""
}

// Resolve picks the initial preference: a valid persisted value wins, then the
// system dark-mode signal, then light.
func Resolve(persisted string, systemDark bool) Preference {
	if p, ok := Parse(persisted); ok {
		return p
	}
	if systemDark {
		return Dark
	}
	return Light
}

// Store holds the current preference and notifies subscribers on change.
type Store struct {
	mu          sync.Mutex
	current     Preference
	nextID      int
	subscribers map[int]func(Preference)
}

// NewStore constructs a store. Invalid initial values fall back to light.
func NewStore(initial Preference) *Store {
	if _, ok := Parse(string(initial)); !ok {
		initial = Light
	}
	return &Store{current: initial, subscribers: make(map[int]func(Preference))}
}

// Get returns the current preference.
func (s *Store) Get() Preference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set replaces the preference. It reports false, without notifying, for invalid or
// unchanged values.
func (s *Store) Set(p Preference) bool {
	if _, ok := Parse(string(p)); !ok {
		return false
	}
	s.mu.Lock()
	if s.current == p {
		s.mu.Unlock()
		return false
	}
	s.current = p
	subs := s.snapshot()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
	return true
}

// Toggle flips the preference and returns the new value.
func (s *Store) Toggle() Preference {
	s.mu.Lock()
	next := s.current.Toggled()
	s.current = next
	subs := s.snapshot()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Subscribe registers fn for future changes. The returned func removes it.
func (s *Store) Subscribe(fn func(Preference)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) snapshot() []func(Preference) {
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(Preference), 0, len(ids))
	for _, id := range ids {
		out = append(out, s.subscribers[id])
	}
	return out
}
