package changeset

import (
	"sort"

	"github.com/fulmenhq/sfdelta/pkg/metadata"
)

// Set maps component types to unique member names. Types keep the order in
// which they were first added; names are unordered until Names is called.
type Set struct {
	order []string
	names map[string]map[string]struct{}
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{names: make(map[string]map[string]struct{})}
}

// Add inserts a member. Empty types or names are ignored.
func (s *Set) Add(typ, name string) bool {
	if typ == "" || name == "" {
		return false
	}
	members, ok := s.names[typ]
	if !ok {
		members = make(map[string]struct{})
		s.names[typ] = members
		s.order = append(s.order, typ)
	}
	if _, exists := members[name]; exists {
		return false
	}
	members[name] = struct{}{}
	return true
}

// AddComponent inserts a classified component.
func (s *Set) AddComponent(c metadata.Component) bool {
	return s.Add(c.Type, c.Name)
}

// Has reports whether typ/name is a member.
func (s *Set) Has(typ, name string) bool {
	_, ok := s.names[typ][name]
	return ok
}

// Types returns the types in first-seen order.
func (s *Set) Types() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Names returns the sorted members of typ.
func (s *Set) Names(typ string) []string {
	members := s.names[typ]
	out := make([]string, 0, len(members))
	for name := range members {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the total number of members across types.
func (s *Set) Len() int {
	n := 0
	for _, members := range s.names {
		n += len(members)
	}
	return n
}

// Empty reports whether the set has no members.
func (s *Set) Empty() bool {
	return len(s.order) == 0
}

// Equal reports whether both sets hold the same members, ignoring type order.
func (s *Set) Equal(other *Set) bool {
	if other == nil {
		return s.Empty()
	}
	if len(s.names) != len(other.names) {
		return false
	}
	for typ, members := range s.names {
		theirs, ok := other.names[typ]
		if !ok || len(theirs) != len(members) {
			return false
		}
		for name := range members {
			if _, ok := theirs[name]; !ok {
				return false
			}
		}
	}
	return true
}

// Map returns a copy of the set as type -> sorted names.
func (s *Set) Map() map[string][]string {
	out := make(map[string][]string, len(s.order))
	for _, typ := range s.order {
		out[typ] = s.Names(typ)
	}
	return out
}
