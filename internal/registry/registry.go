// Package registry maintains the live fleet: a name-keyed map of boat
// entries with insertion-ordered iteration and a secondary index of boat
// groups.
package registry

import (
	"errors"
	"strings"
	"sync"

	"github.com/ls4096/sailnavsim-core/internal/boat"
)

// ErrExists is returned when adding a boat whose name is already taken.
var ErrExists = errors.New("boat already exists")

// Entry is one registry node: a vessel plus its external identity.
// Entries form an intrusive doubly linked list in insertion order.
type Entry struct {
	Name    string
	Group   string
	AltName string
	Boat    *boat.Vessel

	next *Entry
	prev *Entry
}

// Next returns the entry added after e, or nil at the tail. Callers must
// hold the registry lock across the whole iteration.
func (e *Entry) Next() *Entry {
	return e.next
}

// groupMember pairs a boat name with its display alternative inside a
// group, preserving registry insertion order.
type groupMember struct {
	name    string
	altName string

	next *groupMember
}

type group struct {
	first *groupMember
	last  *groupMember
}

// Registry is the process-wide boat registry. The embedded RWMutex is
// exposed deliberately: the simulation loop holds it exclusively across
// the advance and command phases, while net server workers take it shared
// for reads.
type Registry struct {
	sync.RWMutex

	byName map[string]*Entry
	groups map[string]*group

	first *Entry
	last  *Entry
	count int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]*Entry),
		groups: make(map[string]*group),
	}
}

// Add inserts a vessel under the given name at the tail of iteration
// order, indexing it into the group if one is supplied. Adding a name
// already present returns ErrExists and changes nothing.
//
// Callers must hold the write lock.
func (r *Registry) Add(v *boat.Vessel, name, groupName, altName string) error {
	if _, ok := r.byName[name]; ok {
		return ErrExists
	}

	e := &Entry{
		Name:    name,
		Group:   groupName,
		AltName: altName,
		Boat:    v,
		prev:    r.last,
	}

	if r.first == nil {
		r.first = e
	} else {
		r.last.next = e
	}
	r.last = e

	r.byName[name] = e
	r.count++

	if groupName != "" {
		g := r.groups[groupName]
		if g == nil {
			g = &group{}
			r.groups[groupName] = g
		}

		m := &groupMember{name: name, altName: altName}
		if g.first == nil {
			g.first = m
		} else {
			g.last.next = m
		}
		g.last = m
	}

	return nil
}

// Get returns the vessel registered under the name, or nil.
//
// Callers must hold at least the read lock.
func (r *Registry) Get(name string) *boat.Vessel {
	if e, ok := r.byName[name]; ok {
		return e.Boat
	}
	return nil
}

// GetEntry returns the full entry for the name, or nil.
//
// Callers must hold at least the read lock.
func (r *Registry) GetEntry(name string) *Entry {
	return r.byName[name]
}

// Remove unlinks the named boat from both indices and returns its vessel,
// or nil if the name is not registered.
//
// Callers must hold the write lock.
func (r *Registry) Remove(name string) *boat.Vessel {
	e, ok := r.byName[name]
	if !ok {
		return nil
	}

	if e.prev != nil {
		e.prev.next = e.next
	} else {
		r.first = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		r.last = e.prev
	}

	delete(r.byName, name)
	r.count--

	if e.Group != "" {
		if g := r.groups[e.Group]; g != nil {
			var prev *groupMember
			for m := g.first; m != nil; m = m.next {
				if m.name == name {
					if prev != nil {
						prev.next = m.next
					} else {
						g.first = m.next
					}
					if m.next == nil {
						g.last = prev
					}
					break
				}
				prev = m
			}
			if g.first == nil {
				delete(r.groups, e.Group)
			}
		}
	}

	return e.Boat
}

// All returns the head of the insertion-ordered entry list and the entry
// count. Iterating while the registry is concurrently mutated is not
// permitted; callers must hold the appropriate lock.
func (r *Registry) All() (*Entry, int) {
	return r.first, r.count
}

// Count returns the number of registered boats.
//
// Callers must hold at least the read lock.
func (r *Registry) Count() int {
	return r.count
}

// GroupMembershipResponse renders one "name,altName" line per member of
// the named group in registry insertion order, with "!" standing in for
// an absent alternative name.
//
// Callers must hold at least the read lock.
func (r *Registry) GroupMembershipResponse(groupName string) string {
	g := r.groups[groupName]
	if g == nil {
		return ""
	}

	var sb strings.Builder
	for m := g.first; m != nil; m = m.next {
		sb.WriteString(m.name)
		sb.WriteByte(',')
		if m.altName != "" {
			sb.WriteString(m.altName)
		} else {
			sb.WriteByte('!')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
