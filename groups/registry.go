// Package groups maps group names to the live sessions joined to them and
// fans published events out to those sessions.
package groups

import (
	"context"
	"sync"

	"ordercast/protocol"
)

// Member is anything that can sit in a group. Deliver must not block: a slow
// member drops events instead of stalling the publisher.
type Member interface {
	Deliver(ev protocol.Event)
}

// Publisher sends an event to every member of a group.
//
// Delivery is at-most-once and fire-and-forget. Nothing is persisted,
// members that join after the call never see the event, and a nil error does
// not mean any member received it. Publishing to an empty group is a no-op.
type Publisher interface {
	Publish(ctx context.Context, group string, ev protocol.Event) error
}

// Registry is the in-process group table. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[Member]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[string]map[Member]struct{}),
	}
}

// Join adds m to group, creating the group on first use.
func (r *Registry) Join(group string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.groups[group] == nil {
		r.groups[group] = make(map[Member]struct{})
	}
	r.groups[group][m] = struct{}{}
}

// Leave removes m from group. Empty groups are dropped.
func (r *Registry) Leave(group string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if members, ok := r.groups[group]; ok {
		delete(members, m)
		if len(members) == 0 {
			delete(r.groups, group)
		}
	}
}

// Publish delivers ev to the members of group in this process.
func (r *Registry) Publish(_ context.Context, group string, ev protocol.Event) error {
	r.Deliver(group, ev)
	return nil
}

// Deliver hands ev to every member present at call time and returns how many
// there were. The member list is copied so no lock is held while delivering.
func (r *Registry) Deliver(group string, ev protocol.Event) int {
	r.mu.RLock()
	members := make([]Member, 0, len(r.groups[group]))
	for m := range r.groups[group] {
		members = append(members, m)
	}
	r.mu.RUnlock()

	for _, m := range members {
		m.Deliver(ev)
	}
	return len(members)
}

// Members returns the number of members currently in group.
func (r *Registry) Members(group string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group])
}

// Groups returns member counts for every non-empty group.
func (r *Registry) Groups() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int, len(r.groups))
	for name, members := range r.groups {
		out[name] = len(members)
	}
	return out
}

var _ Publisher = (*Registry)(nil)
