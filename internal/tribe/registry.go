// Package tribe holds the tribe-wide scheduling state: the claim registry that
// keeps two agents from pursuing the same target, and the coordinator that
// aggregates critical needs and stockpile urgency each tick.
package tribe

import (
	"log/slog"
	"sort"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/world"
)

// Registry maps claim keys to their single owner.
type Registry struct {
	owners map[world.Key]agents.AgentID
	held   map[agents.AgentID]map[world.Key]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		owners: make(map[world.Key]agents.AgentID),
		held:   make(map[agents.AgentID]map[world.Key]struct{}),
	}
}

// Claim gives key to agent. It fails if another agent owns key; claiming a
// key already owned by agent succeeds.
func (r *Registry) Claim(key world.Key, agent agents.AgentID) bool {
	if owner, ok := r.owners[key]; ok {
		return owner == agent
	}
	r.owners[key] = agent
	keys, ok := r.held[agent]
	if !ok {
		keys = make(map[world.Key]struct{})
		r.held[agent] = keys
	}
	keys[key] = struct{}{}
	return true
}

// Release frees key if agent owns it.
func (r *Registry) Release(key world.Key, agent agents.AgentID) bool {
	owner, ok := r.owners[key]
	if !ok || owner != agent {
		return false
	}
	r.drop(key, agent)
	return true
}

func (r *Registry) drop(key world.Key, agent agents.AgentID) {
	delete(r.owners, key)
	if keys, ok := r.held[agent]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(r.held, agent)
		}
	}
}

// IsClaimed reports whether anyone owns key.
func (r *Registry) IsClaimed(key world.Key) bool {
	_, ok := r.owners[key]
	return ok
}

// Owner returns the owner of key.
func (r *Registry) Owner(key world.Key) (agents.AgentID, bool) {
	owner, ok := r.owners[key]
	return owner, ok
}

// Held returns the keys agent owns, sorted.
func (r *Registry) Held(agent agents.AgentID) []world.Key {
	keys := r.held[agent]
	out := make([]world.Key, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ReleaseAll frees every key agent owns and returns them, sorted.
func (r *Registry) ReleaseAll(agent agents.AgentID) []world.Key {
	keys := r.Held(agent)
	for _, k := range keys {
		r.drop(k, agent)
	}
	return keys
}

// Len returns the number of live claims.
func (r *Registry) Len() int {
	return len(r.owners)
}

// Keys returns every claimed key, sorted.
func (r *Registry) Keys() []world.Key {
	out := make([]world.Key, 0, len(r.owners))
	for k := range r.owners {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Claim is one registry entry.
type Claim struct {
	Key   world.Key      `json:"key"`
	Owner agents.AgentID `json:"owner"`
}

// Claims returns every entry in key order.
func (r *Registry) Claims() []Claim {
	keys := r.Keys()
	out := make([]Claim, 0, len(keys))
	for _, k := range keys {
		out = append(out, Claim{Key: k, Owner: r.owners[k]})
	}
	return out
}

// Reconcile drops every claim for which active reports false, visiting keys
// in sorted order. It returns the claims dropped.
func (r *Registry) Reconcile(active func(owner agents.AgentID, key world.Key) bool) []Claim {
	var dropped []Claim
	for _, k := range r.Keys() {
		owner := r.owners[k]
		if active(owner, k) {
			continue
		}
		r.drop(k, owner)
		dropped = append(dropped, Claim{Key: k, Owner: owner})
	}
	if len(dropped) > 0 {
		slog.Debug("stale claims released", "count", len(dropped))
	}
	return dropped
}
