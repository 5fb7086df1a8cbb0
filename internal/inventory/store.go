package inventory

import (
	"sort"
)

// Inventory is the one storage abstraction used by agents and the camp.
// Failing operations return false and leave the inventory untouched.
type Inventory interface {
	Add(r Resource, n int, now float64) bool
	Remove(r Resource, n int) bool
	Count(r Resource) int
	Has(r Resource, n int) bool
	CanAdd(r Resource, n int) bool
	UsedSlots() int
	Limits() Limits

	AddTool(t Tool, durability int) bool
	TakeTool(t Tool) (durability int, ok bool)
	ToolCount(t Tool) int
	Equip(t Tool) bool
	Equipped() (Tool, bool)
	UseTool() (broke bool, ok bool)
}

// Limits bounds a store.
type Limits struct {
	MaxSlots  int `yaml:"max_slots"`
	StackSize int `yaml:"stack_size"`
	ToolCap   int `yaml:"tool_cap"` // Per tool kind; 0 = unlimited
}

// PersonalLimits is what one agent can carry.
func PersonalLimits() Limits {
	return Limits{MaxSlots: 4, StackSize: 10, ToolCap: 1}
}

// CommunalLimits is the camp store capacity.
func CommunalLimits() Limits {
	return Limits{MaxSlots: 16, StackSize: 200}
}

type slot struct {
	born []float64 // One entry per item, oldest first
}

// Store implements Inventory.
type Store struct {
	limits   Limits
	slots    map[Resource]*slot
	tools    map[Tool][]int // Durability per instance
	equipped Tool
}

var _ Inventory = (*Store)(nil)

// NewStore creates an empty store with the given limits.
func NewStore(limits Limits) *Store {
	return &Store{
		limits: limits,
		slots:  make(map[Resource]*slot),
		tools:  make(map[Tool][]int),
	}
}

// Limits returns the store's capacity limits.
func (s *Store) Limits() Limits { return s.limits }

// Count returns how many of r are held.
func (s *Store) Count(r Resource) int {
	if sl, ok := s.slots[r]; ok {
		return len(sl.born)
	}
	return 0
}

// Has reports whether at least n of r are held.
func (s *Store) Has(r Resource, n int) bool {
	return s.Count(r) >= n
}

// UsedSlots returns the number of occupied resource slots.
func (s *Store) UsedSlots() int {
	return len(s.slots)
}

// CanAdd reports whether Add(r, n) would succeed.
func (s *Store) CanAdd(r Resource, n int) bool {
	if n <= 0 {
		return false
	}
	if sl, ok := s.slots[r]; ok {
		return len(sl.born)+n <= s.limits.StackSize
	}
	return len(s.slots) < s.limits.MaxSlots && n <= s.limits.StackSize
}

// Add stores n of r, stamped with the current sim time.
func (s *Store) Add(r Resource, n int, now float64) bool {
	if !s.CanAdd(r, n) {
		return false
	}
	sl, ok := s.slots[r]
	if !ok {
		sl = &slot{}
		s.slots[r] = sl
	}
	for i := 0; i < n; i++ {
		sl.born = append(sl.born, now)
	}
	return true
}

// Remove takes n of r, oldest first. An emptied slot is freed.
func (s *Store) Remove(r Resource, n int) bool {
	sl, ok := s.slots[r]
	if !ok || n <= 0 || len(sl.born) < n {
		return false
	}
	sl.born = sl.born[n:]
	if len(sl.born) == 0 {
		delete(s.slots, r)
	}
	return true
}

// Contents returns a copy of the resource counts.
func (s *Store) Contents() map[Resource]int {
	out := make(map[Resource]int, len(s.slots))
	for r, sl := range s.slots {
		out[r] = len(sl.born)
	}
	return out
}

// Carried lists held resources in canonical order.
func (s *Store) Carried() []Resource {
	var out []Resource
	for _, r := range Resources {
		if s.Count(r) > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Spoil removes every item whose age has reached its shelf life and returns
// the counts removed.
func (s *Store) Spoil(now float64, shelf SpoilSeconds) map[Resource]int {
	var spoiled map[Resource]int
	for r, sl := range s.slots {
		life, ok := shelf[r]
		if !ok || life <= 0 {
			continue
		}
		keep := sort.Search(len(sl.born), func(i int) bool {
			return now-sl.born[i] < life
		})
		if keep == 0 {
			continue
		}
		if spoiled == nil {
			spoiled = make(map[Resource]int)
		}
		spoiled[r] = keep
		sl.born = sl.born[keep:]
		if len(sl.born) == 0 {
			delete(s.slots, r)
		}
	}
	return spoiled
}

// OldestAge returns how long the oldest unit of r has been held.
func (s *Store) OldestAge(r Resource, now float64) (float64, bool) {
	sl, ok := s.slots[r]
	if !ok || len(sl.born) == 0 {
		return 0, false
	}
	return now - sl.born[0], true
}

// AddTool stores one tool instance with the given durability.
func (s *Store) AddTool(t Tool, durability int) bool {
	if durability <= 0 {
		return false
	}
	if s.limits.ToolCap > 0 && len(s.tools[t]) >= s.limits.ToolCap {
		return false
	}
	s.tools[t] = append(s.tools[t], durability)
	return true
}

// TakeTool removes the most worn instance of t and returns its durability.
// Taking the last equipped instance unequips it.
func (s *Store) TakeTool(t Tool) (int, bool) {
	list := s.tools[t]
	if len(list) == 0 {
		return 0, false
	}
	idx := 0
	for i, d := range list {
		if d < list[idx] {
			idx = i
		}
	}
	d := list[idx]
	list = append(list[:idx], list[idx+1:]...)
	if len(list) == 0 {
		delete(s.tools, t)
		if s.equipped == t {
			s.equipped = ""
		}
	} else {
		s.tools[t] = list
	}
	return d, true
}

// ToolCount returns how many instances of t are held.
func (s *Store) ToolCount(t Tool) int {
	return len(s.tools[t])
}

// Tools returns a copy of the tool durabilities.
func (s *Store) Tools() map[Tool][]int {
	out := make(map[Tool][]int, len(s.tools))
	for t, list := range s.tools {
		out[t] = append([]int(nil), list...)
	}
	return out
}

// Equip makes t the equipped tool. At most one tool is equipped at a time.
func (s *Store) Equip(t Tool) bool {
	if len(s.tools[t]) == 0 {
		return false
	}
	s.equipped = t
	return true
}

// Unequip clears the equipped tool.
func (s *Store) Unequip() {
	s.equipped = ""
}

// Equipped returns the equipped tool kind.
func (s *Store) Equipped() (Tool, bool) {
	if s.equipped == "" {
		return "", false
	}
	return s.equipped, true
}

// UseTool wears the equipped tool by one. At zero durability the instance is
// removed and, if it was the last of its kind, unequipped.
func (s *Store) UseTool() (broke bool, ok bool) {
	if s.equipped == "" {
		return false, false
	}
	list := s.tools[s.equipped]
	if len(list) == 0 {
		s.equipped = ""
		return false, false
	}
	list[0]--
	if list[0] > 0 {
		return false, true
	}
	list = list[1:]
	if len(list) == 0 {
		delete(s.tools, s.equipped)
		s.equipped = ""
	} else {
		s.tools[s.equipped] = list
	}
	return true, true
}
