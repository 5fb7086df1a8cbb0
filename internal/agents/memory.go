// Agent memory: a bounded record of notable life events (births, deaths of
// kin, hunts, sickness) exposed through the observation API.
package agents

import "sort"

const MaxMemories = 24

// Memory records a notable experience in an agent's life.
type Memory struct {
	Tick       uint64  `json:"tick"`
	Content    string  `json:"content"`
	Importance float32 `json:"importance"` // 0.0–1.0
}

// AddMemory appends a memory. When full, the lowest-importance memory is
// replaced if the new one matters more; ties keep the older entry.
func AddMemory(a *Agent, tick uint64, content string, importance float32) {
	m := Memory{Tick: tick, Content: content, Importance: importance}

	if len(a.Memories) < MaxMemories {
		a.Memories = append(a.Memories, m)
		return
	}

	minIdx := 0
	for i := 1; i < len(a.Memories); i++ {
		if a.Memories[i].Importance < a.Memories[minIdx].Importance {
			minIdx = i
		}
	}
	if m.Importance > a.Memories[minIdx].Importance {
		a.Memories[minIdx] = m
	}
}

// RecentMemories returns up to count memories, newest first.
func RecentMemories(a *Agent, count int) []Memory {
	return rankedMemories(a, count, func(x, y Memory) bool { return x.Tick > y.Tick })
}

// ImportantMemories returns up to count memories, most important first.
func ImportantMemories(a *Agent, count int) []Memory {
	return rankedMemories(a, count, func(x, y Memory) bool { return x.Importance > y.Importance })
}

func rankedMemories(a *Agent, count int, less func(x, y Memory) bool) []Memory {
	if len(a.Memories) == 0 || count <= 0 {
		return nil
	}
	sorted := make([]Memory, len(a.Memories))
	copy(sorted, a.Memories)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	if count > len(sorted) {
		count = len(sorted)
	}
	return sorted[:count]
}
