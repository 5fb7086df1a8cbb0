// World resource targets: palms, driftwood, rocks and vines the tribe
// harvests. The world owns them; the core only decrements yield.
package world

import "fmt"

// NodeID identifies a resource target.
type NodeID uint32

// NodeKind is the type of harvestable target.
type NodeKind uint8

const (
	NodeCoconutPalm NodeKind = iota // Yields coconuts
	NodeDriftwood                   // Yields wood
	NodeRock                        // Yields stone
	NodeVine                        // Yields vine fiber
)

// NumNodeKinds is the number of node kinds.
const NumNodeKinds = 4

// String returns the lowercase kind name.
func (k NodeKind) String() string {
	switch k {
	case NodeCoconutPalm:
		return "coconut_palm"
	case NodeDriftwood:
		return "driftwood"
	case NodeRock:
		return "rock"
	case NodeVine:
		return "vine"
	default:
		return "unknown"
	}
}

// Node is a world resource target with a mutable remaining yield.
type Node struct {
	ID        NodeID   `json:"id"`
	Kind      NodeKind `json:"kind"`
	Pos       Vec2     `json:"pos"`
	Remaining int      `json:"remaining"`
	MaxYield  int      `json:"max_yield"`

	// RegrowSeconds is how long one unit takes to grow back; 0 never regrows.
	RegrowSeconds float64 `json:"regrow_seconds"`
	regrowClock   float64
}

// Depleted reports whether the node has nothing left to take.
func (n *Node) Depleted() bool {
	return n == nil || n.Remaining <= 0
}

// Take removes up to want units and returns how many were taken.
func (n *Node) Take(want int) int {
	if n.Depleted() || want <= 0 {
		return 0
	}
	if want > n.Remaining {
		want = n.Remaining
	}
	n.Remaining -= want
	return want
}

// Regrow advances regrowth by dt seconds and reports whether a unit grew back.
func (n *Node) Regrow(dt float64) bool {
	if n.RegrowSeconds <= 0 || n.Remaining >= n.MaxYield {
		n.regrowClock = 0
		return false
	}
	n.regrowClock += dt
	if n.regrowClock < n.RegrowSeconds {
		return false
	}
	n.regrowClock -= n.RegrowSeconds
	n.Remaining++
	return true
}

// Key returns the claim key for this node.
func (n *Node) Key() Key {
	return NodeKey(n.ID)
}

func (n *Node) String() string {
	return fmt.Sprintf("%s#%d", n.Kind, n.ID)
}
