package world

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies a claimable target: a node, a fish, a stored tool, a craft
// order, or a tribe-mate being assisted. Keys are "<kind>:<id>" strings.
type Key string

// Key kinds.
const (
	KeyNode   = "node"
	KeyFish   = "fish"
	KeyTool   = "tool"
	KeyCraft  = "craft"
	KeyAssist = "assist"
)

// NodeKey returns the claim key for a resource node.
func NodeKey(id NodeID) Key { return Key(fmt.Sprintf("%s:%d", KeyNode, id)) }

// FishKey returns the claim key for a fish.
func FishKey(id uint32) Key { return Key(fmt.Sprintf("%s:%d", KeyFish, id)) }

// ToolKey returns the claim key for fetching a stored tool of the given kind.
func ToolKey(tool string) Key { return Key(KeyTool + ":" + tool) }

// CraftKey returns the claim key for crafting a tool of the given kind.
func CraftKey(tool string) Key { return Key(KeyCraft + ":" + tool) }

// AssistKey returns the claim key for helping the given agent.
func AssistKey(agentID uint64) Key { return Key(fmt.Sprintf("%s:%d", KeyAssist, agentID)) }

// Parse splits a key into its kind and id parts.
func (k Key) Parse() (kind, id string, ok bool) {
	kind, id, ok = strings.Cut(string(k), ":")
	if !ok || kind == "" || id == "" {
		return "", "", false
	}
	return kind, id, true
}

// NodeID returns the node id encoded in a node key.
func (k Key) NodeID() (NodeID, bool) {
	kind, id, ok := k.Parse()
	if !ok || kind != KeyNode {
		return 0, false
	}
	v, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return 0, false
	}
	return NodeID(v), true
}
