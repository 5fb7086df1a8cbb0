// Social actions: the fixed table of opinion changes applied when one agent
// acts toward another, and tribe-wide renown for slaying named threats.
package social

import "github.com/talgya/castaway/internal/agents"

// Action is something one agent does to another.
type Action uint8

const (
	ActionShare Action = iota
	ActionHelp
	ActionProtect
	ActionFairTrade
	ActionUnfairTrade
	ActionBetrayal
	ActionFight
	ActionMate
	ActionTeamUp
)

func (a Action) String() string {
	switch a {
	case ActionShare:
		return "share"
	case ActionHelp:
		return "help"
	case ActionProtect:
		return "protect"
	case ActionFairTrade:
		return "fair_trade"
	case ActionUnfairTrade:
		return "unfair_trade"
	case ActionBetrayal:
		return "betrayal"
	case ActionFight:
		return "fight"
	case ActionMate:
		return "mate"
	case ActionTeamUp:
		return "team_up"
	default:
		return "unknown"
	}
}

type actionRule struct {
	delta  float64
	mutual bool
}

var actionTable = map[Action]actionRule{
	ActionShare:       {delta: 5},
	ActionHelp:        {delta: 8},
	ActionProtect:     {delta: 15},
	ActionFairTrade:   {delta: 3},
	ActionUnfairTrade: {delta: -6},
	ActionBetrayal:    {delta: -25},
	ActionFight:       {delta: -12},
	ActionMate:        {delta: 20, mutual: true},
	ActionTeamUp:      {delta: 4, mutual: true},
}

// KinFightPenalty is applied by each family member of a fight victim.
const KinFightPenalty = -8.0

// Delta returns the base opinion change of an action.
func Delta(a Action) float64 {
	return actionTable[a].delta
}

// Change records one opinion write.
type Change struct {
	From    agents.AgentID `json:"from"`
	To      agents.AgentID `json:"to"`
	Delta   float64        `json:"delta"`
	Opinion float64        `json:"opinion"`
}

// Apply records actor doing a to target: target's opinion of actor moves by
// the table delta (both directions for mutual actions). Fighting also lowers
// every family member of the victim's opinion of the actor.
func (g *Graph) Apply(a Action, actor, target agents.AgentID) []Change {
	rule, ok := actionTable[a]
	if !ok || actor == target {
		return nil
	}

	var out []Change
	write := func(from, to agents.AgentID, d float64) {
		v := g.Adjust(from, to, d)
		out = append(out, Change{From: from, To: to, Delta: d, Opinion: v})
	}

	write(target, actor, rule.delta)
	if rule.mutual {
		write(actor, target, rule.delta)
	}
	if a == ActionFight {
		for _, kin := range g.Family(target) {
			if kin == actor {
				continue
			}
			write(kin, actor, KinFightPenalty)
		}
	}
	return out
}

// Renown is the status earned by slaying named threats.
type Renown uint8

const (
	RenownNone Renown = iota
	RenownHero
	RenownLegend
)

func (r Renown) String() string {
	switch r {
	case RenownHero:
		return "hero"
	case RenownLegend:
		return "legend"
	default:
		return "none"
	}
}

// Renown thresholds and boosts.
const (
	HeroKills   = 1
	LegendKills = 3
	HeroBoost   = 10.0
	LegendBoost = 20.0
)

// RenownFor returns the status newly reached at the given named-kill count.
func RenownFor(kills int) Renown {
	switch kills {
	case HeroKills:
		return RenownHero
	case LegendKills:
		return RenownLegend
	default:
		return RenownNone
	}
}

// GrantRenown raises every other living agent's opinion of hero by the boost
// for the status reached at kills, and returns that status.
func (g *Graph) GrantRenown(hero agents.AgentID, kills int, living []agents.AgentID) Renown {
	r := RenownFor(kills)
	boost := 0.0
	switch r {
	case RenownHero:
		boost = HeroBoost
	case RenownLegend:
		boost = LegendBoost
	default:
		return RenownNone
	}
	for _, id := range living {
		if id != hero {
			g.Adjust(id, hero, boost)
		}
	}
	return r
}
