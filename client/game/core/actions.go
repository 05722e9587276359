package core

import "github.com/samber/lo"

// ActionKind is one of the five submittable battle actions. Switching is a
// separate control and not part of this set.
type ActionKind int

const (
	ActionAttack ActionKind = iota
	ActionDefend
	ActionPass
	ActionSacrifice
	ActionSurrender
)

func (a ActionKind) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionDefend:
		return "defend"
	case ActionPass:
		return "pass"
	case ActionSacrifice:
		return "sacrifice"
	case ActionSurrender:
		return "surrender"
	}
	return ""
}

// DefendCost is the stamina cost of defending for a card with the given max
// HP. Formula: (HPMax + 1) / 2.
func DefendCost(hpMax int) int {
	return (hpMax + 1) / 2
}

// SacrificeCost is the stamina threshold required before a card may
// sacrifice. Formula: HPMax / 4.
func SacrificeCost(hpMax int) int {
	return hpMax / 4
}

// SwitchRequiresTurn gates switching on turn ownership. The server is
// authoritative about switch legality either way; with this off the client
// only blocks switches to knocked-out or already-active cards and lets the
// server reject the rest.
var SwitchRequiresTurn = false

// CanSubmit reports whether the player may submit an action right now.
func CanSubmit(s *BattleState) bool {
	return !s.BattleOver && s.WhoseTurn == TurnPlayer
}

// LegalActions computes the set of top-level actions the player may submit.
// Attack appears whenever the active card knows at least one move; whether a
// particular move is affordable is a per-move question answered by
// SelectableMoves.
func LegalActions(s *BattleState) []ActionKind {
	if !CanSubmit(s) {
		return nil
	}

	active := s.ActivePlayerCard()
	if active == nil {
		return nil
	}

	actions := make([]ActionKind, 0, 5)
	if len(active.Moves) > 0 {
		actions = append(actions, ActionAttack)
	}
	if active.Stamina >= DefendCost(active.HPMax) {
		actions = append(actions, ActionDefend)
	}
	actions = append(actions, ActionPass)
	if active.Stamina >= SacrificeCost(active.HPMax) {
		actions = append(actions, ActionSacrifice)
	}
	actions = append(actions, ActionSurrender)

	return actions
}

// SelectableMoves returns the indices of the active card's moves that the
// card can currently pay for.
func SelectableMoves(c *Combatant) []int {
	if c == nil {
		return nil
	}

	indexed := lo.Map(c.Moves, func(m Move, i int) int {
		if c.Stamina >= m.StaminaCost {
			return i
		}
		return -1
	})

	return lo.Filter(indexed, func(i int, _ int) bool {
		return i >= 0
	})
}

// CanSwitch reports whether switching the player's active card to idx is
// worth a round-trip. Knocked-out targets and the current card are always
// rejected; turn ownership is only checked when SwitchRequiresTurn is set.
func CanSwitch(s *BattleState, idx int) bool {
	if s.BattleOver {
		return false
	}
	if SwitchRequiresTurn && s.WhoseTurn != TurnPlayer {
		return false
	}
	if idx < 0 || idx >= len(s.PlayerDeck) {
		return false
	}
	if idx == s.PlayerActiveIdx {
		return false
	}
	return !s.PlayerDeck[idx].KnockedOut
}
