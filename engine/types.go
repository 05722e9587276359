// Package engine implements the battle rules the remote service runs:
// turn resolution, damage, the opposing AI, and post-battle rewards. The
// practice server serves it over the same endpoint surface, so a client
// pointed at it behaves exactly as against the production backend.
package engine

import (
	"time"
)

const (
	ModeOneOnOne   = "1v1"
	ModeFiveOnFive = "5v5"
)

const (
	MoveAttack    = "attack"
	MoveDefend    = "defend"
	MovePass      = "pass"
	MoveSacrifice = "sacrifice"
	MoveSurrender = "surrender"
)

// Move is one attack on a card. The attack_type tag is load-bearing: both
// response shapes the client accepts serialize move types under that key.
type Move struct {
	Name        string `json:"name"`
	Power       int    `json:"power"`
	StaminaCost int    `json:"stamina_cost"`
	Type        string `json:"attack_type"`
}

// Card is a combatant as it travels on the wire (flat snake_case shape).
type Card struct {
	CardID       int      `json:"card_id"`
	Name         string   `json:"name"`
	HP           int      `json:"hp"`
	HPMax        int      `json:"hp_max"`
	Stamina      int      `json:"stamina"`
	StaminaMax   int      `json:"stamina_max"`
	Attack       int      `json:"attack"`
	Defense      int      `json:"defense"`
	Speed        int      `json:"speed"`
	Types        []string `json:"types"`
	Moves        []Move   `json:"moves"`
	Sprite       string   `json:"sprite"`
	IsKnockedOut bool     `json:"is_knocked_out"`
	Level        int      `json:"level"`
	XP           int      `json:"xp"`
	IsLegendary  bool     `json:"is_legendary"`
	IsMythical   bool     `json:"is_mythical"`
}

func (c *Card) Alive() bool {
	return c != nil && c.HP > 0
}

// Battle is one running battle session.
type Battle struct {
	ID              string `json:"id"`
	Mode            string `json:"mode"`
	PlayerDeck      []Card `json:"player_deck"`
	AIDeck          []Card `json:"ai_deck"`
	PlayerActiveIdx int    `json:"player_active_idx"`
	AIActiveIdx     int    `json:"ai_active_idx"`
	TurnNumber      int    `json:"turn_number"`
	RoundNumber     int    `json:"round_number"`
	WhoseTurn       string `json:"whose_turn"`
	BattleOver      bool   `json:"battle_over"`
	Winner          string `json:"winner"`
	RewardClaimed   bool   `json:"reward_claimed"`

	// ConsecutivePasses tracks double-pass stalemates; three in a row draw
	// the battle.
	ConsecutivePasses int `json:"consecutive_passes"`

	// SacrificeCount tracks how often each deck slot has sacrificed; the HP
	// price climbs with each use and caps at three.
	SacrificeCount map[int]int `json:"sacrifice_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	pendingPlayerMove    string
	pendingPlayerMoveIdx int
	pendingAIMove        string
	pendingAIMoveIdx     int
}

func (b *Battle) ActivePlayerCard() *Card {
	if b.PlayerActiveIdx >= 0 && b.PlayerActiveIdx < len(b.PlayerDeck) {
		return &b.PlayerDeck[b.PlayerActiveIdx]
	}
	return nil
}

func (b *Battle) ActiveAICard() *Card {
	if b.AIActiveIdx >= 0 && b.AIActiveIdx < len(b.AIDeck) {
		return &b.AIDeck[b.AIActiveIdx]
	}
	return nil
}

func (b *Battle) HasPlayerCardAlive() bool {
	for i := range b.PlayerDeck {
		if b.PlayerDeck[i].HP > 0 {
			return true
		}
	}
	return false
}

func (b *Battle) HasAICardAlive() bool {
	for i := range b.AIDeck {
		if b.AIDeck[i].HP > 0 {
			return true
		}
	}
	return false
}

// CheckBattleEnd inspects both sides and closes the battle when a side has
// nothing left. In 1v1 only the active cards matter; in 5v5 the whole deck.
func (b *Battle) CheckBattleEnd() {
	switch b.Mode {
	case ModeOneOnOne:
		playerCard := b.ActivePlayerCard()
		aiCard := b.ActiveAICard()
		if playerCard == nil || aiCard == nil {
			return
		}
		switch {
		case playerCard.HP <= 0 && aiCard.HP <= 0:
			b.BattleOver = true
			b.Winner = "draw"
		case playerCard.HP <= 0:
			b.BattleOver = true
			b.Winner = "ai"
		case aiCard.HP <= 0:
			b.BattleOver = true
			b.Winner = "player"
		}
	case ModeFiveOnFive:
		playerAlive := b.HasPlayerCardAlive()
		aiAlive := b.HasAICardAlive()
		switch {
		case !playerAlive && !aiAlive:
			b.BattleOver = true
			b.Winner = "draw"
		case !playerAlive:
			b.BattleOver = true
			b.Winner = "ai"
		case !aiAlive:
			b.BattleOver = true
			b.Winner = "player"
		}
	}
}
