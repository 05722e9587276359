package engine

// Rewards summarizes everything a finished battle pays out.
type Rewards struct {
	CoinsEarned               int             `json:"coins_earned"`
	XPGains                   []PokemonXPGain `json:"xp_gains"`
	NewlyUnlockedAchievements []Achievement   `json:"newly_unlocked_achievements,omitempty"`
}

// PokemonXPGain records XP gained by a card after battle. The stat fields are
// only populated when the card leveled up.
type PokemonXPGain struct {
	CardID      int    `json:"card_id"`
	PokemonName string `json:"pokemon_name"`
	XPGained    int    `json:"xp_gained"`
	OldLevel    int    `json:"old_level"`
	NewLevel    int    `json:"new_level"`
	LeveledUp   bool   `json:"leveled_up"`
	OldHP       int    `json:"old_hp,omitempty"`
	NewHP       int    `json:"new_hp,omitempty"`
	OldAttack   int    `json:"old_attack,omitempty"`
	NewAttack   int    `json:"new_attack,omitempty"`
	OldDefense  int    `json:"old_defense,omitempty"`
	NewDefense  int    `json:"new_defense,omitempty"`
	OldSpeed    int    `json:"old_speed,omitempty"`
	NewSpeed    int    `json:"new_speed,omitempty"`
}

// Achievement is an unlockable milestone surfaced with the battle rewards.
type Achievement struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Achievement ids mirror the production database rows.
const (
	achievementFirstBlood = iota + 1
	achievementSquadGoals
	achievementUntouchable
	achievementPeakForm
)

// RosterCard is a card as the player owns it, independent of any battle.
// Battle cards carry leveled stats; the roster carries the base stats the
// level math starts from.
type RosterCard struct {
	CardID      int    `json:"card_id"`
	PokemonName string `json:"pokemon_name"`
	Level       int    `json:"level"`
	XP          int    `json:"xp"`
	BaseHP      int    `json:"base_hp"`
	BaseAttack  int    `json:"base_attack"`
	BaseDefense int    `json:"base_defense"`
	BaseSpeed   int    `json:"base_speed"`
}

const maxLevel = 50

// CalculateCoins pays 50 for a 1v1 win, 150 for a 5v5 win and 10 consolation
// coins otherwise.
func CalculateCoins(b *Battle) int {
	if b.Winner == "player" {
		switch b.Mode {
		case ModeOneOnOne:
			return 50
		case ModeFiveOnFive:
			return 150
		}
	}
	return 10
}

// CalculateXP maps card IDs to XP earned. In 1v1 only the active card earns;
// in 5v5 every card that participated (took damage or went down) earns.
func CalculateXP(b *Battle) map[int]int {
	xpMap := make(map[int]int)
	isWin := b.Winner == "player"

	switch b.Mode {
	case ModeOneOnOne:
		baseXP := 5
		if isWin {
			baseXP = 20
		}
		if card := b.ActivePlayerCard(); card != nil {
			xpMap[card.CardID] = baseXP
		}
	case ModeFiveOnFive:
		baseXP := 5
		if isWin {
			baseXP = 15
		}
		for i := range b.PlayerDeck {
			card := &b.PlayerDeck[i]
			if card.HP < card.HPMax || card.IsKnockedOut {
				xpMap[card.CardID] = baseXP
			}
		}
	}

	return xpMap
}

// Stats holds a card's derived stats at some level.
type Stats struct {
	HP      int
	Attack  int
	Defense int
	Speed   int
}

// StatsForLevel grows the base stats per level gained: HP +3%, Attack +2%,
// Defense +2%, Speed +1%.
func StatsForLevel(level, baseHP, baseAttack, baseDefense, baseSpeed int) Stats {
	levelMultiplier := float64(level - 1)
	return Stats{
		HP:      int(float64(baseHP) * (1.0 + levelMultiplier*0.03)),
		Attack:  int(float64(baseAttack) * (1.0 + levelMultiplier*0.02)),
		Defense: int(float64(baseDefense) * (1.0 + levelMultiplier*0.02)),
		Speed:   int(float64(baseSpeed) * (1.0 + levelMultiplier*0.01)),
	}
}

// ApplyXP credits the XP map against the roster, processing level-ups as the
// thresholds (100 XP per current level) are crossed, capped at level 50.
func ApplyXP(roster []*RosterCard, xpMap map[int]int) []PokemonXPGain {
	gains := []PokemonXPGain{}

	// Walk the roster, not the map, so the output order is stable.
	for _, card := range roster {
		xpGained, earned := xpMap[card.CardID]
		if !earned {
			continue
		}

		oldStats := StatsForLevel(card.Level, card.BaseHP, card.BaseAttack, card.BaseDefense, card.BaseSpeed)
		oldLevel := card.Level

		newXP := card.XP + xpGained
		newLevel := card.Level
		for newLevel < maxLevel {
			xpRequired := 100 * newLevel
			if newXP < xpRequired {
				break
			}
			newXP -= xpRequired
			newLevel++
		}
		if newLevel >= maxLevel {
			newLevel = maxLevel
			newXP = 0
		}

		card.Level = newLevel
		card.XP = newXP

		gain := PokemonXPGain{
			CardID:      card.CardID,
			PokemonName: card.PokemonName,
			XPGained:    xpGained,
			OldLevel:    oldLevel,
			NewLevel:    newLevel,
			LeveledUp:   newLevel > oldLevel,
		}

		if gain.LeveledUp {
			newStats := StatsForLevel(newLevel, card.BaseHP, card.BaseAttack, card.BaseDefense, card.BaseSpeed)
			gain.OldHP = oldStats.HP
			gain.NewHP = newStats.HP
			gain.OldAttack = oldStats.Attack
			gain.NewAttack = newStats.Attack
			gain.OldDefense = oldStats.Defense
			gain.NewDefense = newStats.Defense
			gain.OldSpeed = oldStats.Speed
			gain.NewSpeed = newStats.Speed
		}

		gains = append(gains, gain)
	}

	return gains
}

// CalculateRewards runs the complete payout for a finished battle: coins, XP
// applied against the roster, and any achievements the outcome unlocked.
func CalculateRewards(b *Battle, roster []*RosterCard) *Rewards {
	rewards := &Rewards{
		CoinsEarned: CalculateCoins(b),
		XPGains:     []PokemonXPGain{},
	}
	rewards.XPGains = ApplyXP(roster, CalculateXP(b))
	rewards.NewlyUnlockedAchievements = checkAchievements(b, rewards.XPGains)
	return rewards
}

func checkAchievements(b *Battle, gains []PokemonXPGain) []Achievement {
	unlocked := []Achievement{}

	if b.Winner == "player" {
		switch b.Mode {
		case ModeOneOnOne:
			unlocked = append(unlocked, Achievement{
				ID:          achievementFirstBlood,
				Name:        "First Blood",
				Description: "Win a 1v1 battle",
				Icon:        "⚔️",
			})
		case ModeFiveOnFive:
			unlocked = append(unlocked, Achievement{
				ID:          achievementSquadGoals,
				Name:        "Squad Goals",
				Description: "Win a 5v5 battle",
				Icon:        "🏆",
			})
			// A flawless 5v5 keeps every card standing.
			flawless := true
			for i := range b.PlayerDeck {
				if b.PlayerDeck[i].IsKnockedOut {
					flawless = false
					break
				}
			}
			if flawless {
				unlocked = append(unlocked, Achievement{
					ID:          achievementUntouchable,
					Name:        "Untouchable",
					Description: "Win a 5v5 battle without losing a card",
					Icon:        "🛡️",
				})
			}
		}
	}

	for _, gain := range gains {
		if gain.LeveledUp && gain.NewLevel >= maxLevel {
			unlocked = append(unlocked, Achievement{
				ID:          achievementPeakForm,
				Name:        "Peak Form",
				Description: "Raise a card to the level cap",
				Icon:        "⭐",
			})
			break
		}
	}

	return unlocked
}
