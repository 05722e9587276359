package engine

import (
	"math/rand/v2"
	"strings"
	"time"
)

// battleRNG backs every damage roll. Tests swap it for a fixed source to
// force the top or bottom of a damage table.
var battleRNG = rand.New(newTimeSeededPCG())

func newTimeSeededPCG() *rand.PCG {
	now := uint64(time.Now().UnixNano())
	return rand.NewPCG(now, now>>32)
}

// SetRNGSource swaps the battle RNG. Pass nil to restore a time-seeded PCG.
func SetRNGSource(source rand.Source) {
	if source == nil {
		battleRNG = rand.New(newTimeSeededPCG())
		return
	}
	battleRNG = rand.New(source)
}

// HighSource always rolls the top entry of a damage table.
type HighSource struct{}

func (HighSource) Uint64() uint64 {
	return ^uint64(0)
}

// LowSource always rolls the bottom entry of a damage table.
type LowSource struct{}

func (LowSource) Uint64() uint64 {
	return 0
}

type damageEntry struct {
	pct, prob float64
}

// Damage percent tables keyed on the attack stat. Weak attackers mostly roll
// the small percents, heavy attackers the large ones. Stats between the
// anchors (30, 70, 120) interpolate the probabilities linearly.
var (
	lowAttackTable = []damageEntry{
		{0.10, 0.07}, {0.20, 0.13}, {0.30, 0.35}, {0.40, 0.25}, {0.60, 0.10}, {0.80, 0.07}, {1.00, 0.03},
	}
	highAttackTable = []damageEntry{
		{0.10, 0.01}, {0.20, 0.04}, {0.30, 0.10}, {0.40, 0.15}, {0.60, 0.25}, {0.80, 0.25}, {1.00, 0.20},
	}
	superAttackTable = []damageEntry{
		{0.10, 0.00}, {0.20, 0.01}, {0.30, 0.04}, {0.40, 0.10}, {0.60, 0.15}, {0.80, 0.30}, {1.00, 0.40},
	}
)

func damageTableFor(attackStat int) []damageEntry {
	switch {
	case attackStat <= 30:
		return lowAttackTable
	case attackStat >= 120:
		return superAttackTable
	case attackStat >= 70:
		frac := float64(attackStat-70) / 50.0
		return blendTables(highAttackTable, superAttackTable, frac)
	default:
		frac := float64(attackStat-30) / 40.0
		return blendTables(lowAttackTable, highAttackTable, frac)
	}
}

func blendTables(a, b []damageEntry, frac float64) []damageEntry {
	table := make([]damageEntry, len(a))
	for i := range a {
		table[i].pct = a[i].pct
		table[i].prob = a[i].prob*(1-frac) + b[i].prob*frac
	}
	return table
}

// rollDamagePercent draws a fraction of the move's power from the table the
// attacker's attack stat falls into.
func rollDamagePercent(attackStat int) float64 {
	table := damageTableFor(attackStat)
	roll := battleRNG.Float64()
	cum := 0.0
	for _, entry := range table {
		cum += entry.prob
		if roll < cum {
			return entry.pct
		}
	}
	return 0.10
}

// typeChart maps attacking move type to defending types and their
// multipliers. Pairings not listed are neutral.
var typeChart = map[string]map[string]float64{
	"normal": {
		"rock": 0.5, "ghost": 0.0, "steel": 0.5,
	},
	"fire": {
		"fire": 0.5, "water": 0.5, "grass": 2.0, "ice": 2.0, "bug": 2.0, "rock": 0.5, "dragon": 0.5, "steel": 2.0,
	},
	"water": {
		"fire": 2.0, "water": 0.5, "grass": 0.5, "ground": 2.0, "rock": 2.0, "dragon": 0.5,
	},
	"electric": {
		"water": 2.0, "electric": 0.5, "grass": 0.5, "ground": 0.0, "flying": 2.0, "dragon": 0.5,
	},
	"grass": {
		"fire": 0.5, "water": 2.0, "grass": 0.5, "poison": 0.5, "ground": 2.0, "flying": 0.5, "bug": 0.5, "rock": 2.0, "dragon": 0.5, "steel": 0.5,
	},
	"ice": {
		"fire": 0.5, "water": 0.5, "grass": 2.0, "ice": 0.5, "ground": 2.0, "flying": 2.0, "dragon": 2.0, "steel": 0.5,
	},
	"fighting": {
		"normal": 2.0, "ice": 2.0, "poison": 0.5, "flying": 0.5, "psychic": 0.5, "bug": 0.5, "rock": 2.0, "ghost": 0.0, "dark": 2.0, "steel": 2.0, "fairy": 0.5,
	},
	"poison": {
		"grass": 2.0, "poison": 0.5, "ground": 0.5, "rock": 0.5, "ghost": 0.5, "steel": 0.0, "fairy": 2.0,
	},
	"ground": {
		"fire": 2.0, "electric": 2.0, "grass": 0.5, "poison": 2.0, "flying": 0.0, "bug": 0.5, "rock": 2.0, "steel": 2.0,
	},
	"flying": {
		"electric": 0.5, "grass": 2.0, "fighting": 2.0, "bug": 2.0, "rock": 0.5, "steel": 0.5,
	},
	"psychic": {
		"fighting": 2.0, "poison": 2.0, "psychic": 0.5, "dark": 0.0, "steel": 0.5,
	},
	"bug": {
		"fire": 0.5, "grass": 2.0, "fighting": 0.5, "poison": 0.5, "flying": 0.5, "psychic": 2.0, "ghost": 0.5, "dark": 2.0, "steel": 0.5, "fairy": 0.5,
	},
	"rock": {
		"fire": 2.0, "ice": 2.0, "fighting": 0.5, "ground": 0.5, "flying": 2.0, "bug": 2.0, "steel": 0.5,
	},
	"ghost": {
		"normal": 0.0, "psychic": 2.0, "ghost": 2.0, "dark": 0.5,
	},
	"dragon": {
		"dragon": 2.0, "steel": 0.5, "fairy": 0.0,
	},
	"dark": {
		"fighting": 0.5, "psychic": 2.0, "ghost": 2.0, "dark": 0.5, "fairy": 0.5,
	},
	"steel": {
		"fire": 0.5, "water": 0.5, "electric": 0.5, "ice": 2.0, "rock": 2.0, "steel": 0.5, "fairy": 2.0,
	},
	"fairy": {
		"fire": 0.5, "fighting": 2.0, "poison": 0.5, "dragon": 2.0, "dark": 2.0, "steel": 0.5,
	},
}

// TypeMultiplier compounds the move type's effectiveness against every type
// the defender carries. Legendary and mythical attackers hit twice as hard.
func TypeMultiplier(moveType string, defenderTypes []string, attacker *Card) float64 {
	multiplier := 1.0

	if effectiveness, exists := typeChart[strings.ToLower(moveType)]; exists {
		for _, defenderType := range defenderTypes {
			if m, ok := effectiveness[strings.ToLower(defenderType)]; ok {
				multiplier *= m
			}
		}
	}

	if attacker.IsLegendary || attacker.IsMythical {
		multiplier *= 2.0
	}

	return multiplier
}

// Damage computes one attack's damage before the defender's Defense stat is
// subtracted. When the defender is defending the 0.25x multiplier applies;
// the Defense subtraction stays with the caller so it can announce a full
// block.
func Damage(attacker, defender *Card, defenderDefending bool, moveIdx int) int {
	if moveIdx < 0 || moveIdx >= len(attacker.Moves) {
		return 0
	}
	move := attacker.Moves[moveIdx]

	percent := rollDamagePercent(attacker.Attack)
	dmg := int(float64(move.Power) * percent)

	dmg = int(float64(dmg) * TypeMultiplier(move.Type, defender.Types, attacker))

	if defenderDefending {
		dmg = int(float64(dmg) * 0.25)
	}
	return dmg
}
