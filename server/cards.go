package main

import (
	"math/rand/v2"

	"pokearena/engine"
)

// cardPool is the built-in card set the practice server deals from. Stats sit
// in the ranges the damage tables were tuned for.
var cardPool = []engine.Card{
	{
		Name: "pikachu", HP: 90, HPMax: 90, Stamina: 180, StaminaMax: 180,
		Attack: 55, Defense: 40, Speed: 90, Types: []string{"electric"},
		Moves: []engine.Move{
			{Name: "thunder-shock", Power: 40, StaminaCost: 10, Type: "electric"},
			{Name: "thunderbolt", Power: 90, StaminaCost: 25, Type: "electric"},
			{Name: "quick-attack", Power: 40, StaminaCost: 8, Type: "normal"},
		},
	},
	{
		Name: "charizard", HP: 156, HPMax: 156, Stamina: 200, StaminaMax: 200,
		Attack: 84, Defense: 78, Speed: 100, Types: []string{"fire", "flying"},
		Moves: []engine.Move{
			{Name: "flamethrower", Power: 90, StaminaCost: 25, Type: "fire"},
			{Name: "wing-attack", Power: 60, StaminaCost: 15, Type: "flying"},
			{Name: "fire-blast", Power: 110, StaminaCost: 35, Type: "fire"},
		},
	},
	{
		Name: "blastoise", HP: 158, HPMax: 158, Stamina: 156, StaminaMax: 156,
		Attack: 83, Defense: 100, Speed: 78, Types: []string{"water"},
		Moves: []engine.Move{
			{Name: "water-gun", Power: 40, StaminaCost: 10, Type: "water"},
			{Name: "hydro-pump", Power: 110, StaminaCost: 35, Type: "water"},
			{Name: "bite", Power: 60, StaminaCost: 15, Type: "dark"},
		},
	},
	{
		Name: "venusaur", HP: 160, HPMax: 160, Stamina: 160, StaminaMax: 160,
		Attack: 82, Defense: 83, Speed: 80, Types: []string{"grass", "poison"},
		Moves: []engine.Move{
			{Name: "vine-whip", Power: 45, StaminaCost: 10, Type: "grass"},
			{Name: "razor-leaf", Power: 55, StaminaCost: 14, Type: "grass"},
			{Name: "solar-beam", Power: 120, StaminaCost: 40, Type: "grass"},
		},
	},
	{
		Name: "snorlax", HP: 240, HPMax: 240, Stamina: 60, StaminaMax: 60,
		Attack: 110, Defense: 65, Speed: 30, Types: []string{"normal"},
		Moves: []engine.Move{
			{Name: "body-slam", Power: 85, StaminaCost: 22, Type: "normal"},
			{Name: "hyper-beam", Power: 150, StaminaCost: 50, Type: "normal"},
		},
	},
	{
		Name: "gengar", HP: 120, HPMax: 120, Stamina: 220, StaminaMax: 220,
		Attack: 65, Defense: 60, Speed: 110, Types: []string{"ghost", "poison"},
		Moves: []engine.Move{
			{Name: "shadow-ball", Power: 80, StaminaCost: 20, Type: "ghost"},
			{Name: "sludge-bomb", Power: 90, StaminaCost: 25, Type: "poison"},
			{Name: "lick", Power: 30, StaminaCost: 6, Type: "ghost"},
		},
	},
	{
		Name: "machamp", HP: 180, HPMax: 180, Stamina: 110, StaminaMax: 110,
		Attack: 130, Defense: 80, Speed: 55, Types: []string{"fighting"},
		Moves: []engine.Move{
			{Name: "karate-chop", Power: 50, StaminaCost: 12, Type: "fighting"},
			{Name: "cross-chop", Power: 100, StaminaCost: 30, Type: "fighting"},
		},
	},
	{
		Name: "alakazam", HP: 110, HPMax: 110, Stamina: 240, StaminaMax: 240,
		Attack: 50, Defense: 45, Speed: 120, Types: []string{"psychic"},
		Moves: []engine.Move{
			{Name: "confusion", Power: 50, StaminaCost: 12, Type: "psychic"},
			{Name: "psychic", Power: 90, StaminaCost: 25, Type: "psychic"},
			{Name: "psybeam", Power: 65, StaminaCost: 16, Type: "psychic"},
		},
	},
	{
		Name: "golem", HP: 160, HPMax: 160, Stamina: 90, StaminaMax: 90,
		Attack: 120, Defense: 130, Speed: 45, Types: []string{"rock", "ground"},
		Moves: []engine.Move{
			{Name: "rock-throw", Power: 50, StaminaCost: 12, Type: "rock"},
			{Name: "earthquake", Power: 100, StaminaCost: 30, Type: "ground"},
		},
	},
	{
		Name: "lapras", HP: 260, HPMax: 260, Stamina: 120, StaminaMax: 120,
		Attack: 85, Defense: 80, Speed: 60, Types: []string{"water", "ice"},
		Moves: []engine.Move{
			{Name: "surf", Power: 90, StaminaCost: 25, Type: "water"},
			{Name: "ice-beam", Power: 90, StaminaCost: 25, Type: "ice"},
			{Name: "body-slam", Power: 85, StaminaCost: 22, Type: "normal"},
		},
	},
	{
		Name: "mewtwo", HP: 212, HPMax: 212, Stamina: 260, StaminaMax: 260,
		Attack: 110, Defense: 90, Speed: 130, Types: []string{"psychic"},
		Moves: []engine.Move{
			{Name: "psystrike", Power: 100, StaminaCost: 30, Type: "psychic"},
			{Name: "aura-sphere", Power: 80, StaminaCost: 20, Type: "fighting"},
		},
		IsLegendary: true,
	},
	{
		Name: "mew", HP: 200, HPMax: 200, Stamina: 200, StaminaMax: 200,
		Attack: 100, Defense: 100, Speed: 100, Types: []string{"psychic"},
		Moves: []engine.Move{
			{Name: "psychic", Power: 90, StaminaCost: 25, Type: "psychic"},
			{Name: "ancient-power", Power: 60, StaminaCost: 15, Type: "rock"},
		},
		IsMythical: true,
	},
}

// legendary and mythical cards stay rare in dealt decks
const rarePoolChance = 0.05

// dealDeck draws n distinct cards, mostly from the common pool. Card IDs are
// assigned from the given base so both sides of a battle stay unique.
func dealDeck(rng *rand.Rand, n, idBase int) []engine.Card {
	common := make([]int, 0, len(cardPool))
	rare := make([]int, 0, 2)
	for i := range cardPool {
		if cardPool[i].IsLegendary || cardPool[i].IsMythical {
			rare = append(rare, i)
		} else {
			common = append(common, i)
		}
	}

	picked := map[int]bool{}
	deck := make([]engine.Card, 0, n)
	for len(deck) < n {
		var idx int
		if len(rare) > 0 && rng.Float64() < rarePoolChance {
			idx = rare[rng.IntN(len(rare))]
		} else {
			idx = common[rng.IntN(len(common))]
		}
		if picked[idx] && len(picked) < len(cardPool) {
			continue
		}
		picked[idx] = true

		card := cardPool[idx]
		card.Types = append([]string(nil), card.Types...)
		card.Moves = append([]engine.Move(nil), card.Moves...)
		card.CardID = idBase + len(deck)
		card.Level = 1
		deck = append(deck, card)
	}
	return deck
}

// rosterFor derives roster records from a dealt deck so XP and level-ups can
// be applied after the battle.
func rosterFor(deck []engine.Card) []*engine.RosterCard {
	roster := make([]*engine.RosterCard, 0, len(deck))
	for i := range deck {
		card := &deck[i]
		roster = append(roster, &engine.RosterCard{
			CardID:      card.CardID,
			PokemonName: card.Name,
			Level:       card.Level,
			XP:          card.XP,
			BaseHP:      card.HPMax,
			BaseAttack:  card.Attack,
			BaseDefense: card.Defense,
			BaseSpeed:   card.Speed,
		})
	}
	return roster
}
