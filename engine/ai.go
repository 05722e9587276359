package engine

import (
	"pokearena/client/game/core"
)

type aiDecision struct {
	move    string
	moveIdx int
	score   float64
}

// chooseAIMove scores every action the AI can afford against the player's
// pending move and returns the best one. Sacrifice and surrender only come up
// when the AI can neither attack nor defend.
func (b *Battle) chooseAIMove() (string, int) {
	aiCard := b.ActiveAICard()
	playerCard := b.ActivePlayerCard()
	if aiCard == nil || playerCard == nil {
		return MovePass, 0
	}

	playerMove := b.pendingPlayerMove
	maxStamina := aiCard.Speed * 2
	hpPercent := float64(aiCard.HP) / float64(aiCard.HPMax)

	affordableMoves := []int{}
	for i, move := range aiCard.Moves {
		if aiCard.Stamina >= move.StaminaCost {
			affordableMoves = append(affordableMoves, i)
		}
	}
	canAttack := len(affordableMoves) > 0
	canDefend := aiCard.Stamina >= core.DefendCost(aiCard.HPMax)

	if !canAttack && !canDefend {
		sacrificeCount := b.SacrificeCount[b.AIActiveIdx]
		hpCost, _, scheduleLeft := sacrificeStep(sacrificeCount)
		if scheduleLeft && float64(aiCard.Stamina) < 0.5*float64(maxStamina) && aiCard.HP > hpCost {
			return MoveSacrifice, 0
		}

		if b.Mode == ModeOneOnOne {
			if hpPercent < 0.1 && aiCard.Stamina == 0 && battleRNG.Float64() < 0.3 {
				return MoveSurrender, 0
			}
		} else {
			// Strategic retreat: forfeit a spent card when a much healthier
			// one waits on the bench.
			hasStrongerCard := false
			for i, card := range b.AIDeck {
				if i != b.AIActiveIdx && card.HP > 0 {
					if float64(card.HP)/float64(card.HPMax) > hpPercent+0.3 {
						hasStrongerCard = true
						break
					}
				}
			}
			if hpPercent < 0.25 && hasStrongerCard && aiCard.Stamina < maxStamina/4 {
				if battleRNG.Float64() < 0.4 {
					return MoveSurrender, 0
				}
			}
		}

		return MovePass, 0
	}

	decisions := []aiDecision{{move: MovePass, score: 0.1}}

	for _, moveIdx := range affordableMoves {
		decisions = append(decisions, aiDecision{
			move:    MoveAttack,
			moveIdx: moveIdx,
			score:   scoreAttack(aiCard, playerCard, moveIdx, playerMove, hpPercent),
		})
	}

	if canDefend {
		decisions = append(decisions, aiDecision{
			move:  MoveDefend,
			score: scoreDefend(aiCard, playerCard, playerMove, hpPercent),
		})
	}

	best := decisions[0]
	for _, d := range decisions {
		if d.score > best.score {
			best = d
		}
	}
	return best.move, best.moveIdx
}

func scoreAttack(aiCard, playerCard *Card, moveIdx int, playerMove string, hpPercent float64) float64 {
	move := aiCard.Moves[moveIdx]
	score := float64(move.Power) / 100.0

	typeMultiplier := typeEffectiveness(move.Type, playerCard.Types)
	if typeMultiplier > 1.0 {
		score += 0.6 * (typeMultiplier - 1.0)
	} else if typeMultiplier < 1.0 {
		score -= 0.3 * (1.0 - typeMultiplier)
	}

	switch playerMove {
	case MoveDefend:
		if move.Power >= 80 {
			score += 0.4
		}
	case MoveAttack:
		score -= 0.2
	case MovePass:
		score += 0.5
	}

	if move.StaminaCost > 0 {
		score += float64(move.Power) / float64(move.StaminaCost) * 0.1
	}

	if hpPercent < 0.3 {
		score += 0.3
	}

	return score
}

func scoreDefend(aiCard, playerCard *Card, playerMove string, hpPercent float64) float64 {
	score := 0.0

	if playerMove == MoveAttack {
		score += 0.7
		for _, pMove := range playerCard.Moves {
			if typeEffectiveness(pMove.Type, aiCard.Types) > 1.0 {
				score += 0.3
				break
			}
		}
	}

	if playerMove == MoveDefend || playerMove == MovePass {
		score -= 0.5
	}

	if hpPercent < 0.3 {
		score += 0.4
	} else if hpPercent > 0.7 {
		score -= 0.2
	}

	return score
}

// typeEffectiveness is TypeMultiplier without the legendary bonus; the AI
// cares about matchups, not pedigree.
func typeEffectiveness(moveType string, defenderTypes []string) float64 {
	neutral := &Card{}
	return TypeMultiplier(moveType, defenderTypes, neutral)
}

// aiShouldSwitch recommends a bench card when the active one is low on HP or
// stamina. 5v5 only.
func (b *Battle) aiShouldSwitch() (bool, int) {
	if b.Mode != ModeFiveOnFive {
		return false, -1
	}

	aiCard := b.ActiveAICard()
	if aiCard == nil || aiCard.HP <= 0 {
		for i := range b.AIDeck {
			if b.AIDeck[i].HP > 0 && i != b.AIActiveIdx {
				return true, i
			}
		}
		return false, -1
	}

	hpPercent := float64(aiCard.HP) / float64(aiCard.HPMax)
	staminaPercent := float64(aiCard.Stamina) / float64(aiCard.StaminaMax)
	if hpPercent >= 0.3 && staminaPercent >= 0.3 {
		return false, -1
	}

	bestIdx := -1
	bestScore := hpPercent + staminaPercent
	for i := range b.AIDeck {
		card := &b.AIDeck[i]
		if card.HP > 0 && i != b.AIActiveIdx && card.HPMax > 0 && card.StaminaMax > 0 {
			score := float64(card.HP)/float64(card.HPMax) + float64(card.Stamina)/float64(card.StaminaMax)
			if score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}
	}

	if bestIdx != -1 {
		return true, bestIdx
	}
	return false, -1
}
