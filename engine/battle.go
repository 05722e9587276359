package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pokearena/client/game/core"
)

// sacrificeStep returns the HP price and stamina gain (as a fraction of max
// stamina) for a card's next sacrifice, or ok=false when the card has used
// them all up.
func sacrificeStep(count int) (hpCost int, staminaGain float64, ok bool) {
	switch count {
	case 0:
		return 10, 0.5, true
	case 1:
		return 15, 0.25, true
	case 2:
		return 20, 0.15, true
	}
	return 0, 0, false
}

// NewBattle validates the decks and opens a battle. The player always moves
// first on turn 1.
func NewBattle(mode string, playerDeck, aiDeck []Card) (*Battle, error) {
	if mode != ModeOneOnOne && mode != ModeFiveOnFive {
		return nil, fmt.Errorf("invalid battle mode: %s", mode)
	}

	if mode == ModeOneOnOne && (len(playerDeck) < 1 || len(aiDeck) < 1) {
		return nil, fmt.Errorf("1v1 mode requires at least 1 card per side")
	}
	if mode == ModeFiveOnFive && (len(playerDeck) != 5 || len(aiDeck) != 5) {
		return nil, fmt.Errorf("5v5 mode requires exactly 5 cards per side")
	}

	now := time.Now()
	battle := &Battle{
		ID:              uuid.New().String(),
		Mode:            mode,
		PlayerDeck:      playerDeck,
		AIDeck:          aiDeck,
		PlayerActiveIdx: 0,
		AIActiveIdx:     0,
		TurnNumber:      1,
		RoundNumber:     1,
		WhoseTurn:       "player",
		SacrificeCount:  make(map[int]int),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	log.Info().Str("battleId", battle.ID).Str("mode", mode).Msg("battle opened")
	return battle, nil
}

// ProcessMove runs one player action through a full turn: validation, the
// AI's answering move, simultaneous resolution, knockout handling and the
// battle-end check. Returns the turn's narrative log.
func (b *Battle) ProcessMove(move string, moveIdx *int) ([]string, error) {
	if b.BattleOver {
		return nil, fmt.Errorf("battle is already over")
	}
	b.UpdatedAt = time.Now()

	logEntries := []string{}

	playerCard := b.ActivePlayerCard()
	aiCard := b.ActiveAICard()

	if move == MoveSurrender {
		return b.processSurrender(), nil
	}

	if playerCard == nil || aiCard == nil {
		return nil, fmt.Errorf("invalid active card")
	}

	// Sacrifice is a free action: it resolves immediately and does not hand
	// the turn over.
	if move == MoveSacrifice {
		entry, err := b.processSacrifice(playerCard, b.PlayerActiveIdx, "Player")
		if err != nil {
			return nil, err
		}
		return []string{entry}, nil
	}

	if b.WhoseTurn != "player" {
		return nil, fmt.Errorf("it's not player's turn")
	}

	switch move {
	case MoveAttack:
		if moveIdx == nil {
			return nil, fmt.Errorf("move index required for attack")
		}
		if *moveIdx < 0 || *moveIdx >= len(playerCard.Moves) {
			return nil, fmt.Errorf("invalid move index")
		}
		if playerCard.Stamina < playerCard.Moves[*moveIdx].StaminaCost {
			return nil, fmt.Errorf("insufficient stamina for this move")
		}
	case MoveDefend:
		if playerCard.Stamina < core.DefendCost(playerCard.HPMax) {
			return nil, fmt.Errorf("insufficient stamina to defend")
		}
	case MovePass:
	default:
		return nil, fmt.Errorf("unknown move: %s", move)
	}

	b.pendingPlayerMove = move
	if moveIdx != nil {
		b.pendingPlayerMoveIdx = *moveIdx
	}

	if move == MoveAttack {
		logEntries = append(logEntries, fmt.Sprintf("Player chose to attack with %s.", playerCard.Moves[*moveIdx].Name))
	} else {
		logEntries = append(logEntries, fmt.Sprintf("Player chose %s.", move))
	}

	logEntries = append(logEntries, b.processAIMove()...)

	if !b.BattleOver {
		logEntries = append(logEntries, b.resolveTurn()...)
		logEntries = append(logEntries, b.handleKnockouts()...)
		b.CheckBattleEnd()
	}

	if !b.BattleOver {
		b.TurnNumber++
		b.WhoseTurn = "player"
		b.pendingPlayerMove = ""
		b.pendingPlayerMoveIdx = 0
		b.pendingAIMove = ""
		b.pendingAIMoveIdx = 0
	}

	return logEntries, nil
}

func (b *Battle) processSurrender() []string {
	logEntries := []string{}
	playerCard := b.ActivePlayerCard()

	if b.Mode == ModeOneOnOne {
		b.BattleOver = true
		b.Winner = "ai"
		return append(logEntries, "Player surrendered! AI wins the battle!")
	}

	// In 5v5 surrender only forfeits the active card.
	if playerCard != nil {
		playerCard.HP = 0
		playerCard.IsKnockedOut = true
		logEntries = append(logEntries, fmt.Sprintf("Player surrendered! %s was knocked out!", playerCard.Name))
	}

	if !b.HasPlayerCardAlive() {
		b.BattleOver = true
		b.Winner = "ai"
		return append(logEntries, "Player has no cards left! AI wins the battle!")
	}

	for i := range b.PlayerDeck {
		if b.PlayerDeck[i].HP > 0 && i != b.PlayerActiveIdx {
			b.PlayerActiveIdx = i
			b.RoundNumber++
			logEntries = append(logEntries, fmt.Sprintf("Player must switch to another card. Round %d begins.", b.RoundNumber))
			break
		}
	}
	return logEntries
}

func (b *Battle) processSacrifice(card *Card, deckIdx int, who string) (string, error) {
	count := b.SacrificeCount[deckIdx]
	hpCost, staminaGain, ok := sacrificeStep(count)
	if !ok {
		return "", fmt.Errorf("maximum sacrifices reached for this card")
	}

	if card.HP <= hpCost {
		return "", fmt.Errorf("insufficient HP to sacrifice")
	}

	maxStamina := card.Speed * 2
	if float64(card.Stamina) >= 0.5*float64(maxStamina) {
		return "", fmt.Errorf("stamina is already above 50%%")
	}

	oldHP := card.HP
	oldStamina := card.Stamina

	card.HP -= hpCost
	card.Stamina += int(float64(maxStamina) * staminaGain)
	if card.Stamina > maxStamina {
		card.Stamina = maxStamina
	}
	b.SacrificeCount[deckIdx] = count + 1

	return fmt.Sprintf("%s sacrificed %d HP and gained %d stamina.", who, oldHP-card.HP, card.Stamina-oldStamina), nil
}

// processAIMove lets the AI answer the player's pending move. Sacrifices are
// free actions for the AI too, so it may chain them before committing.
func (b *Battle) processAIMove() []string {
	logEntries := []string{}
	aiCard := b.ActiveAICard()
	if aiCard == nil {
		return logEntries
	}

	if switchNow, idx := b.aiShouldSwitch(); switchNow {
		b.AIActiveIdx = idx
		aiCard = b.ActiveAICard()
		logEntries = append(logEntries, fmt.Sprintf("AI switched to %s.", aiCard.Name))
	}

	for {
		aiMove, aiMoveIdx := b.chooseAIMove()

		if aiMove == MoveSurrender {
			logEntries = append(logEntries, b.processAISurrender(aiCard)...)
			return logEntries
		}

		if aiMove == MoveSacrifice {
			entry, err := b.processSacrifice(aiCard, b.AIActiveIdx, "AI")
			if err != nil {
				// schedule exhausted or price unaffordable, fall through to a
				// regular move
				log.Debug().Err(err).Msg("ai sacrifice no longer possible")
				continue
			}
			logEntries = append(logEntries, entry)
			continue
		}

		b.pendingAIMove = aiMove
		b.pendingAIMoveIdx = aiMoveIdx

		if aiMove == MoveAttack {
			logEntries = append(logEntries, fmt.Sprintf("AI chose to attack with %s.", aiCard.Moves[aiMoveIdx].Name))
		} else {
			logEntries = append(logEntries, fmt.Sprintf("AI chose %s.", aiMove))
		}
		return logEntries
	}
}

func (b *Battle) processAISurrender(aiCard *Card) []string {
	logEntries := []string{}

	if b.Mode == ModeOneOnOne {
		b.BattleOver = true
		b.Winner = "player"
		return append(logEntries, "AI surrendered! Player wins the battle!")
	}

	aiCard.HP = 0
	aiCard.IsKnockedOut = true
	logEntries = append(logEntries, fmt.Sprintf("AI surrendered! %s was knocked out!", aiCard.Name))

	if !b.HasAICardAlive() {
		b.BattleOver = true
		b.Winner = "player"
		return append(logEntries, "AI has no cards left! Player wins the battle!")
	}

	for i := range b.AIDeck {
		if b.AIDeck[i].HP > 0 && i != b.AIActiveIdx {
			b.AIActiveIdx = i
			logEntries = append(logEntries, fmt.Sprintf("AI switched to %s.", b.AIDeck[i].Name))
			break
		}
	}
	return logEntries
}

// resolveTurn applies the player and AI pending moves simultaneously.
func (b *Battle) resolveTurn() []string {
	logEntries := []string{}

	playerCard := b.ActivePlayerCard()
	aiCard := b.ActiveAICard()
	if playerCard == nil || aiCard == nil {
		return logEntries
	}

	playerMove := b.pendingPlayerMove
	aiMove := b.pendingAIMove
	playerDefendCost := core.DefendCost(playerCard.HPMax)
	aiDefendCost := core.DefendCost(aiCard.HPMax)

	switch {
	case playerMove == MovePass && aiMove == MovePass:
		b.ConsecutivePasses++
		logEntries = append(logEntries, fmt.Sprintf("Both passed. Nothing happened! (Pass count: %d/3)", b.ConsecutivePasses))
		if b.ConsecutivePasses >= 3 {
			b.BattleOver = true
			b.Winner = "draw"
			logEntries = append(logEntries, "Stalemate! Both players passed 3 times in a row. Battle ends in a draw!")
		}
		return logEntries

	case playerMove == MovePass:
		b.ConsecutivePasses = 0
		switch aiMove {
		case MoveAttack:
			dmg := Damage(aiCard, playerCard, false, b.pendingAIMoveIdx)
			playerCard.HP -= dmg
			aiCard.Stamina -= aiCard.Moves[b.pendingAIMoveIdx].StaminaCost
			logEntries = append(logEntries, fmt.Sprintf("AI dealt %d damage to Player.", dmg))
		case MoveDefend:
			aiCard.Stamina -= aiDefendCost
		}

	case aiMove == MovePass:
		b.ConsecutivePasses = 0
		switch playerMove {
		case MoveAttack:
			dmg := Damage(playerCard, aiCard, false, b.pendingPlayerMoveIdx)
			aiCard.HP -= dmg
			playerCard.Stamina -= playerCard.Moves[b.pendingPlayerMoveIdx].StaminaCost
			logEntries = append(logEntries, fmt.Sprintf("Player dealt %d damage to AI.", dmg))
		case MoveDefend:
			playerCard.Stamina -= playerDefendCost
		}

	case playerMove == MoveAttack && aiMove == MoveAttack:
		b.ConsecutivePasses = 0
		playerDmg := Damage(playerCard, aiCard, false, b.pendingPlayerMoveIdx)
		aiDmg := Damage(aiCard, playerCard, false, b.pendingAIMoveIdx)
		aiCard.HP -= playerDmg
		playerCard.HP -= aiDmg
		playerCard.Stamina -= playerCard.Moves[b.pendingPlayerMoveIdx].StaminaCost
		aiCard.Stamina -= aiCard.Moves[b.pendingAIMoveIdx].StaminaCost
		logEntries = append(logEntries, fmt.Sprintf("Player dealt %d damage to AI.", playerDmg))
		logEntries = append(logEntries, fmt.Sprintf("AI dealt %d damage to Player.", aiDmg))

	case playerMove == MoveAttack && aiMove == MoveDefend:
		b.ConsecutivePasses = 0
		playerDmg := Damage(playerCard, aiCard, true, b.pendingPlayerMoveIdx)
		aiCard.Stamina -= aiDefendCost
		playerCard.Stamina -= playerCard.Moves[b.pendingPlayerMoveIdx].StaminaCost
		if playerDmg <= aiCard.Defense {
			logEntries = append(logEntries, "AI blocked all damage!")
		} else {
			actual := playerDmg - aiCard.Defense
			aiCard.HP -= actual
			logEntries = append(logEntries, fmt.Sprintf("Player dealt %d damage to AI (after defense).", actual))
		}

	case playerMove == MoveDefend && aiMove == MoveAttack:
		b.ConsecutivePasses = 0
		aiDmg := Damage(aiCard, playerCard, true, b.pendingAIMoveIdx)
		playerCard.Stamina -= playerDefendCost
		aiCard.Stamina -= aiCard.Moves[b.pendingAIMoveIdx].StaminaCost
		if aiDmg <= playerCard.Defense {
			logEntries = append(logEntries, "Player blocked all damage!")
		} else {
			actual := aiDmg - playerCard.Defense
			playerCard.HP -= actual
			logEntries = append(logEntries, fmt.Sprintf("AI dealt %d damage to Player (after defense).", actual))
		}

	case playerMove == MoveDefend && aiMove == MoveDefend:
		b.ConsecutivePasses = 0
		playerCard.Stamina -= playerDefendCost
		aiCard.Stamina -= aiDefendCost
		logEntries = append(logEntries, "Both defended. No damage dealt.")
	}

	clampCard(playerCard)
	clampCard(aiCard)

	return logEntries
}

func clampCard(card *Card) {
	if card.HP < 0 {
		card.HP = 0
	}
	if card.Stamina < 0 {
		card.Stamina = 0
	}
	card.IsKnockedOut = card.HP <= 0
}

// handleKnockouts announces knockouts and, in 5v5, advances both sides to
// their next living card.
func (b *Battle) handleKnockouts() []string {
	logEntries := []string{}

	playerCard := b.ActivePlayerCard()
	aiCard := b.ActiveAICard()
	if playerCard == nil || aiCard == nil {
		return logEntries
	}

	playerKO := playerCard.HP <= 0
	aiKO := aiCard.HP <= 0

	if playerKO {
		playerCard.IsKnockedOut = true
		logEntries = append(logEntries, fmt.Sprintf("Player's %s was knocked out!", playerCard.Name))
	}
	if aiKO {
		aiCard.IsKnockedOut = true
		logEntries = append(logEntries, fmt.Sprintf("AI's %s was knocked out!", aiCard.Name))
	}

	if b.Mode == ModeOneOnOne {
		return logEntries
	}

	if playerKO && b.HasPlayerCardAlive() {
		for i := range b.PlayerDeck {
			if b.PlayerDeck[i].HP > 0 && i != b.PlayerActiveIdx {
				b.PlayerActiveIdx = i
				b.RoundNumber++
				logEntries = append(logEntries, fmt.Sprintf("Player must switch to another card. Round %d begins.", b.RoundNumber))
				break
			}
		}
	}

	if aiKO && b.HasAICardAlive() {
		for i := range b.AIDeck {
			if b.AIDeck[i].HP > 0 && i != b.AIActiveIdx {
				b.AIActiveIdx = i
				logEntries = append(logEntries, fmt.Sprintf("AI switched to %s.", b.AIDeck[i].Name))
				break
			}
		}
	}

	return logEntries
}

// SwitchActive moves the player to another living card. 5v5 only.
func (b *Battle) SwitchActive(newIdx int) error {
	if b.BattleOver {
		return fmt.Errorf("battle is already over")
	}
	if b.Mode != ModeFiveOnFive {
		return fmt.Errorf("switching is only allowed in 5v5 battles")
	}
	if newIdx < 0 || newIdx >= len(b.PlayerDeck) {
		return fmt.Errorf("invalid card index")
	}
	if newIdx == b.PlayerActiveIdx {
		return fmt.Errorf("card is already active")
	}
	if b.PlayerDeck[newIdx].HP <= 0 {
		return fmt.Errorf("cannot switch to a knocked out card")
	}

	b.PlayerActiveIdx = newIdx
	b.RoundNumber++
	b.UpdatedAt = time.Now()
	return nil
}
