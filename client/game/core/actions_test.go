package core

import (
	"slices"
	"testing"
)

func testState() *BattleState {
	return &BattleState{
		BattleID: "test-battle",
		Mode:     ModeOneOnOne,
		PlayerDeck: []Combatant{
			{
				Name:    "pikachu",
				HP:      35,
				HPMax:   35,
				Stamina: 5,
				Moves: []Move{
					{Name: "thunder-shock", StaminaCost: 3},
					{Name: "thunderbolt", StaminaCost: 10},
				},
			},
		},
		AIDeck:     []Combatant{{Name: "rattata", HP: 30, HPMax: 30}},
		TurnNumber: 1,
		WhoseTurn:  TurnPlayer,
	}
}

func TestCostFormulas(t *testing.T) {
	if cost := DefendCost(101); cost != 51 {
		t.Fatalf("Incorrect defend cost for hpMax 101. Wanted 51, got %d", cost)
	}

	if cost := SacrificeCost(101); cost != 25 {
		t.Fatalf("Incorrect sacrifice cost for hpMax 101. Wanted 25, got %d", cost)
	}
}

func TestStaminaGating(t *testing.T) {
	state := testState()

	actions := LegalActions(state)
	if !slices.Contains(actions, ActionAttack) {
		t.Fatalf("Attack should be legal with an affordable move. Actions: %v", actions)
	}

	selectable := SelectableMoves(state.ActivePlayerCard())
	if !slices.Equal(selectable, []int{0}) {
		t.Fatalf("Only the 3-cost move should be selectable with 5 stamina. Got %v", selectable)
	}
}

func TestCanSubmitTruthTable(t *testing.T) {
	cases := []struct {
		battleOver bool
		whoseTurn  TurnOwner
		want       bool
	}{
		{false, TurnPlayer, true},
		{false, TurnAI, false},
		{true, TurnPlayer, false},
		{true, TurnAI, false},
	}

	for _, c := range cases {
		state := testState()
		state.BattleOver = c.battleOver
		state.WhoseTurn = c.whoseTurn

		if got := CanSubmit(state); got != c.want {
			t.Fatalf("CanSubmit(over=%v, turn=%s): wanted %v, got %v", c.battleOver, c.whoseTurn, c.want, got)
		}
	}
}

func TestPassAndSurrenderAlwaysLegal(t *testing.T) {
	state := testState()
	// drain stamina so only the free actions remain
	state.PlayerDeck[0].Stamina = 0

	actions := LegalActions(state)
	if !slices.Contains(actions, ActionPass) || !slices.Contains(actions, ActionSurrender) {
		t.Fatalf("Pass and Surrender must stay legal while submitting is allowed. Actions: %v", actions)
	}
	if slices.Contains(actions, ActionDefend) || slices.Contains(actions, ActionSacrifice) {
		t.Fatalf("Defend and Sacrifice require stamina. Actions: %v", actions)
	}
}

func TestCanSwitch(t *testing.T) {
	state := testState()
	state.Mode = ModeFiveOnFive
	state.PlayerDeck = []Combatant{
		{Name: "a", HP: 10, HPMax: 10},
		{Name: "b", HP: 0, HPMax: 10, KnockedOut: true},
		{Name: "c", HP: 10, HPMax: 10},
	}

	if CanSwitch(state, 0) {
		t.Fatal("Switching to the active card should be rejected")
	}
	if CanSwitch(state, 1) {
		t.Fatal("Switching to a knocked-out card should be rejected")
	}
	if !CanSwitch(state, 2) {
		t.Fatal("Switching to a healthy benched card should be allowed")
	}
	if CanSwitch(state, 3) {
		t.Fatal("Out-of-range switch target should be rejected")
	}

	state.WhoseTurn = TurnAI
	if !CanSwitch(state, 2) {
		t.Fatal("Switches should not be gated on turn ownership by default")
	}

	SwitchRequiresTurn = true
	defer func() { SwitchRequiresTurn = false }()
	if CanSwitch(state, 2) {
		t.Fatal("SwitchRequiresTurn should gate switches on the player's turn")
	}

	state.BattleOver = true
	if CanSwitch(state, 2) {
		t.Fatal("No switching once the battle is over")
	}
}

func TestRewardSelectable(t *testing.T) {
	state := testState()
	state.Mode = ModeFiveOnFive
	state.BattleOver = true
	state.Winner = WinnerPlayer

	if !state.RewardSelectable() {
		t.Fatal("5v5 player win with unclaimed reward should offer selection")
	}

	state.RewardClaimed = true
	if state.RewardSelectable() {
		t.Fatal("Claimed reward should not be offered again")
	}

	state.RewardClaimed = false
	state.Winner = WinnerAI
	if state.RewardSelectable() {
		t.Fatal("Only a player win offers a reward round")
	}
}
