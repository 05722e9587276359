package session

import (
	"context"
	"errors"
	"testing"

	"pokearena/client/game/core"
)

// fakeAPI implements BattleAPI with swappable func fields.
type fakeAPI struct {
	startFunc        func(ctx context.Context, mode string) (map[string]any, error)
	submitMoveFunc   func(ctx context.Context, battleID, move string, moveIdx *int) (map[string]any, error)
	switchFunc       func(ctx context.Context, battleID string, newIdx int) (map[string]any, error)
	selectRewardFunc func(ctx context.Context, battleID string, pokemonIdx int) (map[string]any, error)
}

func (f *fakeAPI) StartBattle(ctx context.Context, mode string) (map[string]any, error) {
	return f.startFunc(ctx, mode)
}

func (f *fakeAPI) SubmitMove(ctx context.Context, battleID, move string, moveIdx *int) (map[string]any, error) {
	return f.submitMoveFunc(ctx, battleID, move, moveIdx)
}

func (f *fakeAPI) SwitchPokemon(ctx context.Context, battleID string, newIdx int) (map[string]any, error) {
	return f.switchFunc(ctx, battleID, newIdx)
}

func (f *fakeAPI) SelectReward(ctx context.Context, battleID string, pokemonIdx int) (map[string]any, error) {
	return f.selectRewardFunc(ctx, battleID, pokemonIdx)
}

func startResponse(id string) map[string]any {
	return map[string]any{
		"id":   id,
		"mode": "1v1",
		"player_deck": []any{
			map[string]any{
				"name": "pikachu", "hp": 35, "hp_max": 35, "stamina": 70,
				"moves": []any{map[string]any{"name": "thunder-shock", "power": 40, "stamina_cost": 10, "attack_type": "electric"}},
			},
		},
		"ai_deck": []any{
			map[string]any{"name": "rattata", "hp": 30, "hp_max": 30, "stamina": 60},
		},
		"turn_number": 1,
		"whose_turn":  "player",
		"log":         []any{"Battle started! Mode: 1v1"},
	}
}

func TestHappyPath1v1(t *testing.T) {
	api := &fakeAPI{
		startFunc: func(_ context.Context, mode string) (map[string]any, error) {
			if mode != "1v1" {
				t.Fatalf("wanted 1v1 start, got %s", mode)
			}
			return startResponse("b-1"), nil
		},
		submitMoveFunc: func(_ context.Context, battleID, move string, moveIdx *int) (map[string]any, error) {
			if battleID != "b-1" {
				t.Fatalf("move should carry the captured battle id, got %q", battleID)
			}
			if move != "attack" || moveIdx == nil || *moveIdx != 0 {
				t.Fatalf("unexpected move: %s %v", move, moveIdx)
			}
			// subsequent-turn responses omit the id
			resp := startResponse("")
			delete(resp, "id")
			resp["turn_number"] = 2
			resp["ai_deck"] = []any{map[string]any{"name": "rattata", "hp": 18, "hp_max": 30, "stamina": 60}}
			resp["log"] = []any{"Player chose to attack with thunder-shock.", "Player dealt 12 damage to AI."}
			return resp, nil
		},
	}

	ctrl := NewController(api)

	state, err := ctrl.Start(context.Background(), core.ModeOneOnOne)
	if err != nil {
		t.Fatalf("start failed: %s", err)
	}
	if len(state.PlayerDeck) != 1 || len(state.AIDeck) != 1 {
		t.Fatalf("1v1 should field one card per side: %+v", state)
	}
	if ctrl.Phase() != PhaseAwaitingPlayerAction {
		t.Fatalf("wanted awaiting-player-action, got %s", ctrl.Phase())
	}

	next, err := ctrl.SubmitMove(context.Background(), core.ActionAttack, 0)
	if err != nil {
		t.Fatalf("attack failed: %s", err)
	}
	if next.BattleID != "b-1" {
		t.Fatalf("battle id must survive an id-less response, got %q", next.BattleID)
	}
	if next.AIDeck[0].HP != 18 {
		t.Fatalf("new state should replace the old wholesale, got hp=%d", next.AIDeck[0].HP)
	}
	if len(next.Log) < 1 {
		t.Fatalf("log should carry the turn narrative, got %d entries", len(next.Log))
	}
}

func TestSubmitWithoutBattle(t *testing.T) {
	ctrl := NewController(&fakeAPI{})

	_, err := ctrl.SubmitMove(context.Background(), core.ActionPass, 0)
	if !errors.Is(err, ErrNoActiveBattle) {
		t.Fatalf("wanted ErrNoActiveBattle, got %v", err)
	}
}

func TestOverlappingRequestsRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	api := &fakeAPI{
		startFunc: func(_ context.Context, _ string) (map[string]any, error) {
			close(started)
			<-release
			return startResponse("b-2"), nil
		},
	}

	ctrl := NewController(api)

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Start(context.Background(), core.ModeOneOnOne)
		done <- err
	}()

	<-started
	if _, err := ctrl.Start(context.Background(), core.ModeOneOnOne); !errors.Is(err, ErrBattleBusy) {
		t.Fatalf("second start while one is pending should be busy, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first start should still succeed: %s", err)
	}
}

func TestMoveRejectionKeepsState(t *testing.T) {
	api := &fakeAPI{
		startFunc: func(_ context.Context, _ string) (map[string]any, error) {
			return startResponse("b-3"), nil
		},
		submitMoveFunc: func(_ context.Context, _, _ string, _ *int) (map[string]any, error) {
			return nil, errors.New("insufficient stamina for this move")
		},
	}

	ctrl := NewController(api)
	before, err := ctrl.Start(context.Background(), core.ModeOneOnOne)
	if err != nil {
		t.Fatalf("start failed: %s", err)
	}

	_, err = ctrl.SubmitMove(context.Background(), core.ActionAttack, 0)
	if !errors.Is(err, ErrMoveRejected) {
		t.Fatalf("wanted ErrMoveRejected, got %v", err)
	}

	if ctrl.State() != before {
		t.Fatal("held state must survive a rejected move untouched")
	}
	if ctrl.Phase() != PhaseAwaitingPlayerAction {
		t.Fatalf("player should be able to retry, got phase %s", ctrl.Phase())
	}
}

func TestMismatchedBattleIDDiscarded(t *testing.T) {
	api := &fakeAPI{
		startFunc: func(_ context.Context, _ string) (map[string]any, error) {
			return startResponse("b-4"), nil
		},
		submitMoveFunc: func(_ context.Context, _, _ string, _ *int) (map[string]any, error) {
			return startResponse("some-other-battle"), nil
		},
	}

	ctrl := NewController(api)
	if _, err := ctrl.Start(context.Background(), core.ModeOneOnOne); err != nil {
		t.Fatalf("start failed: %s", err)
	}

	_, err := ctrl.SubmitMove(context.Background(), core.ActionPass, 0)
	if !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("a response for another battle must be discarded, got %v", err)
	}
	if ctrl.State().BattleID != "b-4" {
		t.Fatalf("held state should still be the real battle, got %q", ctrl.State().BattleID)
	}
}

func TestAbandonRetiresInFlightResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	api := &fakeAPI{
		startFunc: func(_ context.Context, _ string) (map[string]any, error) {
			select {
			case <-started:
				// second start, after abandon
				return startResponse("b-new"), nil
			default:
			}
			close(started)
			<-release
			return startResponse("b-old"), nil
		},
	}

	ctrl := NewController(api)

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Start(context.Background(), core.ModeOneOnOne)
		done <- err
	}()

	<-started
	ctrl.Abandon()

	if _, err := ctrl.Start(context.Background(), core.ModeOneOnOne); err != nil {
		t.Fatalf("start after abandon failed: %s", err)
	}

	close(release)
	if err := <-done; !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("the abandoned battle's response must be discarded, got %v", err)
	}
	if ctrl.State().BattleID != "b-new" {
		t.Fatalf("the old response must not resurrect the abandoned battle, got %q", ctrl.State().BattleID)
	}
}

func wonFiveOnFiveResponse() map[string]any {
	return map[string]any{
		"id":   "b-5",
		"mode": "5v5",
		"player_deck": []any{
			map[string]any{"name": "a", "hp": 10, "hp_max": 30},
		},
		"ai_deck": []any{
			map[string]any{"name": "x", "hp": 0, "hp_max": 30, "is_knocked_out": true},
		},
		"whose_turn":   "player",
		"battle_over":  true,
		"winner":       "player",
		"coins_earned": 150,
		"xp_gains": []any{
			map[string]any{"card_id": 1, "pokemon_name": "a", "xp_gained": 15, "new_level": 2, "leveled_up": true},
		},
	}
}

func TestRewardFlow(t *testing.T) {
	claimCalls := 0
	api := &fakeAPI{
		startFunc: func(_ context.Context, _ string) (map[string]any, error) {
			return wonFiveOnFiveResponse(), nil
		},
		selectRewardFunc: func(_ context.Context, battleID string, pokemonIdx int) (map[string]any, error) {
			claimCalls++
			if battleID != "b-5" || pokemonIdx != 0 {
				t.Fatalf("unexpected claim: %s %d", battleID, pokemonIdx)
			}
			if claimCalls == 1 {
				return nil, errors.New("transient failure")
			}
			return map[string]any{"message": "Successfully added x to your collection!"}, nil
		},
	}

	ctrl := NewController(api)
	state, err := ctrl.Start(context.Background(), core.ModeFiveOnFive)
	if err != nil {
		t.Fatalf("start failed: %s", err)
	}

	if !state.RewardSelectable() {
		t.Fatalf("won 5v5 with rewards should offer selection: %+v", state)
	}
	if state.Rewards == nil || len(state.Rewards.XPDetails) == 0 {
		t.Fatalf("rewards should be populated: %+v", state.Rewards)
	}

	// first attempt fails: claim stays open
	if err := ctrl.SelectReward(context.Background(), 0); !errors.Is(err, ErrRewardClaimFailed) {
		t.Fatalf("wanted ErrRewardClaimFailed, got %v", err)
	}
	if ctrl.State().RewardClaimed {
		t.Fatal("a failed claim must leave RewardClaimed false")
	}

	// retry succeeds: claim closes
	if err := ctrl.SelectReward(context.Background(), 0); err != nil {
		t.Fatalf("second claim failed: %s", err)
	}
	if !ctrl.State().RewardClaimed {
		t.Fatal("a successful claim must set RewardClaimed")
	}
	if ctrl.State().RewardSelectable() {
		t.Fatal("reward must not be offered after a successful claim")
	}

	// claiming twice is rejected locally
	if err := ctrl.SelectReward(context.Background(), 0); !errors.Is(err, ErrRewardUnavailable) {
		t.Fatalf("wanted ErrRewardUnavailable, got %v", err)
	}
}

func TestIllegalSwitchSkipsRoundTrip(t *testing.T) {
	called := false
	api := &fakeAPI{
		startFunc: func(_ context.Context, _ string) (map[string]any, error) {
			resp := startResponse("b-6")
			resp["mode"] = "5v5"
			resp["player_deck"] = []any{
				map[string]any{"name": "a", "hp": 10, "hp_max": 10},
				map[string]any{"name": "b", "hp": 0, "hp_max": 10, "is_knocked_out": true},
			}
			return resp, nil
		},
		switchFunc: func(_ context.Context, _ string, _ int) (map[string]any, error) {
			called = true
			return nil, nil
		},
	}

	ctrl := NewController(api)
	if _, err := ctrl.Start(context.Background(), core.ModeFiveOnFive); err != nil {
		t.Fatalf("start failed: %s", err)
	}

	if _, err := ctrl.SwitchActive(context.Background(), 1); !errors.Is(err, ErrIllegalSwitch) {
		t.Fatalf("switch to a knocked-out card should fail locally, got %v", err)
	}
	if called {
		t.Fatal("an illegal switch must not reach the network")
	}
}
