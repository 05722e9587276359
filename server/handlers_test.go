package main

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"pokearena/client/networking"
	"pokearena/engine"
)

func postJSON(t *testing.T, ts *httptest.Server, path string, body map[string]any) (int, map[string]any) {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	decoded := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, decoded
}

func getJSON(t *testing.T, ts *httptest.Server, path string) (int, map[string]any) {
	t.Helper()

	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	decoded := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, decoded
}

func newTestServer(t *testing.T) (*handler, *httptest.Server) {
	t.Helper()
	h := newHandler()
	ts := httptest.NewServer(newRouter(h))
	t.Cleanup(ts.Close)
	return h, ts
}

func TestStartBattleModes(t *testing.T) {
	_, ts := newTestServer(t)

	status, body := postJSON(t, ts, "/api/battle/start", map[string]any{"mode": "1v1"})
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if body["id"] == "" || body["id"] == nil {
		t.Fatal("response missing battle id")
	}
	if body["whose_turn"] != "player" {
		t.Fatalf("whose_turn = %v, want player", body["whose_turn"])
	}
	playerDeck := body["player_deck"].([]any)
	if len(playerDeck) != 1 {
		t.Fatalf("1v1 deck size = %d", len(playerDeck))
	}

	status, body = postJSON(t, ts, "/api/battle/start", map[string]any{"mode": "2v2"})
	if status != http.StatusBadRequest {
		t.Fatalf("invalid mode status = %d", status)
	}
	envelope := body["error"].(map[string]any)
	if envelope["code"] != "INVALID_MODE" {
		t.Fatalf("error code = %v", envelope["code"])
	}
}

func TestFiveOnFiveHidesInactiveAICards(t *testing.T) {
	_, ts := newTestServer(t)

	status, body := postJSON(t, ts, "/api/battle/start", map[string]any{"mode": "5v5"})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}

	aiDeck := body["ai_deck"].([]any)
	if len(aiDeck) != 5 {
		t.Fatalf("ai deck size = %d", len(aiDeck))
	}

	activeIdx := int(body["ai_active_idx"].(float64))
	for i, raw := range aiDeck {
		card := raw.(map[string]any)
		if i == activeIdx {
			if card["is_face_down"] != false || card["name"] == nil {
				t.Fatalf("active ai card should be revealed: %v", card)
			}
			continue
		}
		if card["is_face_down"] != true {
			t.Fatalf("inactive ai card %d not face down: %v", i, card)
		}
		if _, leaked := card["name"]; leaked {
			t.Fatalf("face-down card leaks details: %v", card)
		}
	}
}

func TestMoveValidation(t *testing.T) {
	_, ts := newTestServer(t)

	status, body := postJSON(t, ts, "/api/battle/move", map[string]any{"battle_id": "", "move": "attack"})
	if status != http.StatusBadRequest {
		t.Fatalf("missing id status = %d", status)
	}

	status, body = postJSON(t, ts, "/api/battle/move", map[string]any{"battle_id": "x", "move": "dance"})
	if status != http.StatusBadRequest {
		t.Fatalf("bad move status = %d", status)
	}
	envelope := body["error"].(map[string]any)
	if envelope["code"] != "INVALID_MOVE" {
		t.Fatalf("error code = %v", envelope["code"])
	}

	status, _ = postJSON(t, ts, "/api/battle/move", map[string]any{"battle_id": "x", "move": "attack"})
	if status != http.StatusBadRequest {
		t.Fatalf("attack without idx status = %d", status)
	}

	status, _ = postJSON(t, ts, "/api/battle/move", map[string]any{"battle_id": "nope", "move": "pass"})
	if status != http.StatusNotFound {
		t.Fatalf("unknown battle status = %d", status)
	}
}

func TestPassRoundTripAdvancesTurn(t *testing.T) {
	_, ts := newTestServer(t)

	_, started := postJSON(t, ts, "/api/battle/start", map[string]any{"mode": "1v1"})
	battleID := started["id"].(string)

	status, body := postJSON(t, ts, "/api/battle/move", map[string]any{"battle_id": battleID, "move": "pass"})
	if status != http.StatusOK {
		t.Fatalf("pass status = %d, body = %v", status, body)
	}
	if body["id"] != battleID {
		t.Fatalf("id = %v, want %v", body["id"], battleID)
	}
	logEntries := body["log"].([]any)
	if len(logEntries) == 0 {
		t.Fatal("expected log entries from the round")
	}

	status, state := getJSON(t, ts, "/api/battle/state?battle_id="+battleID)
	if status != http.StatusOK {
		t.Fatalf("state status = %d", status)
	}
	if state["id"] != battleID {
		t.Fatalf("state id = %v", state["id"])
	}
}

func TestSurrenderPaysConsolationRewards(t *testing.T) {
	_, ts := newTestServer(t)

	_, started := postJSON(t, ts, "/api/battle/start", map[string]any{"mode": "1v1"})
	battleID := started["id"].(string)

	status, body := postJSON(t, ts, "/api/battle/move", map[string]any{"battle_id": battleID, "move": "surrender"})
	if status != http.StatusOK {
		t.Fatalf("surrender status = %d", status)
	}
	if body["battle_over"] != true || body["winner"] != "ai" {
		t.Fatalf("over=%v winner=%v", body["battle_over"], body["winner"])
	}
	if body["coins_earned"] != float64(10) {
		t.Fatalf("coins_earned = %v, want 10", body["coins_earned"])
	}
	gains := body["xp_gains"].([]any)
	if len(gains) != 1 {
		t.Fatalf("xp gains = %v", gains)
	}
	gain := gains[0].(map[string]any)
	if gain["xp_gained"] != float64(5) {
		t.Fatalf("loss xp = %v, want 5", gain["xp_gained"])
	}

	// The battle is over; further moves are rejected.
	status, _ = postJSON(t, ts, "/api/battle/move", map[string]any{"battle_id": battleID, "move": "pass"})
	if status != http.StatusBadRequest {
		t.Fatalf("post-battle move status = %d", status)
	}
}

func TestSelectRewardFlow(t *testing.T) {
	h, ts := newTestServer(t)

	_, started := postJSON(t, ts, "/api/battle/start", map[string]any{"mode": "5v5"})
	battleID := started["id"].(string)

	status, _ := postJSON(t, ts, "/api/battle/select-reward", map[string]any{"battle_id": battleID, "pokemon_index": 0})
	if status != http.StatusBadRequest {
		t.Fatalf("reward before battle end status = %d", status)
	}

	// Force a player win so the reward unlocks.
	h.mu.Lock()
	battle := h.sessions[battleID].battle
	battle.BattleOver = true
	battle.Winner = "player"
	h.mu.Unlock()

	status, _ = postJSON(t, ts, "/api/battle/select-reward", map[string]any{"battle_id": battleID, "pokemon_index": 9})
	if status != http.StatusBadRequest {
		t.Fatalf("bad index status = %d", status)
	}

	status, body := postJSON(t, ts, "/api/battle/select-reward", map[string]any{"battle_id": battleID, "pokemon_index": 2})
	if status != http.StatusOK {
		t.Fatalf("select reward status = %d, body = %v", status, body)
	}
	if body["message"] == nil || body["card"] == nil {
		t.Fatalf("missing message or card: %v", body)
	}
	card := body["card"].(map[string]any)
	if card["level"] != float64(1) {
		t.Fatalf("captured card level = %v, want 1", card["level"])
	}

	status, _ = postJSON(t, ts, "/api/battle/select-reward", map[string]any{"battle_id": battleID, "pokemon_index": 2})
	if status != http.StatusBadRequest {
		t.Fatalf("double claim status = %d", status)
	}
}

// The reward payload has to survive the trip through JSON and the client's
// normalizer with nothing coerced away, achievement ids included.
func TestRewardPayloadNormalizesIntact(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	battle, err := engine.NewBattle(engine.ModeFiveOnFive, dealDeck(rng, 5, 1), dealDeck(rng, 5, 101))
	if err != nil {
		t.Fatalf("NewBattle: %v", err)
	}
	battle.BattleOver = true
	battle.Winner = "player"
	battle.PlayerDeck[0].HP -= 10

	rewards := engine.CalculateRewards(battle, rosterFor(battle.PlayerDeck))
	if len(rewards.NewlyUnlockedAchievements) == 0 {
		t.Fatal("expected achievements from a flawless 5v5 win")
	}

	payload, err := json.Marshal(buildBattleResponse(battle, []string{"Player dealt 10 damage to AI."}, false, rewards))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded := map[string]any{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	state := networking.NormalizeBattleState(decoded, "")
	if state.BattleID != battle.ID {
		t.Fatalf("battle id = %q, want %q", state.BattleID, battle.ID)
	}
	if state.Rewards == nil {
		t.Fatal("rewards lost in normalization")
	}
	if state.Rewards.CoinsEarned != rewards.CoinsEarned {
		t.Fatalf("coins = %d, want %d", state.Rewards.CoinsEarned, rewards.CoinsEarned)
	}
	if len(state.Rewards.NewlyUnlockedAchievements) != len(rewards.NewlyUnlockedAchievements) {
		t.Fatalf("achievements = %d, want %d",
			len(state.Rewards.NewlyUnlockedAchievements), len(rewards.NewlyUnlockedAchievements))
	}
	for i, got := range state.Rewards.NewlyUnlockedAchievements {
		want := rewards.NewlyUnlockedAchievements[i]
		if got.ID != want.ID || got.Name != want.Name {
			t.Fatalf("achievement %d = %+v, want id=%d name=%q", i, got, want.ID, want.Name)
		}
		if got.ID == 0 {
			t.Fatalf("achievement %q lost its id", got.Name)
		}
	}
}

func TestSwitchEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	_, started := postJSON(t, ts, "/api/battle/start", map[string]any{"mode": "5v5"})
	battleID := started["id"].(string)

	status, body := postJSON(t, ts, "/api/battle/switch", map[string]any{"battle_id": battleID, "new_idx": 1})
	if status != http.StatusOK {
		t.Fatalf("switch status = %d, body = %v", status, body)
	}
	if body["player_active_idx"] != float64(1) {
		t.Fatalf("player_active_idx = %v, want 1", body["player_active_idx"])
	}
	if body["round_number"] != float64(2) {
		t.Fatalf("round_number = %v, want 2", body["round_number"])
	}

	status, _ = postJSON(t, ts, "/api/battle/switch", map[string]any{"battle_id": battleID, "new_idx": 1})
	if status != http.StatusBadRequest {
		t.Fatalf("switch to active card status = %d", status)
	}
}
