package main

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"pokearena/engine"
)

// session pairs a running battle with the roster its XP lands on and the
// rewards computed when it ended.
type session struct {
	battle  *engine.Battle
	roster  []*engine.RosterCard
	rewards *engine.Rewards
}

type handler struct {
	mu       sync.RWMutex
	sessions map[string]*session
	rng      *rand.Rand
}

func newHandler() *handler {
	now := uint64(time.Now().UnixNano())
	return &handler{
		sessions: make(map[string]*session),
		rng:      rand.New(rand.NewPCG(now, now>>32)),
	}
}

func newRouter(h *handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api/battle", func(r chi.Router) {
		r.Post("/start", h.startBattle)
		r.Post("/move", h.makeMove)
		r.Post("/switch", h.switchPokemon)
		r.Get("/state", h.battleState)
		r.Post("/select-reward", h.selectReward)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encoding response")
	}
}

// codedError writes the structured error envelope.
func codedError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}

// bareError writes the short-form envelope some endpoints use.
func bareError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func (h *handler) startBattle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		codedError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	req.Mode = strings.TrimSpace(req.Mode)
	if req.Mode != engine.ModeOneOnOne && req.Mode != engine.ModeFiveOnFive {
		codedError(w, http.StatusBadRequest, "INVALID_MODE", "Invalid battle mode. Must be '1v1' or '5v5'")
		return
	}

	deckSize := 1
	if req.Mode == engine.ModeFiveOnFive {
		deckSize = 5
	}

	h.mu.Lock()
	playerDeck := dealDeck(h.rng, deckSize, 1)
	aiDeck := dealDeck(h.rng, deckSize, 101)
	battle, err := engine.NewBattle(req.Mode, playerDeck, aiDeck)
	if err != nil {
		h.mu.Unlock()
		codedError(w, http.StatusInternalServerError, "BATTLE_ERROR", err.Error())
		return
	}
	h.sessions[battle.ID] = &session{
		battle: battle,
		roster: rosterFor(battle.PlayerDeck),
	}
	h.mu.Unlock()

	log.Info().Str("battleId", battle.ID).Str("mode", battle.Mode).Msg("battle started")
	writeJSON(w, http.StatusOK, buildBattleResponse(battle, []string{}, hideAICards(battle), nil))
}

func (h *handler) makeMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BattleID string `json:"battle_id"`
		Move     string `json:"move"`
		MoveIdx  *int   `json:"move_idx"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		codedError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	req.BattleID = strings.TrimSpace(req.BattleID)
	req.Move = strings.TrimSpace(req.Move)

	if req.BattleID == "" {
		codedError(w, http.StatusBadRequest, "INVALID_REQUEST", "Battle ID is required")
		return
	}

	switch req.Move {
	case engine.MoveAttack, engine.MoveDefend, engine.MovePass, engine.MoveSacrifice, engine.MoveSurrender:
	default:
		codedError(w, http.StatusBadRequest, "INVALID_MOVE", "Invalid move. Must be one of: attack, defend, pass, sacrifice, surrender")
		return
	}

	if req.Move == engine.MoveAttack && (req.MoveIdx == nil || *req.MoveIdx < 0) {
		codedError(w, http.StatusBadRequest, "INVALID_MOVE", "Move index is required for attack moves")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[req.BattleID]
	if !ok {
		codedError(w, http.StatusNotFound, "BATTLE_NOT_FOUND", "Battle not found")
		return
	}

	logEntries, err := sess.battle.ProcessMove(req.Move, req.MoveIdx)
	if err != nil {
		bareError(w, http.StatusBadRequest, err.Error())
		return
	}

	var rewards *engine.Rewards
	if sess.battle.BattleOver {
		if sess.rewards == nil {
			sess.rewards = engine.CalculateRewards(sess.battle, sess.roster)
			log.Info().
				Str("battleId", sess.battle.ID).
				Str("winner", sess.battle.Winner).
				Int("coins", sess.rewards.CoinsEarned).
				Msg("battle over")
		}
		rewards = sess.rewards
	}

	writeJSON(w, http.StatusOK, buildBattleResponse(sess.battle, logEntries, hideAICards(sess.battle), rewards))
}

func (h *handler) switchPokemon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BattleID string `json:"battle_id"`
		NewIdx   int    `json:"new_idx"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		bareError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[strings.TrimSpace(req.BattleID)]
	if !ok {
		bareError(w, http.StatusNotFound, "Battle not found")
		return
	}

	if err := sess.battle.SwitchActive(req.NewIdx); err != nil {
		bareError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry := "Switched to " + sess.battle.PlayerDeck[req.NewIdx].Name
	writeJSON(w, http.StatusOK, buildBattleResponse(sess.battle, []string{entry}, true, nil))
}

func (h *handler) battleState(w http.ResponseWriter, r *http.Request) {
	battleID := r.URL.Query().Get("battle_id")
	if battleID == "" {
		bareError(w, http.StatusBadRequest, "battle_id required")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sess, ok := h.sessions[battleID]
	if !ok {
		bareError(w, http.StatusNotFound, "Battle not found")
		return
	}

	writeJSON(w, http.StatusOK, buildBattleResponse(sess.battle, []string{}, hideAICards(sess.battle), nil))
}

func (h *handler) selectReward(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BattleID     string `json:"battle_id"`
		PokemonIndex int    `json:"pokemon_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		bareError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[strings.TrimSpace(req.BattleID)]
	if !ok {
		bareError(w, http.StatusNotFound, "Battle not found")
		return
	}
	battle := sess.battle

	if battle.Mode != engine.ModeFiveOnFive {
		bareError(w, http.StatusBadRequest, "Reward selection only available for 5v5 battles")
		return
	}
	if battle.Winner != "player" {
		bareError(w, http.StatusBadRequest, "Can only select reward after winning the battle")
		return
	}
	if !battle.BattleOver {
		bareError(w, http.StatusBadRequest, "Battle is not over yet")
		return
	}
	if battle.RewardClaimed {
		bareError(w, http.StatusBadRequest, "Reward already claimed for this battle")
		return
	}
	if req.PokemonIndex < 0 || req.PokemonIndex >= len(battle.AIDeck) {
		bareError(w, http.StatusBadRequest, "Invalid Pokemon index")
		return
	}

	selected := battle.AIDeck[req.PokemonIndex]

	// The captured card joins the collection fresh, at level 1.
	captured := &engine.RosterCard{
		CardID:      len(sess.roster) + 1000,
		PokemonName: selected.Name,
		Level:       1,
		XP:          0,
		BaseHP:      selected.HPMax,
		BaseAttack:  selected.Attack,
		BaseDefense: selected.Defense,
		BaseSpeed:   selected.Speed,
	}
	sess.roster = append(sess.roster, captured)
	battle.RewardClaimed = true

	log.Info().Str("battleId", battle.ID).Str("pokemon", selected.Name).Msg("reward claimed")
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully added " + selected.Name + " to your collection!",
		"card":    captured,
	})
}

// hideAICards reports whether inactive AI cards should stay face-down: the
// full enemy deck is only revealed after the player wins a 5v5.
func hideAICards(b *engine.Battle) bool {
	return !b.BattleOver || b.Winner != "player" || b.Mode != engine.ModeFiveOnFive
}

func buildBattleResponse(b *engine.Battle, logEntries []string, hide bool, rewards *engine.Rewards) map[string]any {
	response := map[string]any{
		"id":                b.ID,
		"mode":              b.Mode,
		"player_active_idx": b.PlayerActiveIdx,
		"ai_active_idx":     b.AIActiveIdx,
		"turn_number":       b.TurnNumber,
		"round_number":      b.RoundNumber,
		"whose_turn":        b.WhoseTurn,
		"battle_over":       b.BattleOver,
		"winner":            b.Winner,
		"reward_claimed":    b.RewardClaimed,
		"log":               logEntries,
		"created_at":        b.CreatedAt,
		"updated_at":        b.UpdatedAt,
	}

	response["player_deck"] = b.PlayerDeck

	if b.Mode == engine.ModeFiveOnFive && hide {
		aiDeck := make([]map[string]any, len(b.AIDeck))
		for i := range b.AIDeck {
			card := &b.AIDeck[i]
			if i == b.AIActiveIdx {
				aiDeck[i] = map[string]any{
					"card_id":        card.CardID,
					"name":           card.Name,
					"hp":             card.HP,
					"hp_max":         card.HPMax,
					"stamina":        card.Stamina,
					"stamina_max":    card.StaminaMax,
					"attack":         card.Attack,
					"defense":        card.Defense,
					"speed":          card.Speed,
					"types":          card.Types,
					"moves":          card.Moves,
					"sprite":         card.Sprite,
					"is_knocked_out": card.IsKnockedOut,
					"level":          card.Level,
					"is_active":      true,
					"is_face_down":   false,
				}
			} else {
				aiDeck[i] = map[string]any{
					"card_id":        card.CardID,
					"is_knocked_out": card.IsKnockedOut,
					"is_active":      false,
					"is_face_down":   !card.IsKnockedOut,
				}
			}
		}
		response["ai_deck"] = aiDeck
	} else {
		response["ai_deck"] = b.AIDeck
	}

	if rewards != nil {
		response["coins_earned"] = rewards.CoinsEarned
		response["xp_gains"] = rewards.XPGains
		if len(rewards.NewlyUnlockedAchievements) > 0 {
			response["newly_unlocked_achievements"] = rewards.NewlyUnlockedAchievements
		}
	}

	return response
}
