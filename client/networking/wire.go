// Package networking decodes battle server payloads into the canonical model
// and issues the HTTP requests the session controller asks for.
//
// The server surface has shipped two response shapes over time: a legacy
// nested one ({session, state: {Player: {Deck: [...]}, ...PascalCase}}) and
// the current flat snake_case one. Both are accepted here, in one place, so
// nothing else in the client ever branches on payload shape.
package networking

import (
	"github.com/rs/zerolog/log"

	"pokearena/client/game/core"
)

// fieldReader resolves one field at a time against a raw JSON object,
// preferring the snake_case name and falling back through any older
// spellings. Missing fields degrade to the given default and are recorded so
// the normalizer can log one diagnostic per payload instead of panicking or
// erroring; malformed upstream data must never white-screen the client.
type fieldReader struct {
	raw     map[string]any
	missing []string
}

func (r *fieldReader) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r.raw[k]; ok && v != nil {
			return v, true
		}
	}
	r.missing = append(r.missing, keys[0])
	return nil, false
}

func (r *fieldReader) intOr(def int, keys ...string) int {
	v, ok := r.lookup(keys...)
	if !ok {
		return def
	}
	return asInt(v, def)
}

func (r *fieldReader) strOr(def string, keys ...string) string {
	v, ok := r.lookup(keys...)
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func (r *fieldReader) boolOr(def bool, keys ...string) bool {
	v, ok := r.lookup(keys...)
	if !ok {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func (r *fieldReader) sliceOf(keys ...string) []any {
	v, ok := r.lookup(keys...)
	if !ok {
		return nil
	}
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

func (r *fieldReader) objectOf(keys ...string) map[string]any {
	v, ok := r.lookup(keys...)
	if !ok {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

// asInt tolerates the numeric types a decoded payload can carry. encoding/json
// produces float64; hand-built test payloads tend to use int.
func asInt(v any, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return def
}

func asIntPtr(v any) *int {
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i
	case int:
		i := n
		return &i
	case int64:
		i := int(n)
		return &i
	}
	return nil
}

func stringSlice(v []any) []string {
	out := make([]string, 0, len(v))
	for _, item := range v {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeCombatant converts a raw server combatant payload, in either field
// convention, into a canonical Combatant. A nil or absent payload returns
// nil, which callers treat as "no card in this slot" rather than an error.
func NormalizeCombatant(raw map[string]any) *core.Combatant {
	if raw == nil {
		return nil
	}

	r := fieldReader{raw: raw}

	c := core.Combatant{
		CardID:      r.intOr(0, "card_id", "CardID"),
		Name:        r.strOr("", "name", "Name"),
		Sprite:      r.strOr("", "sprite", "Sprite"),
		HP:          r.intOr(0, "hp", "HP"),
		HPMax:       r.intOr(0, "hp_max", "HPMax"),
		Stamina:     r.intOr(0, "stamina", "Stamina"),
		Attack:      r.intOr(0, "attack", "Attack"),
		Defense:     r.intOr(0, "defense", "Defense"),
		Speed:       r.intOr(0, "speed", "Speed"),
		Level:       r.intOr(1, "level", "Level"),
		XP:          r.intOr(0, "xp", "XP"),
		IsLegendary: r.boolOr(false, "is_legendary", "IsLegendary"),
		IsMythical:  r.boolOr(false, "is_mythical", "IsMythical"),
		Types:       stringSlice(r.sliceOf("types", "Types")),
	}

	// Only hidden cards in the flat shape carry this flag; its absence is the
	// norm, not contract drift, so it stays out of the missing-field tracking.
	c.FaceDown, _ = raw["is_face_down"].(bool)

	// The legacy shape never carried a stamina max; the server derives it
	// from speed, so do the same when it's absent.
	c.StaminaMax = r.intOr(c.Speed*2, "stamina_max", "StaminaMax")

	for _, rawMove := range r.sliceOf("moves", "Moves") {
		moveObj, ok := rawMove.(map[string]any)
		if !ok {
			continue
		}
		m := fieldReader{raw: moveObj}
		c.Moves = append(c.Moves, core.Move{
			Name: m.strOr("", "name", "Name"),
			// pokemon.Move serializes its type as attack_type in both shapes
			Type:        m.strOr("", "attack_type", "type", "Type"),
			Power:       m.intOr(0, "power", "Power"),
			StaminaCost: m.intOr(0, "stamina_cost", "StaminaCost"),
			Description: m.strOr("", "description", "Description"),
		})
	}

	// Sources are inconsistent about emitting the knocked-out flag, so derive
	// it from HP as well.
	c.KnockedOut = r.boolOr(false, "is_knocked_out", "IsKnockedOut") || c.HP <= 0

	// Face-down cards carry no stats by contract, so their empty fields are
	// not drift worth reporting.
	if !c.FaceDown && len(r.missing) > 0 {
		log.Warn().
			Str("name", c.Name).
			Strs("defaultedFields", r.missing).
			Msg("combatant payload missing fields, defaults substituted")
	}

	return &c
}

// NormalizeBattleState converts a full battle response, legacy nested or
// current flat, into the canonical BattleState. fallbackID is the battle id
// known before this call; several endpoints omit the id on subsequent-turn
// responses and losing it would break every following request.
//
// This function never fails. Unknown or missing fields degrade to documented
// defaults (with a diagnostic log), and a fully malformed payload yields a
// minimally valid empty-decks state.
func NormalizeBattleState(response map[string]any, fallbackID string) core.BattleState {
	if response == nil {
		response = map[string]any{}
	}

	// Legacy responses wrap the battle fields in a "state" envelope.
	data := response
	legacy := false
	if inner, ok := response["state"].(map[string]any); ok {
		data = inner
		legacy = true
	}

	env := fieldReader{raw: response}
	r := fieldReader{raw: data}

	state := core.BattleState{
		BattleID: firstNonEmpty(
			env.strOr("", "session"),
			env.strOr("", "id"),
			r.strOr("", "id"),
			fallbackID,
		),
		Mode:            core.ParseMode(r.strOr("1v1", "mode", "BattleMode")),
		PlayerActiveIdx: r.intOr(0, "player_active_idx", "PlayerActiveIdx"),
		AIActiveIdx:     r.intOr(0, "ai_active_idx", "AIActiveIdx"),
		TurnNumber:      r.intOr(1, "turn_number", "TurnNumber"),
		RoundNumber:     r.intOr(1, "round_number", "RoundNumber", "Round"),
		BattleOver:      r.boolOr(false, "battle_over", "BattleOver"),
		RewardClaimed:   r.boolOr(false, "reward_claimed", "RewardClaimed"),
	}

	state.WhoseTurn = core.ParseTurnOwner(resolveWhoseTurn(&r, response))
	state.PlayerDeck = normalizeDeck(&r, "player_deck", "Player")
	state.AIDeck = normalizeDeck(&r, "ai_deck", "AI")

	// Prefer an explicit winner; without one, a finished battle can only be
	// attributed by the surrender flag. That inference cannot represent a
	// draw, which is why the explicit field wins when present.
	winner := r.strOr("", "winner", "Winner")
	switch {
	case winner != "":
		state.Winner = core.ParseWinner(winner)
	case state.BattleOver:
		if r.boolOr(false, "player_surrendered", "PlayerSurrendered") {
			state.Winner = core.WinnerAI
		} else {
			state.Winner = core.WinnerPlayer
		}
	default:
		state.Winner = core.WinnerNone
	}

	for _, entry := range r.sliceOf("log", "Log") {
		if s, ok := entry.(string); ok {
			state.Log = append(state.Log, s)
		}
	}

	state.Rewards = normalizeRewards(response)

	if missing := append(env.missing, r.missing...); len(missing) > 0 {
		log.Warn().
			Bool("legacy", legacy).
			Strs("defaultedFields", missing).
			Msg("battle payload missing fields, defaults substituted")
	}

	return state
}

func resolveWhoseTurn(r *fieldReader, response map[string]any) string {
	if turn := r.strOr("", "whose_turn", "WhoseTurn"); turn != "" {
		return turn
	}

	// Legacy payloads bury the owner inside a turn object, either on the
	// state itself or beside it in the envelope.
	for _, holder := range []map[string]any{r.raw, response} {
		h := fieldReader{raw: holder}
		if turnObj := h.objectOf("turn", "Turn"); turnObj != nil {
			t := fieldReader{raw: turnObj}
			if owner := t.strOr("", "whose_turn", "WhoseTurn"); owner != "" {
				return owner
			}
		}
	}

	return "player"
}

func normalizeDeck(r *fieldReader, flatKey, legacySide string) []core.Combatant {
	rawDeck := r.sliceOf(flatKey)
	if rawDeck == nil {
		if side := r.objectOf(legacySide); side != nil {
			s := fieldReader{raw: side}
			rawDeck = s.sliceOf("Deck", "deck")
		}
	}

	deck := make([]core.Combatant, 0, len(rawDeck))
	for _, entry := range rawDeck {
		obj, _ := entry.(map[string]any)
		if c := NormalizeCombatant(obj); c != nil {
			deck = append(deck, *c)
		}
	}
	return deck
}

// normalizeRewards merges the independent optional reward sections of a
// battle-over payload. Returns nil when no section contributed anything, so
// "no rewards object" and "empty rewards" look identical downstream.
func normalizeRewards(response map[string]any) *core.RewardSummary {
	env := fieldReader{raw: response}
	summary := core.RewardSummary{}
	contributed := false

	sections := []map[string]any{response}
	if rewardsObj := env.objectOf("rewards"); rewardsObj != nil {
		sections = append(sections, rewardsObj)
	}

	for _, section := range sections {
		s := fieldReader{raw: section}

		if coins, ok := s.lookup("coins_earned"); ok {
			summary.CoinsEarned = asInt(coins, 0)
			contributed = true
		}

		for _, rawGain := range s.sliceOf("xp_gains") {
			gainObj, ok := rawGain.(map[string]any)
			if !ok {
				continue
			}
			g := fieldReader{raw: gainObj}

			detail := core.XPDetail{
				CardID:    g.intOr(0, "card_id"),
				Name:      g.strOr("", "pokemon_name", "name"),
				Level:     g.intOr(1, "new_level"),
				XPGained:  g.intOr(0, "xp_gained"),
				LeveledUp: g.boolOr(false, "leveled_up"),
			}
			summary.XPDetails = append(summary.XPDetails, detail)
			contributed = true

			if detail.LeveledUp {
				summary.LevelUps = append(summary.LevelUps, core.LevelUp{
					Name:     detail.Name,
					NewLevel: detail.Level,
					Stats: core.StatIncreases{
						HP:      statDelta(gainObj, "old_hp", "new_hp"),
						Attack:  statDelta(gainObj, "old_attack", "new_attack"),
						Defense: statDelta(gainObj, "old_defense", "new_defense"),
						Speed:   statDelta(gainObj, "old_speed", "new_speed"),
					},
				})
			}
		}

		for _, rawAch := range s.sliceOf("newly_unlocked_achievements") {
			achObj, ok := rawAch.(map[string]any)
			if !ok {
				continue
			}
			a := fieldReader{raw: achObj}
			summary.NewlyUnlockedAchievements = append(summary.NewlyUnlockedAchievements, core.Achievement{
				ID:          a.intOr(0, "id"),
				Name:        a.strOr("", "name"),
				Description: a.strOr("", "description"),
				Icon:        a.strOr("", "icon"),
			})
			contributed = true
		}
	}

	if !contributed {
		return nil
	}
	return &summary
}

// statDelta computes new − old for a level-up stat; nil when either side is
// missing from the payload.
func statDelta(gain map[string]any, oldKey, newKey string) *int {
	oldVal := asIntPtr(gain[oldKey])
	newVal := asIntPtr(gain[newKey])
	if oldVal == nil || newVal == nil {
		return nil
	}
	delta := *newVal - *oldVal
	return &delta
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
