// Package session owns the authoritative client-side copy of a battle and
// drives it through start/move/switch/reward round-trips. The web UI this
// replaced collapsed all of this into a loading flag; here the lifecycle is
// an explicit phase machine so "loading while the battle is over" is not a
// representable state.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"pokearena/client/game/core"
	"pokearena/client/networking"
)

type Phase int

const (
	PhaseNoBattle Phase = iota
	PhaseStarting
	PhaseAwaitingPlayerAction
	PhaseSubmittingAction
	PhaseAwaitingOpponent
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseNoBattle:
		return "no-battle"
	case PhaseStarting:
		return "starting"
	case PhaseAwaitingPlayerAction:
		return "awaiting-player-action"
	case PhaseSubmittingAction:
		return "submitting-action"
	case PhaseAwaitingOpponent:
		return "awaiting-opponent"
	case PhaseOver:
		return "over"
	}
	return "unknown"
}

var (
	// ErrNoActiveBattle rejects an action submitted before any battle id is
	// known. Fatal to the action, not to the controller.
	ErrNoActiveBattle = errors.New("no active battle")
	// ErrBattleBusy rejects a second action while one is already in flight.
	ErrBattleBusy = errors.New("a battle request is already in flight")
	// ErrStaleResponse marks a response that arrived after a newer battle
	// started; its state is discarded instead of resurrecting the old battle.
	ErrStaleResponse = errors.New("response belongs to a superseded battle")
	// ErrRewardUnavailable rejects reward selection outside a won, unclaimed
	// 5v5 battle.
	ErrRewardUnavailable = errors.New("no reward available to claim")
	// ErrIllegalSwitch rejects a switch the action gate already knows the
	// server would refuse, saving the round-trip.
	ErrIllegalSwitch = errors.New("switch target is not selectable")

	ErrStartFailed       = errors.New("failed to start battle")
	ErrMoveRejected      = errors.New("move rejected")
	ErrRewardClaimFailed = errors.New("reward claim failed")
)

// BattleAPI is the transport surface the controller needs. Satisfied by
// *networking.Client; tests substitute func-field fakes.
type BattleAPI interface {
	StartBattle(ctx context.Context, mode string) (map[string]any, error)
	SubmitMove(ctx context.Context, battleID, move string, moveIdx *int) (map[string]any, error)
	SwitchPokemon(ctx context.Context, battleID string, newIdx int) (map[string]any, error)
	SelectReward(ctx context.Context, battleID string, pokemonIdx int) (map[string]any, error)
}

var _ BattleAPI = (*networking.Client)(nil)

// Controller is a single logical battle session. One in-flight request at a
// time; the held BattleState is replaced wholesale after every successful
// round-trip and left untouched on failure, so the player can always retry
// without losing deck or HP state.
type Controller struct {
	mu  sync.Mutex
	api BattleAPI

	phase    Phase
	state    *core.BattleState
	battleID string

	// generation counts battle starts; a response captured under an older
	// generation is discarded when it lands.
	generation uint64
	inFlight   bool
}

func NewController(api BattleAPI) *Controller {
	return &Controller{api: api, phase: PhaseNoBattle}
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// State returns the last-known-good battle state, or nil before any battle
// has started. Callers must treat it as read-only.
func (c *Controller) State() *core.BattleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins a new battle. Any previous battle is superseded: its
// generation is retired so in-flight responses from it cannot land.
func (c *Controller) Start(ctx context.Context, mode core.BattleMode) (*core.BattleState, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrBattleBusy
	}
	c.inFlight = true
	c.generation++
	gen := c.generation
	c.phase = PhaseStarting
	c.mu.Unlock()

	response, err := c.api.StartBattle(ctx, mode.String())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if gen != c.generation {
		return nil, ErrStaleResponse
	}

	if err != nil {
		// battle not created, nothing held changes
		if c.state == nil {
			c.phase = PhaseNoBattle
		} else {
			c.phase = phaseFor(c.state)
		}
		return nil, fmt.Errorf("%w: %w", ErrStartFailed, err)
	}

	// No fallback id exists for a fresh battle.
	state := networking.NormalizeBattleState(response, "")
	c.adopt(&state)

	log.Info().
		Str("battleId", state.BattleID).
		Str("mode", mode.String()).
		Str("phase", c.phase.String()).
		Msg("battle started")

	return c.state, nil
}

// SubmitMove sends one of the five battle actions. moveIdx is only consulted
// for attacks.
func (c *Controller) SubmitMove(ctx context.Context, action core.ActionKind, moveIdx int) (*core.BattleState, error) {
	var idx *int
	if action == core.ActionAttack {
		idx = &moveIdx
	}

	return c.roundTrip(ctx, ErrMoveRejected, func(battleID string) (map[string]any, error) {
		return c.api.SubmitMove(ctx, battleID, action.String(), idx)
	})
}

// SwitchActive changes the player's active card. Legality is pre-checked
// through the action gate so an obviously illegal switch never costs a
// round-trip; anything subtler stays the server's call.
func (c *Controller) SwitchActive(ctx context.Context, newIdx int) (*core.BattleState, error) {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	if state != nil && !core.CanSwitch(state, newIdx) {
		return nil, fmt.Errorf("%w: index %d", ErrIllegalSwitch, newIdx)
	}

	return c.roundTrip(ctx, ErrMoveRejected, func(battleID string) (map[string]any, error) {
		return c.api.SwitchPokemon(ctx, battleID, newIdx)
	})
}

// SelectReward claims the post-victory 5v5 reward. The confirmation response
// carries no battle state, so success mutates only RewardClaimed on the held
// state; failure leaves it untouched so the UI can re-offer selection.
func (c *Controller) SelectReward(ctx context.Context, pokemonIdx int) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrBattleBusy
	}
	if c.battleID == "" {
		c.mu.Unlock()
		return ErrNoActiveBattle
	}
	if c.state == nil || !c.state.RewardSelectable() {
		c.mu.Unlock()
		return ErrRewardUnavailable
	}
	c.inFlight = true
	gen := c.generation
	battleID := c.battleID
	c.mu.Unlock()

	_, err := c.api.SelectReward(ctx, battleID, pokemonIdx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if gen != c.generation {
		return ErrStaleResponse
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRewardClaimFailed, err)
	}

	c.state.RewardClaimed = true
	log.Info().Str("battleId", battleID).Int("pokemonIdx", pokemonIdx).Msg("reward claimed")
	return nil
}

// Abandon drops the current battle immediately, without waiting for any
// outstanding request. The retired generation guarantees that a response
// still in flight cannot resurrect the abandoned battle when it lands.
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.inFlight = false
	c.state = nil
	c.battleID = ""
	c.phase = PhaseNoBattle
}

// roundTrip runs one state-bearing request against the current battle and
// replaces the held state with the normalized response.
func (c *Controller) roundTrip(ctx context.Context, rejection error, send func(battleID string) (map[string]any, error)) (*core.BattleState, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrBattleBusy
	}
	if c.battleID == "" {
		c.mu.Unlock()
		return nil, ErrNoActiveBattle
	}
	c.inFlight = true
	gen := c.generation
	battleID := c.battleID
	c.phase = PhaseSubmittingAction
	c.mu.Unlock()

	response, err := send(battleID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if gen != c.generation {
		return nil, ErrStaleResponse
	}

	if err != nil {
		// held state stays as-is; the player retries from last known good
		c.phase = phaseFor(c.state)
		return nil, fmt.Errorf("%w: %w", rejection, err)
	}

	state := networking.NormalizeBattleState(response, battleID)
	if state.BattleID != battleID {
		log.Warn().
			Str("want", battleID).
			Str("got", state.BattleID).
			Msg("discarding response for a different battle")
		c.phase = phaseFor(c.state)
		return nil, ErrStaleResponse
	}

	c.adopt(&state)
	return c.state, nil
}

// adopt replaces the held state wholesale. Caller holds the lock.
func (c *Controller) adopt(state *core.BattleState) {
	c.state = state
	c.battleID = state.BattleID
	c.phase = phaseFor(state)
}

func phaseFor(state *core.BattleState) Phase {
	switch {
	case state == nil:
		return PhaseNoBattle
	case state.BattleOver:
		return PhaseOver
	case state.WhoseTurn == core.TurnPlayer:
		return PhaseAwaitingPlayerAction
	default:
		return PhaseAwaitingOpponent
	}
}
