package core

// Battle modes. The wire format spells these "1v1" and "5v5".
type BattleMode int

const (
	ModeOneOnOne BattleMode = iota
	ModeFiveOnFive
)

func ParseMode(s string) BattleMode {
	if s == "5v5" {
		return ModeFiveOnFive
	}
	return ModeOneOnOne
}

func (m BattleMode) String() string {
	if m == ModeFiveOnFive {
		return "5v5"
	}
	return "1v1"
}

// DeckSize returns how many cards each side fields in this mode.
func (m BattleMode) DeckSize() int {
	if m == ModeFiveOnFive {
		return 5
	}
	return 1
}

type TurnOwner int

const (
	TurnPlayer TurnOwner = iota
	TurnAI
)

func ParseTurnOwner(s string) TurnOwner {
	if s == "ai" {
		return TurnAI
	}
	return TurnPlayer
}

func (t TurnOwner) String() string {
	if t == TurnAI {
		return "ai"
	}
	return "player"
}

type Winner int

const (
	WinnerNone Winner = iota
	WinnerPlayer
	WinnerAI
	WinnerDraw
)

func ParseWinner(s string) Winner {
	switch s {
	case "player":
		return WinnerPlayer
	case "ai":
		return WinnerAI
	case "draw":
		return WinnerDraw
	}
	return WinnerNone
}

func (w Winner) String() string {
	switch w {
	case WinnerPlayer:
		return "player"
	case WinnerAI:
		return "ai"
	case WinnerDraw:
		return "draw"
	}
	return ""
}

// Achievement mirrors the server's achievement record as it appears inside a
// post-battle rewards payload.
type Achievement struct {
	ID          int
	Name        string
	Description string
	Icon        string
}

// XPDetail is one card's experience gain from a finished battle.
type XPDetail struct {
	CardID    int
	Name      string
	Level     int
	XPGained  int
	LeveledUp bool
}

// StatIncreases holds the per-stat growth from a level-up. A nil field means
// the server did not report that stat on both sides of the level-up.
type StatIncreases struct {
	HP      *int
	Attack  *int
	Defense *int
	Speed   *int
}

type LevelUp struct {
	Name     string
	NewLevel int
	Stats    StatIncreases
}

// RewardSummary merges the independent reward sections a battle-over payload
// may carry. A nil RewardSummary on BattleState means no section contributed
// anything.
type RewardSummary struct {
	CoinsEarned               int
	XPDetails                 []XPDetail
	LevelUps                  []LevelUp
	NewlyUnlockedAchievements []Achievement
}

// BattleState is the canonical, immutable-per-turn snapshot of an entire
// battle. It is owned exclusively by the session controller and replaced
// wholesale after every successful server round-trip.
type BattleState struct {
	// BattleID is the opaque session identifier. Some server responses omit
	// it, so the previously known id is re-attached during normalization.
	BattleID string

	Mode BattleMode

	PlayerDeck []Combatant
	AIDeck     []Combatant

	PlayerActiveIdx int
	AIActiveIdx     int

	TurnNumber  int
	RoundNumber int

	WhoseTurn  TurnOwner
	BattleOver bool
	Winner     Winner

	// Rewards is only present when the battle is over and the player won.
	Rewards *RewardSummary

	// Log is the append-only battle narrative, chronological order.
	Log []string

	// RewardClaimed flips once a 5v5 victory reward selection round-trips.
	RewardClaimed bool
}

// ActivePlayerCard returns the player's active combatant, or nil when the
// deck is empty or the index is out of range.
func (s *BattleState) ActivePlayerCard() *Combatant {
	if s.PlayerActiveIdx >= 0 && s.PlayerActiveIdx < len(s.PlayerDeck) {
		return &s.PlayerDeck[s.PlayerActiveIdx]
	}
	return nil
}

// ActiveAICard returns the opponent's active combatant, or nil.
func (s *BattleState) ActiveAICard() *Combatant {
	if s.AIActiveIdx >= 0 && s.AIActiveIdx < len(s.AIDeck) {
		return &s.AIDeck[s.AIActiveIdx]
	}
	return nil
}

// RewardSelectable reports whether the post-victory reward round should be
// offered to the player.
func (s *BattleState) RewardSelectable() bool {
	return s.BattleOver &&
		s.Winner == WinnerPlayer &&
		s.Mode == ModeFiveOnFive &&
		!s.RewardClaimed
}
