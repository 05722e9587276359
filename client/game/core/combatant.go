// Package core contains the canonical battle data model consumed by the rest
// of the client: the networking layer produces these types, the session
// controller owns them, and the views only read them.
// core MUST not rely on other client packages.
package core

// Move is a single attack a combatant can use.
type Move struct {
	Name        string
	Type        string
	Power       int
	StaminaCost int
	Description string
}

// Combatant is one card's state at a point in time. A Combatant is built
// fresh on every normalization pass and never mutated in place; a new server
// payload supersedes it wholesale.
type Combatant struct {
	CardID int
	Name   string
	Sprite string

	HP         int
	HPMax      int
	Stamina    int
	StaminaMax int

	Attack  int
	Defense int
	Speed   int

	Moves []Move
	Types []string

	Level int
	XP    int

	IsLegendary bool
	IsMythical  bool

	// KnockedOut is derived: true when the source marks it or when HP is 0.
	KnockedOut bool

	// FaceDown marks a hidden opposing card in a 5v5 battle. Face-down cards
	// carry no stats beyond KnockedOut.
	FaceDown bool
}

func (c *Combatant) Alive() bool {
	return c != nil && !c.KnockedOut && c.HP > 0
}
