package engine

import (
	"math"
	"testing"
)

func TestDamageTableSelection(t *testing.T) {
	if got := damageTableFor(30); &got[0] != &lowAttackTable[0] {
		t.Fatal("attack 30 should use the low table")
	}
	if got := damageTableFor(120); &got[0] != &superAttackTable[0] {
		t.Fatal("attack 120 should use the super table")
	}

	// Attack 50 sits halfway between the low and high anchors, so each
	// probability is the average of the two tables.
	blended := damageTableFor(50)
	for i := range blended {
		want := (lowAttackTable[i].prob + highAttackTable[i].prob) / 2
		if math.Abs(blended[i].prob-want) > 1e-9 {
			t.Fatalf("entry %d prob = %v, want %v", i, blended[i].prob, want)
		}
		if blended[i].pct != lowAttackTable[i].pct {
			t.Fatalf("entry %d pct = %v, want %v", i, blended[i].pct, lowAttackTable[i].pct)
		}
	}
}

func TestRollDamagePercentEndsOfTable(t *testing.T) {
	SetRNGSource(LowSource{})
	defer SetRNGSource(nil)
	if got := rollDamagePercent(30); got != 0.10 {
		t.Fatalf("low roll = %v, want 0.10", got)
	}

	SetRNGSource(HighSource{})
	if got := rollDamagePercent(130); got != 1.00 {
		t.Fatalf("high roll = %v, want 1.00", got)
	}
}

func TestTypeMultiplier(t *testing.T) {
	attacker := &Card{}

	if got := TypeMultiplier("fire", []string{"grass"}, attacker); got != 2.0 {
		t.Fatalf("fire vs grass = %v, want 2.0", got)
	}
	if got := TypeMultiplier("fire", []string{"water"}, attacker); got != 0.5 {
		t.Fatalf("fire vs water = %v, want 0.5", got)
	}
	if got := TypeMultiplier("electric", []string{"ground"}, attacker); got != 0.0 {
		t.Fatalf("electric vs ground = %v, want 0.0", got)
	}
	// Dual typing compounds.
	if got := TypeMultiplier("fire", []string{"grass", "ice"}, attacker); got != 4.0 {
		t.Fatalf("fire vs grass/ice = %v, want 4.0", got)
	}
	// Unknown move types are neutral.
	if got := TypeMultiplier("cosmic", []string{"grass"}, attacker); got != 1.0 {
		t.Fatalf("unknown type = %v, want 1.0", got)
	}
	// Chart lookups are case-insensitive on both sides.
	if got := TypeMultiplier("Fire", []string{"Grass"}, attacker); got != 2.0 {
		t.Fatalf("mixed case = %v, want 2.0", got)
	}
}

func TestLegendaryAttackBonus(t *testing.T) {
	legendary := &Card{IsLegendary: true}
	if got := TypeMultiplier("fire", []string{"grass"}, legendary); got != 4.0 {
		t.Fatalf("legendary fire vs grass = %v, want 4.0", got)
	}
	mythical := &Card{IsMythical: true}
	if got := TypeMultiplier("normal", nil, mythical); got != 2.0 {
		t.Fatalf("mythical neutral = %v, want 2.0", got)
	}
}

func TestDamageAppliesDefendMultiplier(t *testing.T) {
	SetRNGSource(HighSource{})
	defer SetRNGSource(nil)

	attacker := &Card{Attack: 130, Moves: []Move{testMove("Giga Impact", 120, 30, "normal")}}
	defender := &Card{Types: []string{"fighting"}}

	// Super table at the top entry rolls 100% of the 120 power.
	if got := Damage(attacker, defender, false, 0); got != 120 {
		t.Fatalf("open damage = %d, want 120", got)
	}
	if got := Damage(attacker, defender, true, 0); got != 30 {
		t.Fatalf("defended damage = %d, want 30", got)
	}
	if got := Damage(attacker, defender, false, 3); got != 0 {
		t.Fatalf("bad move index = %d, want 0", got)
	}
}
