package engine

import "math"

// --- Modifier helpers --------------------------------------------------

// applyMultipliers folds every effect on stat into v in insertion order.
func applyMultipliers(v float64, effects []StatusEffect, stat Stat) float64 {
	for _, e := range effects {
		if e.Stat == stat {
			v *= e.Multiplier
		}
	}
	return v
}

func attackWithModifiers(c *Combatant) int {
	a := int(math.Floor(applyMultipliers(float64(c.Base.Attack), c.Effects, StatAttack)))
	if a < 0 {
		a = 0
	}
	return a
}

func defenseWithModifiers(c *Combatant) int {
	d := int(math.Floor(applyMultipliers(float64(c.Base.Defense), c.Effects, StatDefense)))
	if d < 0 {
		d = 0
	}
	return d
}

// scaleDamage applies the attacker's outgoing and the defender's incoming
// damage multipliers. The result never drops below 1.
func scaleDamage(raw int, attacker, defender *Combatant) int {
	v := applyMultipliers(float64(raw), attacker.Effects, StatDamageDealt)
	v = applyMultipliers(v, defender.Effects, StatDamageTaken)
	dmg := int(math.Floor(v))
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// ageEffects counts the owner's current turn against each of its effects.
// An effect stays in force for the whole turn on which it reaches zero.
func ageEffects(c *Combatant) {
	for i := range c.Effects {
		c.Effects[i].RemainingTurns--
	}
}

// dropExpired removes effects whose turns are spent and returns their names.
func dropExpired(c *Combatant) []string {
	if len(c.Effects) == 0 {
		return nil
	}
	kept := c.Effects[:0]
	var expired []string
	for _, e := range c.Effects {
		if e.RemainingTurns <= 0 {
			expired = append(expired, e.Name)
			continue
		}
		kept = append(kept, e)
	}
	c.Effects = kept
	if len(c.Effects) == 0 {
		c.Effects = nil
	}
	return expired
}
