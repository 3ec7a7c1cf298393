package engine

import (
	"math"
	"strconv"
)

// Outcome is the result of resolving one turn. Attacker is always the side
// that acted, even for defend and use_item.
type Outcome struct {
	TurnSide    Side       `json:"turnSide"`
	Action      ActionKind `json:"action"`
	ItemID      string     `json:"itemId,omitempty"`
	Attacker    Combatant  `json:"attacker"`
	Defender    Combatant  `json:"defender"`
	Damage      int        `json:"damage"`
	Critical    bool       `json:"critical"`
	Description string     `json:"description"`
	Victor      Side       `json:"victor,omitempty"`
	Forfeit     bool       `json:"forfeit"`
}

// Concluded reports whether this outcome ends the match.
func (o Outcome) Concluded() bool { return o.Victor != SideNone }

// Resolve computes the effect of action taken by attacker against defender.
// It never mutates its arguments and reads no ambient state: any randomness
// comes from rnd, which may be nil to disable critical hits.
func Resolve(attacker, defender Combatant, action Action, rnd RandomSource, rules Rules) Outcome {
	a := attacker.Clone()
	d := defender.Clone()
	tc := newTurnContext(&a, &d, rules, rnd)

	ageEffects(&a)

	out := Outcome{TurnSide: a.Side, Action: action.Kind, ItemID: action.ItemID}
	switch action.Kind {
	case ActionAttack:
		out.Damage, out.Critical = tc.execAttack()
	case ActionDefend:
		tc.execDefend()
	case ActionUseItem:
		tc.execUseItem(action)
	case ActionFlee:
		tc.add(displayName(&a) + " flees the fight.")
		out.Forfeit = true
		out.Victor = d.Side
	}

	for _, name := range dropExpired(&a) {
		tc.add(displayName(&a) + "'s " + effectLabel(StatusEffect{Name: name}) + " wears off.")
	}

	clampHealth(&a)
	clampHealth(&d)
	if out.Victor == SideNone {
		out.Victor = decideVictor(tc)
	}

	out.Attacker = a
	out.Defender = d
	out.Description = tc.joinSummary()
	return out
}

// decideVictor applies the knockout rule. When both sides are down at the
// same time the acting side wins.
func decideVictor(tc *turnContext) Side {
	switch {
	case tc.attacker.Defeated():
		if tc.defender.Defeated() {
			tc.add(displayName(tc.attacker) + " is left standing last and wins.")
			return tc.attacker.Side
		}
		tc.add(displayName(tc.attacker) + " is defeated!")
		return tc.defender.Side
	case tc.defender.Defeated():
		tc.add(displayName(tc.defender) + " is defeated!")
		return tc.attacker.Side
	}
	return SideNone
}

func (tc *turnContext) execAttack() (int, bool) {
	atqEff := attackWithModifiers(tc.attacker)
	defEff := defenseWithModifiers(tc.defender)
	raw := atqEff - defEff
	if raw < 1 {
		raw = 1
	}
	dmg := scaleDamage(raw, tc.attacker, tc.defender)

	crit := false
	if tc.rnd != nil && tc.rules.CritChancePercent > 0 && tc.rnd.Intn(100) < tc.rules.CritChancePercent {
		crit = true
		dmg = int(math.Floor(float64(dmg) * tc.rules.CritMultiplier))
		if dmg < 1 {
			dmg = 1
		}
	}

	tc.defender.Health -= dmg
	if tc.defender.Health < 0 {
		tc.defender.Health = 0
	}
	msg := displayName(tc.attacker) + " attacks " + displayName(tc.defender) +
		" (attack " + strconv.Itoa(atqEff) + ", defense " + strconv.Itoa(defEff) + ")"
	if crit {
		msg += " with a critical hit"
	}
	msg += " for " + strconv.Itoa(dmg) + " damage; " + displayName(tc.defender) + " has " +
		strconv.Itoa(tc.defender.Health) + "/" + strconv.Itoa(tc.defender.Base.MaxHealth) + " health."
	tc.add(msg)
	return dmg, crit
}

func (tc *turnContext) execDefend() {
	mult := tc.rules.DefendMultiplier
	if mult < 1 {
		mult = DefaultRules().DefendMultiplier
	}
	tc.attacker.Effects = append(tc.attacker.Effects, StatusEffect{
		Name:           "guard",
		Stat:           StatDefense,
		Multiplier:     mult,
		RemainingTurns: 1,
	})
	tc.add(displayName(tc.attacker) + " takes a defensive stance (defense x" + strconv.FormatFloat(mult, 'g', -1, 64) + " until its next turn).")
}

func (tc *turnContext) execUseItem(action Action) {
	it := action.Item
	if it == nil {
		// The session validates entitlement; an unresolved item is a no-op.
		tc.add(displayName(tc.attacker) + " fumbles with an unknown item.")
		return
	}
	if tc.attacker.Items != nil && tc.attacker.Items[it.Key] > 0 {
		tc.attacker.Items[it.Key]--
	}
	name := it.Name
	if name == "" {
		name = it.Key
	}
	msg := displayName(tc.attacker) + " uses " + name
	if it.Heal > 0 {
		before := tc.attacker.Health
		tc.attacker.Health += it.Heal
		clampHealth(tc.attacker)
		msg += " and recovers " + strconv.Itoa(tc.attacker.Health-before) + " health"
	}
	if it.Effect != nil {
		eff := *it.Effect
		if eff.RemainingTurns <= 0 {
			eff.RemainingTurns = 1
		}
		tc.attacker.Effects = append(tc.attacker.Effects, eff)
		msg += "; " + effectLabel(eff) + " (" + string(eff.Stat) + " x" + strconv.FormatFloat(eff.Multiplier, 'g', -1, 64) +
			" for the next " + strconv.Itoa(eff.RemainingTurns) + " turn(s))"
	}
	tc.add(msg + ".")
}
