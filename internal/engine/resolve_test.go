package engine

import (
	"encoding/json"
	"math/rand"
	"testing"
)

func petA() Combatant {
	return Combatant{Side: SideA, PetID: "a", Name: "rex", Base: BaseStats{Attack: 20, Defense: 5, Speed: 10, MaxHealth: 50}, Health: 50}
}

func petB() Combatant {
	return Combatant{Side: SideB, PetID: "b", Name: "mochi", Base: BaseStats{Attack: 15, Defense: 10, Speed: 8, MaxHealth: 50}, Health: 50}
}

func TestResolve_BasicAttack(t *testing.T) {
	a, b := petA(), petB()
	out := Resolve(a, b, Action{Kind: ActionAttack}, nil, DefaultRules())

	if out.Damage != 10 {
		t.Fatalf("expected 10 damage, got %d", out.Damage)
	}
	if out.Defender.Health != 40 {
		t.Fatalf("expected defender health 40, got %d", out.Defender.Health)
	}
	if out.Victor != SideNone {
		t.Fatalf("expected no victor, got %q", out.Victor)
	}
	if b.Health != 50 {
		t.Fatalf("resolve must not mutate its input, defender health now %d", b.Health)
	}
	if out.Description == "" {
		t.Fatalf("expected a description")
	}
}

func TestResolve_MinimumDamageIsOne(t *testing.T) {
	weak := petB()
	weak.Base.Attack = 1
	tank := petA()
	tank.Side = SideA
	tank.Base.Defense = 99

	out := Resolve(weak, tank, Action{Kind: ActionAttack}, nil, DefaultRules())
	if out.Damage != 1 {
		t.Fatalf("expected minimum damage 1, got %d", out.Damage)
	}
}

func TestResolve_HealthFlooredAtZeroAndVictor(t *testing.T) {
	a, b := petA(), petB()
	b.Health = 3

	out := Resolve(a, b, Action{Kind: ActionAttack}, nil, DefaultRules())
	if out.Defender.Health != 0 {
		t.Fatalf("expected health floored at 0, got %d", out.Defender.Health)
	}
	if out.Victor != SideA {
		t.Fatalf("expected side A to win, got %q", out.Victor)
	}
}

func TestResolve_DefendHalvesNextHit(t *testing.T) {
	a, b := petA(), petB()

	// B defends on its turn; the guard lasts through A's next attack.
	def := Resolve(b, a, Action{Kind: ActionDefend}, nil, DefaultRules())
	if def.Defender.Health != 50 {
		t.Fatalf("defend must not damage the opponent, got %d", def.Defender.Health)
	}
	if len(def.Attacker.Effects) != 1 || def.Attacker.Effects[0].Stat != StatDefense {
		t.Fatalf("expected a defense effect, got %+v", def.Attacker.Effects)
	}

	hit := Resolve(def.Defender, def.Attacker, Action{Kind: ActionAttack}, nil, DefaultRules())
	// defense 10 x2 = 20, attack 20 -> max(1, 0) = 1
	if hit.Damage != 1 {
		t.Fatalf("expected guarded damage 1, got %d", hit.Damage)
	}

	// B's next turn starts: the guard expires.
	next := Resolve(hit.Defender, hit.Attacker, Action{Kind: ActionAttack}, nil, DefaultRules())
	if len(next.Attacker.Effects) != 0 {
		t.Fatalf("expected guard to expire, got %+v", next.Attacker.Effects)
	}
}

func TestResolve_OneTurnBuffBoostsNextAttack(t *testing.T) {
	a, b := petA(), petB()
	a.Items = map[string]int{"rage": 1}
	rage := &Item{Key: "rage", Name: "Rage", Effect: &StatusEffect{Name: "rage", Stat: StatAttack, Multiplier: 2, RemainingTurns: 1}}

	use := Resolve(a, b, Action{Kind: ActionUseItem, ItemID: "rage", Item: rage}, nil, DefaultRules())
	if len(use.Attacker.Effects) != 1 {
		t.Fatalf("expected the buff to be active after use, got %+v", use.Attacker.Effects)
	}
	wait := Resolve(use.Defender, use.Attacker, Action{Kind: ActionDefend}, nil, DefaultRules())

	// attack 20 x2 = 40 against guarded defense 10 x2 = 20
	hit := Resolve(wait.Defender, wait.Attacker, Action{Kind: ActionAttack}, nil, DefaultRules())
	if hit.Damage != 20 {
		t.Fatalf("expected boosted damage 20, got %d (%s)", hit.Damage, hit.Description)
	}
	if len(hit.Attacker.Effects) != 0 {
		t.Fatalf("expected the buff to be spent after one attack, got %+v", hit.Attacker.Effects)
	}

	reply := Resolve(hit.Defender, hit.Attacker, Action{Kind: ActionAttack}, nil, DefaultRules())
	after := Resolve(reply.Defender, reply.Attacker, Action{Kind: ActionAttack}, nil, DefaultRules())
	if after.Damage != 10 {
		t.Fatalf("expected unboosted damage 10 once spent, got %d", after.Damage)
	}
}

func TestResolve_TwoTurnBuffLastsTwoAttacks(t *testing.T) {
	a, b := petA(), petB()
	a.Effects = []StatusEffect{{Name: "snack", Stat: StatAttack, Multiplier: 1.5, RemainingTurns: 2}}

	first := Resolve(a, b, Action{Kind: ActionAttack}, nil, DefaultRules())
	second := Resolve(first.Attacker, first.Defender, Action{Kind: ActionAttack}, nil, DefaultRules())
	third := Resolve(second.Attacker, second.Defender, Action{Kind: ActionAttack}, nil, DefaultRules())
	// 30 - 10 = 20 while boosted, 20 - 10 = 10 afterwards
	if first.Damage != 20 || second.Damage != 20 || third.Damage != 10 {
		t.Fatalf("expected 20, 20, 10 damage, got %d, %d, %d", first.Damage, second.Damage, third.Damage)
	}
}

func TestResolve_ModifiersApplyInInsertionOrder(t *testing.T) {
	a, b := petA(), petB()
	a.Effects = []StatusEffect{
		{Name: "fury", Stat: StatDamageDealt, Multiplier: 1.5, RemainingTurns: 3},
	}
	b.Effects = []StatusEffect{
		{Name: "shell", Stat: StatDamageTaken, Multiplier: 0.5, RemainingTurns: 3},
	}
	out := Resolve(a, b, Action{Kind: ActionAttack}, nil, DefaultRules())
	// raw 10 -> x1.5 = 15 -> x0.5 = 7.5 -> floor 7
	if out.Damage != 7 {
		t.Fatalf("expected 7 damage, got %d", out.Damage)
	}
	if out.Attacker.Effects[0].RemainingTurns != 2 {
		t.Fatalf("expected attacker effect to tick to 2, got %d", out.Attacker.Effects[0].RemainingTurns)
	}
	if out.Defender.Effects[0].RemainingTurns != 3 {
		t.Fatalf("defender effects tick on its own turn, got %d", out.Defender.Effects[0].RemainingTurns)
	}
}

func TestResolve_UseItemHealsAndConsumes(t *testing.T) {
	a, b := petA(), petB()
	a.Health = 45
	a.Items = map[string]int{"berry": 1}
	berry := &Item{Key: "berry", Name: "Berry", Heal: 15}

	out := Resolve(a, b, Action{Kind: ActionUseItem, ItemID: "berry", Item: berry}, nil, DefaultRules())
	if out.Attacker.Health != 50 {
		t.Fatalf("expected heal capped at 50, got %d", out.Attacker.Health)
	}
	if out.Attacker.Items["berry"] != 0 {
		t.Fatalf("expected berry consumed, got %d", out.Attacker.Items["berry"])
	}
	if a.Items["berry"] != 1 {
		t.Fatalf("input inventory must be untouched")
	}
	if out.Defender.Health != 50 {
		t.Fatalf("items never damage the opponent")
	}
}

func TestResolve_FleeForfeits(t *testing.T) {
	a, b := petA(), petB()
	b.Health = 1
	out := Resolve(b, a, Action{Kind: ActionFlee}, nil, DefaultRules())
	if !out.Forfeit || out.Victor != SideA {
		t.Fatalf("expected forfeit with A victorious, got forfeit=%v victor=%q", out.Forfeit, out.Victor)
	}
}

func TestResolve_BothDownActingSideWins(t *testing.T) {
	a, b := petA(), petB()
	a.Health = 0
	b.Health = 5
	out := Resolve(a, b, Action{Kind: ActionAttack}, nil, DefaultRules())
	if out.Victor != SideA {
		t.Fatalf("expected acting side to win a double knockout, got %q", out.Victor)
	}
}

func TestResolve_CriticalUsesExplicitSource(t *testing.T) {
	rules := DefaultRules()
	rules.CritChancePercent = 100
	rules.CritMultiplier = 2

	out := Resolve(petA(), petB(), Action{Kind: ActionAttack}, rand.New(rand.NewSource(1)), rules)
	if !out.Critical || out.Damage != 20 {
		t.Fatalf("expected critical 20 damage, got critical=%v damage=%d", out.Critical, out.Damage)
	}

	noRand := Resolve(petA(), petB(), Action{Kind: ActionAttack}, nil, rules)
	if noRand.Critical {
		t.Fatalf("nil random source must disable critical hits")
	}
}

func TestResolve_Deterministic(t *testing.T) {
	rules := DefaultRules()
	rules.CritChancePercent = 30

	run := func() []byte {
		rnd := rand.New(rand.NewSource(42))
		sides := [2]Combatant{petA(), petB()}
		sides[0].Items = map[string]int{"berry": 2}
		berry := &Item{Key: "berry", Name: "Berry", Heal: 10}
		script := []Action{
			{Kind: ActionAttack}, {Kind: ActionDefend}, {Kind: ActionUseItem, ItemID: "berry", Item: berry},
			{Kind: ActionAttack}, {Kind: ActionAttack}, {Kind: ActionAttack},
		}
		var outcomes []Outcome
		turn := 0
		for _, act := range script {
			att, def := sides[turn], sides[1-turn]
			out := Resolve(att, def, act, rnd, rules)
			sides[turn], sides[1-turn] = out.Attacker, out.Defender
			outcomes = append(outcomes, out)
			turn = 1 - turn
		}
		b, err := json.Marshal(outcomes)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return b
	}

	first, second := run(), run()
	if string(first) != string(second) {
		t.Fatalf("expected identical outcomes\nfirst:  %s\nsecond: %s", first, second)
	}
}
