package engine

// Side identifies one of the two fixed seats in a match.
type Side string

const (
	SideNone Side = ""
	SideA    Side = "A"
	SideB    Side = "B"
)

// Other returns the opposing side. SideNone has no opponent.
func (s Side) Other() Side {
	switch s {
	case SideA:
		return SideB
	case SideB:
		return SideA
	}
	return SideNone
}

// Index maps a side to its slot in a two-element array.
func (s Side) Index() int {
	if s == SideB {
		return 1
	}
	return 0
}

func (s Side) Valid() bool { return s == SideA || s == SideB }

// BaseStats are the fighting stats snapshotted from storage when the match
// starts. They never change for the duration of the match.
type BaseStats struct {
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	Speed     int `json:"speed"`
	MaxHealth int `json:"maxHealth"`
}

// Stat names the quantity a status effect multiplies.
type Stat string

const (
	StatAttack      Stat = "attack"
	StatDefense     Stat = "defense"
	StatDamageDealt Stat = "damage_dealt"
	StatDamageTaken Stat = "damage_taken"
)

// StatusEffect is a temporary multiplier. RemainingTurns counts the owner's
// upcoming turns; the effect lasts through the end of the last of them, so
// an attack buff with one turn boosts exactly one later attack.
type StatusEffect struct {
	Name           string  `json:"name"`
	Stat           Stat    `json:"stat"`
	Multiplier     float64 `json:"multiplier"`
	RemainingTurns int     `json:"remainingTurns"`
}

// Combatant is the runtime view of one pet inside a match.
type Combatant struct {
	Side    Side           `json:"side"`
	PetID   string         `json:"petId"`
	Name    string         `json:"name"`
	Base    BaseStats      `json:"baseStats"`
	Health  int            `json:"currentHealth"`
	Effects []StatusEffect `json:"statusEffects"`
	Items   map[string]int `json:"items,omitempty"`
}

// Clone returns a deep copy so outcomes never alias the caller's slices or maps.
func (c Combatant) Clone() Combatant {
	out := c
	if c.Effects != nil {
		out.Effects = make([]StatusEffect, len(c.Effects))
		copy(out.Effects, c.Effects)
	}
	if c.Items != nil {
		out.Items = make(map[string]int, len(c.Items))
		for k, v := range c.Items {
			out.Items[k] = v
		}
	}
	return out
}

func (c Combatant) Defeated() bool { return c.Health <= 0 }

// HasItem reports whether at least one unit of key is available.
func (c Combatant) HasItem(key string) bool { return c.Items[key] > 0 }

func clampHealth(c *Combatant) {
	if c.Health < 0 {
		c.Health = 0
	}
	if c.Health > c.Base.MaxHealth {
		c.Health = c.Base.MaxHealth
	}
}
