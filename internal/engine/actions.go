package engine

// ActionKind is the closed set of things a side can do on its turn.
type ActionKind string

const (
	ActionAttack  ActionKind = "attack"
	ActionDefend  ActionKind = "defend"
	ActionUseItem ActionKind = "use_item"
	ActionFlee    ActionKind = "flee"
)

func (k ActionKind) Valid() bool {
	switch k {
	case ActionAttack, ActionDefend, ActionUseItem, ActionFlee:
		return true
	}
	return false
}

// Action is a turn submission. Item is resolved from the catalog by the
// session after the entitlement check; clients only send ItemID.
type Action struct {
	Kind   ActionKind `json:"type"`
	ItemID string     `json:"itemId,omitempty"`
	Item   *Item      `json:"-"`
}

// Item is a catalog entry usable with ActionUseItem.
type Item struct {
	Key    string        `json:"key"`
	Name   string        `json:"name"`
	Heal   int           `json:"heal"`
	Effect *StatusEffect `json:"effect,omitempty"`
}

// RandomSource is the only way randomness reaches the resolver.
// *math/rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// Rules holds the tunable combat constants. DefendMultiplier scales the
// defender's defense while guarding and is never below 1.
type Rules struct {
	DefendMultiplier  float64
	CritChancePercent int
	CritMultiplier    float64
}

// DefaultRules are used when the configuration does not override them.
func DefaultRules() Rules {
	return Rules{
		DefendMultiplier:  2.0,
		CritChancePercent: 0,
		CritMultiplier:    1.5,
	}
}
