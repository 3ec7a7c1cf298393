package game

import "github.com/NexxxT-x/TamagotchPy/internal/engine"

// Item keys of the built-in catalog.
const (
	ItemBerry       = "berry"
	ItemPowerSnack  = "power_snack"
	ItemShieldCharm = "shield_charm"
)

// DefaultItems is the catalog used when the config file does not provide
// an item_list.
func DefaultItems() []engine.Item {
	return []engine.Item{
		{Key: ItemBerry, Name: "Berry", Heal: 15},
		{Key: ItemPowerSnack, Name: "Power Snack", Effect: &engine.StatusEffect{
			Name: "power_snack", Stat: engine.StatAttack, Multiplier: 1.5, RemainingTurns: 2,
		}},
		{Key: ItemShieldCharm, Name: "Shield Charm", Effect: &engine.StatusEffect{
			Name: "shield_charm", Stat: engine.StatDamageTaken, Multiplier: 0.5, RemainingTurns: 2,
		}},
	}
}
