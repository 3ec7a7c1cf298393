package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NexxxT-x/TamagotchPy/internal/engine"
	"github.com/NexxxT-x/TamagotchPy/internal/game"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "arena_config.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.ServerAddress)
	assert.Equal(t, 60*time.Second, cfg.Combat.TurnTimeout)
	assert.Equal(t, engine.DefaultRules(), cfg.Combat.Rules)
	assert.Equal(t, time.Hour, cfg.Decay.Interval)
	assert.Equal(t, 5, cfg.Decay.Hunger)
	assert.Equal(t, 3, cfg.Decay.Happiness)
	assert.Contains(t, cfg.ItemCatalog(), "berry")
	assert.Empty(t, cfg.Pets)
}

func TestLoadConfig_FullFile(t *testing.T) {
	p := writeConfig(t, `{
		"server": {"address": ":9000"},
		"combat": {"turn_timeout": "45s", "defend_multiplier": 3, "crit_chance_percent": 10, "crit_multiplier": 2},
		"decay": {"interval": 600, "hunger": 2, "happiness": 1},
		"item_list": [
			{"key": "apple", "name": "Apple", "heal": 5},
			{"key": "rage", "effect": {"stat": "attack", "multiplier": 1.5, "turns": 2}}
		],
		"pet_list": [
			{"id": "rex", "name": "Rex", "species": "dog", "attack": 20, "defense": 5, "speed": 10, "max_health": 50, "items": {"apple": 2}}
		]
	}`)
	cfg, err := LoadConfig(p)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ServerAddress)
	assert.Equal(t, 45*time.Second, cfg.Combat.TurnTimeout)
	assert.Equal(t, engine.Rules{DefendMultiplier: 3, CritChancePercent: 10, CritMultiplier: 2}, cfg.Combat.Rules)
	assert.Equal(t, 10*time.Minute, cfg.Decay.Interval)

	cat := cfg.ItemCatalog()
	require.Len(t, cat, 2)
	assert.Equal(t, 5, cat["apple"].Heal)
	require.NotNil(t, cat["rage"].Effect)
	assert.Equal(t, "rage", cat["rage"].Name)
	assert.Equal(t, engine.StatAttack, cat["rage"].Effect.Stat)
	assert.Equal(t, 2, cat["rage"].Effect.RemainingTurns)

	require.Len(t, cfg.Pets, 1)
	pet := cfg.Pets[0]
	assert.Equal(t, "rex", pet.ID)
	assert.Equal(t, 50, pet.Health)
	require.Len(t, pet.Items, 1)
	assert.Equal(t, "apple", pet.Items[0].ItemKey)
	assert.Equal(t, 2, pet.Items[0].Quantity)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"duplicate item":   `{"item_list": [{"key": "a", "heal": 1}, {"key": "a", "heal": 2}]}`,
		"unknown stat":     `{"item_list": [{"key": "a", "effect": {"stat": "luck", "multiplier": 2, "turns": 1}}]}`,
		"useless item":     `{"item_list": [{"key": "a"}]}`,
		"unknown pet item": `{"pet_list": [{"name": "Rex", "max_health": 10, "items": {"nope": 1}}]}`,
		"duplicate pet":    `{"pet_list": [{"name": "Rex", "max_health": 10}, {"name": "rex", "max_health": 10}]}`,
		"no health":        `{"pet_list": [{"name": "Rex"}]}`,
		"bad crit":         `{"combat": {"crit_chance_percent": 120}}`,
		"weakening guard":  `{"combat": {"defend_multiplier": 0.5}}`,
		"bad duration":     `{"combat": {"turn_timeout": "soon"}}`,
		"not json":         `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config file")
		})
	}
}

func combatantFrom(p game.Pet, side engine.Side) engine.Combatant {
	return engine.Combatant{
		Side:   side,
		PetID:  p.ID,
		Name:   p.Name,
		Base:   engine.BaseStats{Attack: p.Attack, Defense: p.Defense, Speed: p.Speed, MaxHealth: p.MaxHealth},
		Health: p.Health,
		Items:  p.InventoryMap(),
	}
}

func TestLoadConfig_ShippedFileGuardsAndBuffs(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "arena_config.json"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(cfg.Pets), 2)
	rules := cfg.Combat.Rules
	rex := combatantFrom(cfg.Pets[0], engine.SideA)
	mochi := combatantFrom(cfg.Pets[1], engine.SideB)

	open := engine.Resolve(mochi, rex, engine.Action{Kind: engine.ActionAttack}, nil, rules)
	def := engine.Resolve(rex, mochi, engine.Action{Kind: engine.ActionDefend}, nil, rules)
	guarded := engine.Resolve(def.Defender, def.Attacker, engine.Action{Kind: engine.ActionAttack}, nil, rules)
	assert.Less(t, guarded.Damage, open.Damage, "defending lowers the next incoming hit")

	snack := cfg.ItemCatalog()["power_snack"]
	plain := engine.Resolve(rex, mochi, engine.Action{Kind: engine.ActionAttack}, nil, rules)
	use := engine.Resolve(rex, mochi, engine.Action{Kind: engine.ActionUseItem, ItemID: snack.Key, Item: &snack}, nil, rules)
	reply := engine.Resolve(use.Defender, use.Attacker, engine.Action{Kind: engine.ActionAttack}, nil, rules)
	boosted := engine.Resolve(reply.Defender, reply.Attacker, engine.Action{Kind: engine.ActionAttack}, nil, rules)
	assert.Greater(t, boosted.Damage, plain.Damage, "the snack boosts the following attack")
}

func TestParseEnv(t *testing.T) {
	t.Setenv("ARENA_DB", "/tmp/x.db")
	t.Setenv("ARENA_ADDR", ":7000")
	e, err := ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", e.DBPath)
	assert.Equal(t, "./arena_config.json", e.ConfigPath)
	assert.Equal(t, ":7000", e.ResolveAddress(Default()))

	assert.Equal(t, ":5000", Env{}.ResolveAddress(Default()))
}
