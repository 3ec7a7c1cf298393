package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/NexxxT-x/TamagotchPy/internal/engine"
	"github.com/NexxxT-x/TamagotchPy/internal/game"
	"github.com/NexxxT-x/TamagotchPy/internal/keys"
)

// Duration accepts either a Go duration string ("45s") or a number of
// seconds in the config file.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("duration must be a string or a number of seconds")
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type effectEntry struct {
	Name       string  `json:"name"`
	Stat       string  `json:"stat"`
	Multiplier float64 `json:"multiplier"`
	Turns      int     `json:"turns"`
}

type itemEntry struct {
	Key    string       `json:"key"`
	Name   string       `json:"name"`
	Heal   int          `json:"heal"`
	Effect *effectEntry `json:"effect"`
}

type petEntry struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Species   string         `json:"species"`
	Attack    int            `json:"attack"`
	Defense   int            `json:"defense"`
	Speed     int            `json:"speed"`
	MaxHealth int            `json:"max_health"`
	Items     map[string]int `json:"items"`
}

type rawConfig struct {
	Server *struct {
		Address string `json:"address"`
	} `json:"server"`
	Combat *struct {
		TurnTimeout       *Duration `json:"turn_timeout"`
		DefendMultiplier  *float64  `json:"defend_multiplier"`
		CritChancePercent *int      `json:"crit_chance_percent"`
		CritMultiplier    *float64  `json:"crit_multiplier"`
	} `json:"combat"`
	Decay *struct {
		Interval  *Duration `json:"interval"`
		Hunger    *int      `json:"hunger"`
		Happiness *int      `json:"happiness"`
	} `json:"decay"`
	ItemList []itemEntry `json:"item_list"`
	PetList  []petEntry  `json:"pet_list"`
}

// CombatConfig holds the rules handed to every new session.
type CombatConfig struct {
	TurnTimeout time.Duration
	Rules       engine.Rules
}

// DecayConfig drives the periodic hunger/happiness decay.
type DecayConfig struct {
	Interval  time.Duration
	Hunger    int
	Happiness int
}

// LoadedConfig contains the item catalog, the pets to seed, the combat
// rules and the server address to bind to.
type LoadedConfig struct {
	ServerAddress string
	Combat        CombatConfig
	Decay         DecayConfig
	Items         []engine.Item
	Pets          []game.Pet
}

const defaultAddress = ":5000"

// Default returns the configuration used when no config file exists.
func Default() *LoadedConfig {
	return &LoadedConfig{
		ServerAddress: defaultAddress,
		Combat: CombatConfig{
			TurnTimeout: 60 * time.Second,
			Rules:       engine.DefaultRules(),
		},
		Decay: DecayConfig{
			Interval:  time.Hour,
			Hunger:    5,
			Happiness: 3,
		},
		Items: game.DefaultItems(),
	}
}

// ItemCatalog indexes the configured items by key.
func (c *LoadedConfig) ItemCatalog() map[string]engine.Item {
	m := make(map[string]engine.Item, len(c.Items))
	for _, it := range c.Items {
		m[it.Key] = it
	}
	return m
}

// LoadConfig reads the configuration file at path. A missing file yields
// Default(); any other read or validation failure is an error.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return parse(path, b)
}

func parse(path string, b []byte) (*LoadedConfig, error) {
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	out := Default()
	if rc.Server != nil && rc.Server.Address != "" {
		out.ServerAddress = rc.Server.Address
	}
	if c := rc.Combat; c != nil {
		if c.TurnTimeout != nil {
			out.Combat.TurnTimeout = c.TurnTimeout.Std()
		}
		if c.DefendMultiplier != nil {
			out.Combat.Rules.DefendMultiplier = *c.DefendMultiplier
		}
		if c.CritChancePercent != nil {
			out.Combat.Rules.CritChancePercent = *c.CritChancePercent
		}
		if c.CritMultiplier != nil {
			out.Combat.Rules.CritMultiplier = *c.CritMultiplier
		}
	}
	if d := rc.Decay; d != nil {
		if d.Interval != nil {
			out.Decay.Interval = d.Interval.Std()
		}
		if d.Hunger != nil {
			out.Decay.Hunger = *d.Hunger
		}
		if d.Happiness != nil {
			out.Decay.Happiness = *d.Happiness
		}
	}

	if err := validateCombat(path, out); err != nil {
		return nil, err
	}

	if len(rc.ItemList) > 0 {
		items, err := buildItems(path, rc.ItemList)
		if err != nil {
			return nil, err
		}
		out.Items = items
	}
	pets, err := buildPets(path, rc.PetList, out.ItemCatalog())
	if err != nil {
		return nil, err
	}
	out.Pets = pets
	return out, nil
}

func validateCombat(path string, c *LoadedConfig) error {
	if c.Combat.TurnTimeout < 0 {
		return fmt.Errorf("config file %s: combat.turn_timeout must not be negative", path)
	}
	r := c.Combat.Rules
	if r.DefendMultiplier < 1 {
		return fmt.Errorf("config file %s: combat.defend_multiplier must be at least 1", path)
	}
	if r.CritChancePercent < 0 || r.CritChancePercent > 100 {
		return fmt.Errorf("config file %s: combat.crit_chance_percent must be between 0 and 100", path)
	}
	if r.CritMultiplier < 1 {
		return fmt.Errorf("config file %s: combat.crit_multiplier must be at least 1", path)
	}
	if c.Decay.Interval <= 0 {
		return fmt.Errorf("config file %s: decay.interval must be positive", path)
	}
	if c.Decay.Hunger < 0 || c.Decay.Happiness < 0 {
		return fmt.Errorf("config file %s: decay amounts must not be negative", path)
	}
	return nil
}

func buildItems(path string, entries []itemEntry) ([]engine.Item, error) {
	out := make([]engine.Item, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		key := strings.TrimSpace(e.Key)
		if key == "" {
			return nil, fmt.Errorf("config file %s: item entry missing 'key'", path)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("config file %s: duplicate item key '%s'", path, key)
		}
		seen[key] = struct{}{}
		if e.Heal < 0 {
			return nil, fmt.Errorf("config file %s: item '%s' has negative heal", path, key)
		}
		it := engine.Item{Key: key, Name: e.Name, Heal: e.Heal}
		if it.Name == "" {
			it.Name = key
		}
		if e.Effect != nil {
			st := engine.Stat(e.Effect.Stat)
			switch st {
			case engine.StatAttack, engine.StatDefense, engine.StatDamageDealt, engine.StatDamageTaken:
			default:
				return nil, fmt.Errorf("config file %s: item '%s' has unknown effect stat '%s'", path, key, e.Effect.Stat)
			}
			if e.Effect.Multiplier <= 0 || e.Effect.Turns <= 0 {
				return nil, fmt.Errorf("config file %s: item '%s' effect needs a positive multiplier and turns", path, key)
			}
			name := e.Effect.Name
			if name == "" {
				name = key
			}
			it.Effect = &engine.StatusEffect{Name: name, Stat: st, Multiplier: e.Effect.Multiplier, RemainingTurns: e.Effect.Turns}
		}
		if it.Heal == 0 && it.Effect == nil {
			return nil, fmt.Errorf("config file %s: item '%s' neither heals nor applies an effect", path, key)
		}
		out = append(out, it)
	}
	return out, nil
}

func buildPets(path string, entries []petEntry, catalog map[string]engine.Item) ([]game.Pet, error) {
	out := make([]game.Pet, 0, len(entries))
	names := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("config file %s: pet entry missing 'name'", path)
		}
		ln := keys.EntityKeyFromNames([]string{e.Name})
		if _, dup := names[ln]; dup {
			return nil, fmt.Errorf("config file %s: duplicate pet name '%s'", path, e.Name)
		}
		names[ln] = struct{}{}
		if e.MaxHealth <= 0 {
			return nil, fmt.Errorf("config file %s: pet '%s' needs a positive max_health", path, e.Name)
		}
		if e.Attack < 0 || e.Defense < 0 || e.Speed < 0 {
			return nil, fmt.Errorf("config file %s: pet '%s' has negative stats", path, e.Name)
		}
		p := game.Pet{
			ID:        strings.TrimSpace(e.ID),
			Name:      strings.TrimSpace(e.Name),
			Species:   e.Species,
			Attack:    e.Attack,
			Defense:   e.Defense,
			Speed:     e.Speed,
			MaxHealth: e.MaxHealth,
			Health:    e.MaxHealth,
			Hunger:    game.MaxNeed,
			Happiness: game.MaxNeed,
		}
		for key, qty := range e.Items {
			if _, ok := catalog[key]; !ok {
				return nil, fmt.Errorf("config file %s: pet '%s' holds unknown item '%s'", path, e.Name, key)
			}
			if qty <= 0 {
				return nil, fmt.Errorf("config file %s: pet '%s' item '%s' needs a positive quantity", path, e.Name, key)
			}
			p.Items = append(p.Items, game.InventoryItem{ItemKey: key, Quantity: qty})
		}
		game.SortInventory(p.Items)
		out = append(out, p)
	}
	return out, nil
}
