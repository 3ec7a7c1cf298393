package game

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxNeed is the ceiling for hunger and happiness.
const MaxNeed = 100

// Pet is the persisted creature. Fighting stats are snapshotted into an
// engine.Combatant when a combat starts; Health and the battle counters are
// written back when it ends.
type Pet struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string `json:"name" gorm:"size:64;not null"`
	Species   string `json:"species" gorm:"size:32"`
	Attack    int    `json:"attack"`
	Defense   int    `json:"defense"`
	Speed     int    `json:"speed"`
	MaxHealth int    `json:"max_health"`
	Health    int    `json:"health"`
	Hunger    int    `json:"hunger"`
	Happiness int    `json:"happiness"`

	Battles  int `json:"battles"`
	Wins     int `json:"wins"`
	Losses   int `json:"losses"`
	Forfeits int `json:"forfeits"`

	Items []InventoryItem `json:"items" gorm:"foreignKey:PetID;constraint:OnDelete:CASCADE;"`
}

func (Pet) TableName() string { return "pets" }

// BeforeCreate assigns a UUID when the caller did not pick an id.
func (p *Pet) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave keeps stored values inside their valid ranges.
func (p *Pet) BeforeSave(tx *gorm.DB) error {
	p.Health = clamp(p.Health, 0, p.MaxHealth)
	p.Hunger = clamp(p.Hunger, 0, MaxNeed)
	p.Happiness = clamp(p.Happiness, 0, MaxNeed)
	return nil
}

// InventoryItem is the quantity of one catalog item a pet holds.
type InventoryItem struct {
	ID       uint   `json:"-" gorm:"primaryKey"`
	PetID    string `json:"-" gorm:"size:36;uniqueIndex:idx_pet_items_pet_item"`
	ItemKey  string `json:"item_key" gorm:"size:64;uniqueIndex:idx_pet_items_pet_item"`
	Quantity int    `json:"quantity"`
}

func (InventoryItem) TableName() string { return "pet_items" }

// CombatRecord is one finished match.
type CombatRecord struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time `json:"created_at"`
	SessionID   string    `json:"session_id" gorm:"size:36;uniqueIndex"`
	PetAID      string    `json:"pet_a_id" gorm:"size:36;index"`
	PetBID      string    `json:"pet_b_id" gorm:"size:36;index"`
	VictorPetID string    `json:"victor_pet_id" gorm:"size:36"`
	Reason      string    `json:"reason" gorm:"size:16"`
	Turns       int       `json:"turns"`
}

func (CombatRecord) TableName() string { return "combat_history" }

// InventoryMap converts the persisted inventory into the runtime form.
func (p *Pet) InventoryMap() map[string]int {
	if len(p.Items) == 0 {
		return nil
	}
	m := make(map[string]int, len(p.Items))
	for _, it := range p.Items {
		if it.Quantity > 0 {
			m[it.ItemKey] += it.Quantity
		}
	}
	return m
}

// SortInventory orders items by key so listings are stable.
func SortInventory(items []InventoryItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].ItemKey < items[j].ItemKey })
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
