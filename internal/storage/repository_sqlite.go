package storage

import (
	"context"

	"github.com/NexxxT-x/TamagotchPy/internal/game"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) GetPetByID(ctx context.Context, id string) (*game.Pet, error) {
	var p game.Pet
	if err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	game.SortInventory(p.Items)
	return &p, nil
}

func (r *sqliteRepository) CreatePet(ctx context.Context, p *game.Pet) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *sqliteRepository) CountPets(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&game.Pet{}).Count(&n).Error
	return n, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *sqliteRepository) SavePetResult(ctx context.Context, res PetResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Hooks would run against an empty model here; ranges are enforced
		// in SQL instead.
		q := tx.Session(&gorm.Session{SkipHooks: true}).Model(&game.Pet{}).Where("id = ?", res.PetID)
		upd := q.Updates(map[string]interface{}{
			"health":   gorm.Expr("MAX(0, MIN(?, max_health))", res.Health),
			"battles":  gorm.Expr("battles + 1"),
			"wins":     gorm.Expr("wins + ?", boolInt(res.Won)),
			"losses":   gorm.Expr("losses + ?", boolInt(res.Lost)),
			"forfeits": gorm.Expr("forfeits + ?", boolInt(res.Forfeited)),
		})
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		for key, qty := range res.Items {
			if qty <= 0 {
				if err := tx.Where("pet_id = ? AND item_key = ?", res.PetID, key).Delete(&game.InventoryItem{}).Error; err != nil {
					return err
				}
				continue
			}
			row := game.InventoryItem{PetID: res.PetID, ItemKey: key, Quantity: qty}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "pet_id"}, {Name: "item_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *sqliteRepository) SaveCombatRecord(ctx context.Context, rec *game.CombatRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoNothing: true,
	}).Create(rec).Error
}

func (r *sqliteRepository) ListCombatRecords(ctx context.Context, petID string, limit int) ([]game.CombatRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []game.CombatRecord
	err := r.db.WithContext(ctx).
		Where("pet_a_id = ? OR pet_b_id = ?", petID, petID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *sqliteRepository) DecayNeeds(ctx context.Context, hunger, happiness int) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{SkipHooks: true}).
		Model(&game.Pet{}).
		Where("hunger > 0 AND happiness > 0").
		Updates(map[string]interface{}{
			"hunger":    gorm.Expr("MAX(hunger - ?, 0)", hunger),
			"happiness": gorm.Expr("MAX(happiness - ?, 0)", happiness),
		})
	return res.RowsAffected, res.Error
}
