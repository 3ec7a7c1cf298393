package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/NexxxT-x/TamagotchPy/internal/game"
	"github.com/NexxxT-x/TamagotchPy/internal/logging"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenAndMigrate opens the SQLite database, migrates the schema and seeds
// the configured pets when the pets table is empty.
func OpenAndMigrate(dataSourceName string, petsFromConfig []game.Pet) (*gorm.DB, error) {
	if dir := filepath.Dir(dataSourceName); dir != "." && dataSourceName != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{
		Logger: logger.New(slog.NewLogLogger(logging.Logger().Handler(), slog.LevelWarn), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}
	// One connection serializes writers and avoids SQLITE_BUSY under the
	// concurrent outcome writes at combat end.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&game.Pet{}, &game.InventoryItem{}, &game.CombatRecord{}); err != nil {
		return nil, err
	}
	if err := seedPets(db, petsFromConfig); err != nil {
		return nil, err
	}
	return db, nil
}

func seedPets(db *gorm.DB, pets []game.Pet) error {
	if len(pets) == 0 {
		return nil
	}
	var count int64
	if err := db.Model(&game.Pet{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	rows := make([]game.Pet, len(pets))
	copy(rows, pets)
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("seed pets: %w", err)
	}
	logging.Info("seeded pets from config", logging.Fields{"count": len(rows)})
	return nil
}
