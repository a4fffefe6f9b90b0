package seeders

import (
	"log"
	"os"

	"github.com/questforge/progression_api/model"
	"github.com/questforge/progression_api/services"
	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db         *gorm.DB
	numPlayers int
	numLevels  int
}

func NewMainSeeder(db *gorm.DB, numPlayers, numLevels int) *MainSeeder {
	return &MainSeeder{db: db, numPlayers: numPlayers, numLevels: numLevels}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.migrate(); err != nil {
		return err
	}

	// 1. Catalog first: boosts, levels, prizes, associations
	catalogSeeder := NewCatalogSeeder(s.db, s.numLevels)
	if err := catalogSeeder.SeedCatalog(); err != nil {
		log.Printf("Catalog seeding failed: %v", err)
		return err
	}

	// 2. Players and their ledger rows (depends on catalog)
	playerSeeder := NewPlayerSeeder(s.db, s.numPlayers)
	if err := playerSeeder.SeedPlayers(); err != nil {
		log.Printf("Player seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func (s *MainSeeder) migrate() error {
	return s.db.AutoMigrate(
		&model.Boost{},
		&model.Level{},
		&model.Prize{},
		&model.LevelPrize{},
		&model.Player{},
		&model.PlayerBoost{},
		&model.PlayerLevel{},
		&model.PlayerPrize{},
	)
}

func (s *MainSeeder) SeedCatalogOnly() error {
	if err := s.migrate(); err != nil {
		return err
	}
	return NewCatalogSeeder(s.db, s.numLevels).SeedCatalog()
}

func (s *MainSeeder) SeedPlayersOnly() error {
	if err := s.migrate(); err != nil {
		return err
	}
	return NewPlayerSeeder(s.db, s.numPlayers).SeedPlayers()
}

// ExportCSV writes the player level report for the seeded data.
func (s *MainSeeder) ExportCSV(path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := services.ExportPlayerLevelsCSV(s.db, f)
	if err != nil {
		return rows, err
	}
	return rows, f.Sync()
}
