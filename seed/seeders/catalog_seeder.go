package seeders

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/questforge/progression_api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogSeeder creates the boost catalog plus demo levels and prizes,
// one prize attached per level.
type CatalogSeeder struct {
	db        *gorm.DB
	numLevels int
}

func NewCatalogSeeder(db *gorm.DB, numLevels int) *CatalogSeeder {
	return &CatalogSeeder{db: db, numLevels: numLevels}
}

func (s *CatalogSeeder) SeedCatalog() error {
	if err := s.seedBoosts(); err != nil {
		return err
	}
	return s.seedLevelsAndPrizes()
}

func (s *CatalogSeeder) seedBoosts() error {
	now := time.Now().UTC()
	for _, boostType := range model.AllBoostTypes() {
		boostID, _ := uuid.NewV7()
		boost := model.Boost{
			ID:          boostID.String(),
			Type:        boostType,
			Description: model.BoostTypeDescriptions[boostType],
			CreatedAt:   now,
		}

		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "type"}},
			DoNothing: true,
		}).Create(&boost).Error
		if err != nil {
			return err
		}
	}

	log.Printf("Seeded %d boost catalog entries", len(model.AllBoostTypes()))
	return nil
}

func (s *CatalogSeeder) seedLevelsAndPrizes() error {
	levels := make([]model.Level, 0, s.numLevels)
	prizes := make([]model.Prize, 0, s.numLevels)
	now := time.Now().UTC()

	for i := 0; i < s.numLevels; i++ {
		levelID, _ := uuid.NewV7()
		levels = append(levels, model.Level{
			ID:        levelID.String(),
			Title:     fmt.Sprintf("Level %d", i+1),
			Order:     i + 1,
			CreatedAt: now,
		})

		prizeID, _ := uuid.NewV7()
		prizes = append(prizes, model.Prize{
			ID:        prizeID.String(),
			Title:     fmt.Sprintf("Prize %d", i+1),
			CreatedAt: now,
		})
	}

	if err := s.db.CreateInBatches(levels, 500).Error; err != nil {
		return err
	}
	if err := s.db.CreateInBatches(prizes, 500).Error; err != nil {
		return err
	}

	associations := make([]model.LevelPrize, 0, s.numLevels)
	for i := range levels {
		associations = append(associations, model.LevelPrize{
			LevelID:   levels[i].ID,
			PrizeID:   prizes[i].ID,
			CreatedAt: now,
		})
	}
	if err := s.db.Omit(clause.Associations).CreateInBatches(associations, 500).Error; err != nil {
		return err
	}

	log.Printf("Seeded %d levels with one prize each", s.numLevels)
	return nil
}
