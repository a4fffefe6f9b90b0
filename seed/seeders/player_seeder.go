package seeders

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/questforge/progression_api/model"
	"github.com/questforge/progression_api/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlayerSeeder creates demo players together with their boost balances,
// level attempts and prize grants.
type PlayerSeeder struct {
	db         *gorm.DB
	numPlayers int
}

func NewPlayerSeeder(db *gorm.DB, numPlayers int) *PlayerSeeder {
	return &PlayerSeeder{db: db, numPlayers: numPlayers}
}

func (s *PlayerSeeder) SeedPlayers() error {
	var boosts []model.Boost
	if err := s.db.Order("type").Find(&boosts).Error; err != nil {
		return err
	}

	var levels []model.Level
	if err := s.db.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).Find(&levels).Error; err != nil {
		return err
	}

	firstPrizes, err := s.firstPrizeByLevel()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	boostAmounts := []int{2, 1, 3}

	players := make([]model.Player, 0, s.numPlayers)
	playerBoosts := make([]model.PlayerBoost, 0, s.numPlayers*len(boosts))
	playerLevels := make([]model.PlayerLevel, 0, s.numPlayers*len(levels))
	playerPrizes := make([]model.PlayerPrize, 0)
	prizeSeen := make(map[string]map[string]bool)

	for p := 0; p < s.numPlayers; p++ {
		playerID, _ := uuid.NewV7()
		loginAt := now
		players = append(players, model.Player{
			ID:         playerID.String(),
			FirstLogin: &loginAt,
			LastLogin:  &loginAt,
			Points:     shared.DailyLoginBonus,
			CreatedAt:  now,
			UpdatedAt:  now,
		})

		for b, boost := range boosts {
			playerBoosts = append(playerBoosts, model.PlayerBoost{
				PlayerID:  playerID.String(),
				BoostID:   boost.ID,
				Amount:    boostAmounts[b%len(boostAmounts)],
				CreatedAt: now,
			})
		}

		for l, level := range levels {
			attempt := model.PlayerLevel{
				PlayerID:  playerID.String(),
				LevelID:   level.ID,
				Score:     100,
				CreatedAt: now,
				UpdatedAt: now,
			}

			// Every other attempt cleared the level, so the export
			// carries a realistic mix of completed and failed rows.
			if (p+l)%2 == 0 {
				completedAt := now
				attempt.Completed = &completedAt

				if prizeID, ok := firstPrizes[level.ID]; ok {
					if prizeSeen[playerID.String()] == nil {
						prizeSeen[playerID.String()] = make(map[string]bool)
					}
					if !prizeSeen[playerID.String()][prizeID] {
						prizeSeen[playerID.String()][prizeID] = true
						playerPrizes = append(playerPrizes, model.PlayerPrize{
							PlayerID:   playerID.String(),
							PrizeID:    prizeID,
							ReceivedAt: now,
						})
					}
				}
			}

			playerLevels = append(playerLevels, attempt)
		}
	}

	if err := s.db.CreateInBatches(players, 500).Error; err != nil {
		return err
	}
	if err := s.db.Omit(clause.Associations).CreateInBatches(playerBoosts, 500).Error; err != nil {
		return err
	}
	if err := s.db.Omit(clause.Associations).CreateInBatches(playerLevels, 500).Error; err != nil {
		return err
	}
	if len(playerPrizes) > 0 {
		if err := s.db.Omit(clause.Associations).CreateInBatches(playerPrizes, 500).Error; err != nil {
			return err
		}
	}

	log.Printf("Seeded %d players, %d boost balances, %d level attempts, %d prize grants",
		len(players), len(playerBoosts), len(playerLevels), len(playerPrizes))
	return nil
}

// firstPrizeByLevel resolves the prize each level awards, honouring
// association insertion order when a level has several.
func (s *PlayerSeeder) firstPrizeByLevel() (map[string]string, error) {
	var associations []model.LevelPrize
	if err := s.db.Order("created_at, prize_id").Find(&associations).Error; err != nil {
		return nil, err
	}

	first := make(map[string]string, len(associations))
	for _, assoc := range associations {
		if _, ok := first[assoc.LevelID]; !ok {
			first[assoc.LevelID] = assoc.PrizeID
		}
	}
	return first, nil
}
