package services

import (
	"time"

	"github.com/questforge/progression_api/model"
	"github.com/questforge/progression_api/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Typed accessors over the entity store. Single-row upserts here are
// single SQL statements (ON CONFLICT clauses), so concurrent callers
// for the same composite key cannot race a read-then-write.

// ==================== PLAYERS ====================

func (ds *DbService) CreatePlayer(player *model.Player) (*model.Player, error) {
	if err := ds.db.Create(player).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return player, nil
}

func (ds *DbService) GetPlayer(playerID string) (*model.Player, error) {
	var player model.Player
	if err := ds.db.First(&player, "id = ?", playerID).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &player, nil
}

// DeletePlayer removes the player row; the ON DELETE CASCADE
// constraints take the boost, level and prize rows with it.
func (ds *DbService) DeletePlayer(playerID string) error {
	res := ds.db.Delete(&model.Player{}, "id = ?", playerID)
	if res.Error != nil {
		return ds.HandleError(res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.NewNotFoundError(nil, "player not found")
	}
	return nil
}

// ==================== CATALOG ====================

func (ds *DbService) CreateBoost(boost *model.Boost) error {
	if err := ds.db.Create(boost).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *DbService) GetBoost(boostID string) (*model.Boost, error) {
	var boost model.Boost
	if err := ds.db.First(&boost, "id = ?", boostID).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &boost, nil
}

func (ds *DbService) GetBoostByType(boostType model.BoostType) (*model.Boost, error) {
	var boost model.Boost
	if err := ds.db.First(&boost, "type = ?", boostType).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &boost, nil
}

func (ds *DbService) ListBoosts() ([]model.Boost, error) {
	var boosts []model.Boost
	if err := ds.db.Order("created_at, id").Find(&boosts).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return boosts, nil
}

func (ds *DbService) CreateLevel(level *model.Level) error {
	if err := ds.db.Create(level).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *DbService) GetLevel(levelID string) (*model.Level, error) {
	var level model.Level
	if err := ds.db.First(&level, "id = ?", levelID).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &level, nil
}

func (ds *DbService) ListLevels() ([]model.Level, error) {
	var levels []model.Level
	err := ds.db.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Order("created_at").
		Find(&levels).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return levels, nil
}

func (ds *DbService) CreatePrize(prize *model.Prize) error {
	if err := ds.db.Create(prize).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *DbService) GetPrize(prizeID string) (*model.Prize, error) {
	var prize model.Prize
	if err := ds.db.First(&prize, "id = ?", prizeID).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &prize, nil
}

func (ds *DbService) ListPrizes() ([]model.Prize, error) {
	var prizes []model.Prize
	if err := ds.db.Order("created_at, id").Find(&prizes).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return prizes, nil
}

// CreateLevelPrize associates a prize with a level. Re-attaching an
// existing pair is a no-op.
func (ds *DbService) CreateLevelPrize(lp *model.LevelPrize) error {
	err := ds.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "level_id"}, {Name: "prize_id"}},
			DoNothing: true,
		}).
		Create(lp).Error
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

// GetLevelPrizes returns the level's associations in insertion order.
func (ds *DbService) GetLevelPrizes(levelID string) ([]model.LevelPrize, error) {
	var associations []model.LevelPrize
	err := ds.db.Where("level_id = ?", levelID).
		Order("created_at, prize_id").
		Find(&associations).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return associations, nil
}

// ==================== PLAYER LEDGER ====================

// AddPlayerBoostAmount is the additive upsert: insert the row with the
// given amount, or increment the existing amount, in one statement.
func (ds *DbService) AddPlayerBoostAmount(playerID, boostID string, amount int) (*model.PlayerBoost, error) {
	pb := model.PlayerBoost{
		PlayerID:  playerID,
		BoostID:   boostID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}

	err := ds.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "player_id"}, {Name: "boost_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"amount": gorm.Expr("player_boosts.amount + excluded.amount"),
			}),
		}).
		Create(&pb).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}

	return ds.GetPlayerBoost(playerID, boostID)
}

func (ds *DbService) GetPlayerBoost(playerID, boostID string) (*model.PlayerBoost, error) {
	var pb model.PlayerBoost
	err := ds.db.Where("player_id = ? AND boost_id = ?", playerID, boostID).
		First(&pb).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &pb, nil
}

func (ds *DbService) GetPlayerBoosts(playerID string) ([]model.PlayerBoost, error) {
	var boosts []model.PlayerBoost
	err := ds.db.Where("player_id = ?", playerID).
		Order("created_at, boost_id").
		Find(&boosts).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return boosts, nil
}

// UpsertPlayerLevel records an attempt. Score is always overwritten;
// Completed is only ever set, never cleared, so a beaten level stays
// beaten across later failed attempts.
func (ds *DbService) UpsertPlayerLevel(pl *model.PlayerLevel) error {
	err := ds.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "player_id"}, {Name: "level_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"score":      gorm.Expr("excluded.score"),
				"completed":  gorm.Expr("COALESCE(player_levels.completed, excluded.completed)"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(pl).Error
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *DbService) GetPlayerLevel(playerID, levelID string) (*model.PlayerLevel, error) {
	var pl model.PlayerLevel
	err := ds.db.Where("player_id = ? AND level_id = ?", playerID, levelID).
		First(&pl).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &pl, nil
}

func (ds *DbService) GetPlayerLevels(playerID string) ([]model.PlayerLevel, error) {
	var levels []model.PlayerLevel
	err := ds.db.Where("player_id = ?", playerID).
		Order("created_at, level_id").
		Find(&levels).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return levels, nil
}

// CreatePlayerPrizeIfAbsent inserts the grant event unless the player
// already holds the prize. Reports whether a row was inserted.
func (ds *DbService) CreatePlayerPrizeIfAbsent(playerID, prizeID string, receivedAt time.Time) (bool, error) {
	pp := model.PlayerPrize{
		PlayerID:   playerID,
		PrizeID:    prizeID,
		ReceivedAt: receivedAt,
	}

	res := ds.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_id"}, {Name: "prize_id"}},
			DoNothing: true,
		}).
		Create(&pp)
	if res.Error != nil {
		return false, ds.HandleError(res.Error)
	}

	return res.RowsAffected > 0, nil
}

func (ds *DbService) GetPlayerPrizes(playerID string) ([]model.PlayerPrize, error) {
	var prizes []model.PlayerPrize
	err := ds.db.Where("player_id = ?", playerID).
		Order("received_at, prize_id").
		Find(&prizes).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return prizes, nil
}
