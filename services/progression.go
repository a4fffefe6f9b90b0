// services/progression.go
package services

import (
	"context"
	"fmt"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/questforge/progression_api/dto"
	"github.com/questforge/progression_api/model"
	"github.com/questforge/progression_api/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProgressionService is the engine behind the three stateful player
// operations: daily-login point accrual, boost accumulation and
// level-completion prize issuance. Every operation is scoped to a
// single player and safe to repeat.
type ProgressionService struct {
	appContext.DefaultService

	dbSvc    *DbService
	redisSvc *RedisService
}

const PROGRESSION_SVC = "progression_svc"

const progressCacheTTL = 5 * time.Minute

func (svc ProgressionService) Id() string {
	return PROGRESSION_SVC
}

func (svc *ProgressionService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressionService) Start() error {
	svc.dbSvc = svc.Service(DB_SVC).(*DbService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

func (svc *ProgressionService) CreatePlayer() (*model.Player, error) {
	playerID, _ := uuid.NewV7()
	now := time.Now().UTC()
	player := &model.Player{
		ID:        playerID.String(),
		Points:    0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.dbSvc.CreatePlayer(player)
}

func (svc *ProgressionService) DeletePlayer(playerID string) error {
	if err := svc.dbSvc.DeletePlayer(playerID); err != nil {
		return err
	}
	svc.invalidateProgress(playerID)
	return nil
}

// Login records a visit. The first call stamps first_login; the first
// call of each UTC calendar day credits the daily bonus. Repeated
// calls within the same day only refresh last_login.
func (svc *ProgressionService) Login(playerID string) (*model.Player, error) {
	var player model.Player
	err := svc.dbSvc.Db().Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&player, "id = ?", playerID).Error; err != nil {
			return svc.dbSvc.HandleError(err)
		}

		now := time.Now().UTC()
		if player.FirstLogin == nil {
			player.FirstLogin = &now
		}

		if player.LastLogin == nil || beforeUTCDay(*player.LastLogin, now) {
			player.Points += shared.DailyLoginBonus
			dailyBonusesTotal.Inc()
		}

		player.LastLogin = &now
		player.UpdatedAt = now

		if err := tx.Save(&player).Error; err != nil {
			return svc.dbSvc.HandleError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	loginsTotal.Inc()
	svc.invalidateProgress(playerID)
	return &player, nil
}

// beforeUTCDay reports whether last falls on an earlier UTC calendar
// day than now.
func beforeUTCDay(last, now time.Time) bool {
	ly, lm, ld := last.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	lastDay := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
	nowDay := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return lastDay.Before(nowDay)
}

// AddBoost credits boost quantity to a player. Grants accumulate: the
// row is inserted on first grant and incremented afterwards, never
// overwritten.
func (svc *ProgressionService) AddBoost(playerID, boostID string, amount int) (*model.PlayerBoost, error) {
	if amount < 0 {
		return nil, shared.NewConstraintViolationError(nil, "boost amount must be non-negative")
	}

	if _, err := svc.dbSvc.GetPlayer(playerID); err != nil {
		return nil, err
	}
	if _, err := svc.dbSvc.GetBoost(boostID); err != nil {
		return nil, err
	}

	pb, err := svc.dbSvc.AddPlayerBoostAmount(playerID, boostID, amount)
	if err != nil {
		return nil, err
	}

	boostGrantsTotal.Inc()
	svc.invalidateProgress(playerID)
	return pb, nil
}

// SubmitLevelResult is phase one of level completion: a plain upsert of
// the (player, level) attempt row. Score overwrites; a completion
// timestamp, once set, is kept.
func (svc *ProgressionService) SubmitLevelResult(playerID, levelID string, score int, completed bool) (*model.PlayerLevel, error) {
	if score < 0 {
		return nil, shared.NewConstraintViolationError(nil, "level score must be non-negative")
	}

	if _, err := svc.dbSvc.GetPlayer(playerID); err != nil {
		return nil, err
	}
	if _, err := svc.dbSvc.GetLevel(levelID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pl := &model.PlayerLevel{
		PlayerID:  playerID,
		LevelID:   levelID,
		Score:     score,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if completed {
		pl.Completed = &now
	}

	if err := svc.dbSvc.UpsertPlayerLevel(pl); err != nil {
		return nil, err
	}

	levelResultsTotal.Inc()
	svc.invalidateProgress(playerID)
	return svc.dbSvc.GetPlayerLevel(playerID, levelID)
}

// GrantLevelPrizes is phase two: once the player's attempt row carries
// a completion timestamp, every prize associated with the level is
// granted unless already held. An incomplete or never-attempted level
// grants nothing and is not an error. Prizes apply one by one, so a
// failure mid-loop keeps what was granted and the whole call can be
// retried safely.
func (svc *ProgressionService) GrantLevelPrizes(playerID, levelID string) (int, error) {
	pl, err := svc.dbSvc.GetPlayerLevel(playerID, levelID)
	if err != nil {
		if shared.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	if pl.Completed == nil {
		return 0, nil
	}

	associations, err := svc.dbSvc.GetLevelPrizes(levelID)
	if err != nil {
		return 0, err
	}

	granted := 0
	now := time.Now().UTC()
	for _, lp := range associations {
		created, err := svc.dbSvc.CreatePlayerPrizeIfAbsent(playerID, lp.PrizeID, now)
		if err != nil {
			return granted, err
		}
		if created {
			granted++
			prizeGrantsTotal.Inc()
		}
	}

	if granted > 0 {
		log.WithFields(log.Fields{
			"player_id": playerID,
			"level_id":  levelID,
			"granted":   granted,
		}).Info("Prizes granted for completed level")
		svc.invalidateProgress(playerID)
	}
	return granted, nil
}

// CompleteLevel runs both phases: record the attempt, then grant
// whatever the level awards.
func (svc *ProgressionService) CompleteLevel(playerID, levelID string, score int, completed bool) (*dto.CompleteLevelResponse, error) {
	pl, err := svc.SubmitLevelResult(playerID, levelID, score, completed)
	if err != nil {
		return nil, err
	}

	granted, err := svc.GrantLevelPrizes(playerID, levelID)
	if err != nil {
		return nil, err
	}

	return &dto.CompleteLevelResponse{
		PlayerID:  pl.PlayerID,
		LevelID:   pl.LevelID,
		Score:     pl.Score,
		Completed: pl.Completed,
		Granted:   granted,
	}, nil
}

// GetPlayerProgress builds the read projection served to clients. The
// projection is cached; engine writes invalidate it.
func (svc *ProgressionService) GetPlayerProgress(playerID string) (*dto.PlayerProgressResponse, error) {
	cacheKey := progressCacheKey(playerID)
	if svc.redisSvc != nil {
		var cached dto.PlayerProgressResponse
		if hit, err := svc.redisSvc.GetJSON(context.Background(), cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	player, err := svc.dbSvc.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PlayerProgressResponse{
		PlayerID:   player.ID,
		Points:     player.Points,
		FirstLogin: player.FirstLogin,
		LastLogin:  player.LastLogin,
		Boosts:     []dto.PlayerBoostResponse{},
		Levels:     []dto.PlayerLevelResponse{},
		Prizes:     []dto.PlayerPrizeResponse{},
	}

	playerBoosts, err := svc.dbSvc.GetPlayerBoosts(playerID)
	if err != nil {
		return nil, err
	}
	for _, pb := range playerBoosts {
		boost, err := svc.dbSvc.GetBoost(pb.BoostID)
		if err != nil {
			return nil, err
		}
		resp.Boosts = append(resp.Boosts, dto.PlayerBoostResponse{
			BoostID:     pb.BoostID,
			Type:        string(boost.Type),
			Description: boost.Description,
			Amount:      pb.Amount,
			CreatedAt:   pb.CreatedAt,
		})
	}

	playerLevels, err := svc.dbSvc.GetPlayerLevels(playerID)
	if err != nil {
		return nil, err
	}
	for _, pl := range playerLevels {
		level, err := svc.dbSvc.GetLevel(pl.LevelID)
		if err != nil {
			return nil, err
		}
		resp.Levels = append(resp.Levels, dto.PlayerLevelResponse{
			LevelID:   pl.LevelID,
			Title:     level.Title,
			Order:     level.Order,
			Score:     pl.Score,
			Completed: pl.Completed,
		})
	}

	playerPrizes, err := svc.dbSvc.GetPlayerPrizes(playerID)
	if err != nil {
		return nil, err
	}
	for _, pp := range playerPrizes {
		prize, err := svc.dbSvc.GetPrize(pp.PrizeID)
		if err != nil {
			return nil, err
		}
		resp.Prizes = append(resp.Prizes, dto.PlayerPrizeResponse{
			PrizeID:    pp.PrizeID,
			Title:      prize.Title,
			ReceivedAt: pp.ReceivedAt,
		})
	}

	if svc.redisSvc != nil {
		if err := svc.redisSvc.Set(context.Background(), cacheKey, resp, progressCacheTTL); err != nil {
			log.Printf("Failed to cache progress for player %s: %v", playerID, err)
		}
	}

	return resp, nil
}

func progressCacheKey(playerID string) string {
	return fmt.Sprintf("player:progress:%s", playerID)
}

func (svc *ProgressionService) invalidateProgress(playerID string) {
	if svc.redisSvc == nil {
		return
	}
	if err := svc.redisSvc.Delete(context.Background(), progressCacheKey(playerID)); err != nil {
		log.Printf("Failed to invalidate progress cache for player %s: %v", playerID, err)
	}
}
