package handlers

import (
	"io"

	"github.com/questforge/progression_api/dto"
	"github.com/questforge/progression_api/model"
	"github.com/questforge/progression_api/shared"
)

// validationError wraps validator failures with the per-field messages
// so clients see which field was rejected and why.
func validationError(err error) error {
	appErr := shared.NewBadRequestError(err, "Validation failed")
	appErr.Data = dto.FormatValidationErrors(err)
	return appErr
}

type ProgressionServiceInterface interface {
	CreatePlayer() (*model.Player, error)
	DeletePlayer(playerID string) error
	Login(playerID string) (*model.Player, error)
	AddBoost(playerID, boostID string, amount int) (*model.PlayerBoost, error)
	SubmitLevelResult(playerID, levelID string, score int, completed bool) (*model.PlayerLevel, error)
	GrantLevelPrizes(playerID, levelID string) (int, error)
	CompleteLevel(playerID, levelID string, score int, completed bool) (*dto.CompleteLevelResponse, error)
	GetPlayerProgress(playerID string) (*dto.PlayerProgressResponse, error)
}

type CatalogServiceInterface interface {
	CreateLevel(req dto.CreateLevelRequest) (*model.Level, error)
	CreatePrize(req dto.CreatePrizeRequest) (*model.Prize, error)
	AttachPrizeToLevel(levelID, prizeID string) error
	ListBoosts() ([]model.Boost, error)
	ListLevels() ([]model.Level, error)
	GetBoostByType(boostType model.BoostType) (*model.Boost, error)
}

type ExportServiceInterface interface {
	ExportPlayerLevels(w io.Writer) (int, error)
	ExportAndArchive(objectName string) (string, int, error)
	ReportURL(objectName string) (string, error)
}
