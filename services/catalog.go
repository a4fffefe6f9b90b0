// services/catalog.go
package services

import (
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/questforge/progression_api/dto"
	"github.com/questforge/progression_api/model"
	"github.com/questforge/progression_api/shared"
	log "github.com/sirupsen/logrus"
)

// CatalogService owns the immutable content side of the ledger: the
// boost catalog, levels, prizes and the level-prize associations. It
// seeds the boost catalog on startup so grant calls always have their
// referents.
type CatalogService struct {
	appContext.DefaultService

	dbSvc *DbService
}

const CATALOG_SVC = "catalog_svc"

func (svc CatalogService) Id() string {
	return CATALOG_SVC
}

func (svc *CatalogService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *CatalogService) Start() error {
	svc.dbSvc = svc.Service(DB_SVC).(*DbService)
	return svc.EnsureBoostCatalog()
}

// EnsureBoostCatalog creates exactly one Boost per type, description
// taken from the type's fixed lookup. Idempotent; a concurrent seeder
// losing the unique-type race is fine.
func (svc *CatalogService) EnsureBoostCatalog() error {
	for _, boostType := range model.AllBoostTypes() {
		if _, err := svc.dbSvc.GetBoostByType(boostType); err == nil {
			continue
		} else if !shared.IsNotFound(err) {
			return err
		}

		boostID, _ := uuid.NewV7()
		boost := &model.Boost{
			ID:          boostID.String(),
			Type:        boostType,
			Description: model.BoostTypeDescriptions[boostType],
			CreatedAt:   time.Now().UTC(),
		}

		if err := svc.dbSvc.CreateBoost(boost); err != nil {
			if shared.IsConstraintViolation(err) {
				continue
			}
			return err
		}
		log.Printf("Seeded boost catalog entry: %s", boostType)
	}

	return nil
}

func (svc *CatalogService) CreateLevel(req dto.CreateLevelRequest) (*model.Level, error) {
	levelID, _ := uuid.NewV7()
	level := &model.Level{
		ID:        levelID.String(),
		Title:     req.Title,
		Order:     req.Order,
		CreatedAt: time.Now().UTC(),
	}
	if err := svc.dbSvc.CreateLevel(level); err != nil {
		return nil, err
	}
	return level, nil
}

func (svc *CatalogService) CreatePrize(req dto.CreatePrizeRequest) (*model.Prize, error) {
	prizeID, _ := uuid.NewV7()
	prize := &model.Prize{
		ID:        prizeID.String(),
		Title:     req.Title,
		CreatedAt: time.Now().UTC(),
	}
	if err := svc.dbSvc.CreatePrize(prize); err != nil {
		return nil, err
	}
	return prize, nil
}

// AttachPrizeToLevel declares that completing the level awards the
// prize. Attaching the same pair twice is a no-op.
func (svc *CatalogService) AttachPrizeToLevel(levelID, prizeID string) error {
	if _, err := svc.dbSvc.GetLevel(levelID); err != nil {
		return err
	}
	if _, err := svc.dbSvc.GetPrize(prizeID); err != nil {
		return err
	}

	return svc.dbSvc.CreateLevelPrize(&model.LevelPrize{
		LevelID:   levelID,
		PrizeID:   prizeID,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *CatalogService) ListBoosts() ([]model.Boost, error) {
	return svc.dbSvc.ListBoosts()
}

func (svc *CatalogService) ListLevels() ([]model.Level, error) {
	return svc.dbSvc.ListLevels()
}

func (svc *CatalogService) GetBoostByType(boostType model.BoostType) (*model.Boost, error) {
	return svc.dbSvc.GetBoostByType(boostType)
}
