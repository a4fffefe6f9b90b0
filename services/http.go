package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/questforge/progression_api/services/handlers"
	"github.com/questforge/progression_api/shared"
)

// HttpService is the external collaborator surface: any process that
// wants to drive the progression engine or pull the export goes
// through here.
type HttpService struct {
	context.DefaultService

	progressionSvc *ProgressionService
	catalogSvc     *CatalogService
	exportSvc      *ExportService
	rateLimitSvc   *RateLimitService

	port int
	app  *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.progressionSvc = svc.Service(PROGRESSION_SVC).(*ProgressionService)
	svc.catalogSvc = svc.Service(CATALOG_SVC).(*CatalogService)
	svc.exportSvc = svc.Service(EXPORT_SVC).(*ExportService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)

	svc.app = fiber.New(fiber.Config{
		ErrorHandler:          svc.handleError,
		DisableStartupMessage: true,
	})

	svc.app.Use(recover.New())

	config := cors.ConfigDefault
	config.AllowHeaders = "Origin, Content-Type, Accept, Authorization"
	svc.app.Use(cors.New(config))

	svc.app.Use(svc.rateLimitSvc.IPRateLimit())

	playerHandler := handlers.NewPlayerHandler(svc.progressionSvc, svc.catalogSvc)
	catalogHandler := handlers.NewCatalogHandler(svc.catalogSvc)
	exportHandler := handlers.NewExportHandler(svc.exportSvc)

	svc.app.Get("/ping", svc.ping)

	v1 := svc.app.Group("/api/v1")

	v1.Post("/player", playerHandler.CreatePlayer)
	v1.Get("/player/:id/progress", playerHandler.GetProgress)
	v1.Delete("/player/:id", playerHandler.DeletePlayer)
	v1.Post("/player/:id/login", svc.rateLimitSvc.LoginRateLimit(), playerHandler.Login)
	v1.Post("/player/:id/boost", playerHandler.AddBoost)
	v1.Post("/player/:id/level/:levelId/result", svc.rateLimitSvc.LevelResultRateLimit(), playerHandler.SubmitLevelResult)
	v1.Post("/player/:id/level/:levelId/prizes", playerHandler.GrantLevelPrizes)
	v1.Post("/player/:id/level/:levelId/complete", svc.rateLimitSvc.LevelResultRateLimit(), playerHandler.CompleteLevel)

	v1.Post("/catalog/levels", catalogHandler.CreateLevel)
	v1.Post("/catalog/prizes", catalogHandler.CreatePrize)
	v1.Post("/catalog/levels/:id/prizes/:prizeId", catalogHandler.AttachPrizeToLevel)
	v1.Get("/catalog/boosts", catalogHandler.ListBoosts)
	v1.Get("/catalog/levels", catalogHandler.ListLevels)

	v1.Get("/export/player-levels", exportHandler.ExportPlayerLevels)
	v1.Post("/export/player-levels/archive", exportHandler.ArchivePlayerLevels)

	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusBadRequest:
			return shared.ResponseBadRequest(c, fiberErr.Message)
		case fiber.StatusNotFound:
			return shared.ResponseNotFound(c)
		}
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return shared.ResponseInternalError(c, err)
}
