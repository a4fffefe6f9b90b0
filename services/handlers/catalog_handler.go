package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/questforge/progression_api/dto"
	"github.com/questforge/progression_api/shared"
)

type CatalogHandler struct {
	catalogSvc CatalogServiceInterface
}

func NewCatalogHandler(catalogSvc CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// @Summary Create level
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body dto.CreateLevelRequest true "Level"
// @Success 201 {object} shared.Response{data=model.Level}
// @Router /api/v1/catalog/levels [post]
func (h *CatalogHandler) CreateLevel(c *fiber.Ctx) error {
	var req dto.CreateLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if err := dto.GetValidator().Struct(&req); err != nil {
		return validationError(err)
	}

	level, err := h.catalogSvc.CreateLevel(req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, level)
}

// @Summary Create prize
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body dto.CreatePrizeRequest true "Prize"
// @Success 201 {object} shared.Response{data=model.Prize}
// @Router /api/v1/catalog/prizes [post]
func (h *CatalogHandler) CreatePrize(c *fiber.Ctx) error {
	var req dto.CreatePrizeRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if err := dto.GetValidator().Struct(&req); err != nil {
		return validationError(err)
	}

	prize, err := h.catalogSvc.CreatePrize(req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, prize)
}

// @Summary Attach prize to level
// @Description Declare that completing the level awards the prize
// @Tags catalog
// @Produce json
// @Param id path string true "Level ID"
// @Param prizeId path string true "Prize ID"
// @Success 200 {object} shared.Response
// @Router /api/v1/catalog/levels/{id}/prizes/{prizeId} [post]
func (h *CatalogHandler) AttachPrizeToLevel(c *fiber.Ctx) error {
	if err := h.catalogSvc.AttachPrizeToLevel(c.Params("id"), c.Params("prizeId")); err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}

// @Summary List boosts
// @Tags catalog
// @Produce json
// @Success 200 {object} shared.Response{data=[]model.Boost}
// @Router /api/v1/catalog/boosts [get]
func (h *CatalogHandler) ListBoosts(c *fiber.Ctx) error {
	boosts, err := h.catalogSvc.ListBoosts()
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, boosts)
}

// @Summary List levels
// @Tags catalog
// @Produce json
// @Success 200 {object} shared.Response{data=[]model.Level}
// @Router /api/v1/catalog/levels [get]
func (h *CatalogHandler) ListLevels(c *fiber.Ctx) error {
	levels, err := h.catalogSvc.ListLevels()
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, levels)
}
