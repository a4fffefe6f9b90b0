package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/questforge/progression_api/dto"
	"github.com/questforge/progression_api/model"
	"github.com/questforge/progression_api/shared"
)

type PlayerHandler struct {
	progressionSvc ProgressionServiceInterface
	catalogSvc     CatalogServiceInterface
}

func NewPlayerHandler(progressionSvc ProgressionServiceInterface, catalogSvc CatalogServiceInterface) *PlayerHandler {
	return &PlayerHandler{
		progressionSvc: progressionSvc,
		catalogSvc:     catalogSvc,
	}
}

// @Summary Create player
// @Description Onboard a new player with zero points and no logins
// @Tags player
// @Accept json
// @Produce json
// @Success 201 {object} shared.Response{data=model.Player}
// @Router /api/v1/player [post]
func (h *PlayerHandler) CreatePlayer(c *fiber.Ctx) error {
	player, err := h.progressionSvc.CreatePlayer()
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, player)
}

// @Summary Delete player
// @Description Remove a player and every boost, level and prize row owned by them
// @Tags player
// @Produce json
// @Param id path string true "Player ID"
// @Success 200 {object} shared.Response
// @Router /api/v1/player/{id} [delete]
func (h *PlayerHandler) DeletePlayer(c *fiber.Ctx) error {
	if err := h.progressionSvc.DeletePlayer(c.Params("id")); err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}

// @Summary Player login
// @Description Record a login; the first login of a UTC day credits the daily bonus
// @Tags player
// @Produce json
// @Param id path string true "Player ID"
// @Success 200 {object} shared.Response{data=model.Player}
// @Router /api/v1/player/{id}/login [post]
func (h *PlayerHandler) Login(c *fiber.Ctx) error {
	player, err := h.progressionSvc.Login(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, player)
}

// @Summary Add boost
// @Description Credit boost quantity to a player; repeated grants accumulate
// @Tags player
// @Accept json
// @Produce json
// @Param id path string true "Player ID"
// @Param request body dto.AddBoostRequest true "Boost grant"
// @Success 200 {object} shared.Response{data=model.PlayerBoost}
// @Router /api/v1/player/{id}/boost [post]
func (h *PlayerHandler) AddBoost(c *fiber.Ctx) error {
	var req dto.AddBoostRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if err := dto.GetValidator().Struct(&req); err != nil {
		return validationError(err)
	}

	boostID := req.BoostID
	if boostID == "" {
		if req.BoostType == "" {
			return shared.NewBadRequestError(nil, "boost_id or boost_type is required")
		}
		boost, err := h.catalogSvc.GetBoostByType(model.BoostType(req.BoostType))
		if err != nil {
			return err
		}
		boostID = boost.ID
	}

	amount := 1
	if req.Amount != nil {
		amount = *req.Amount
	}

	pb, err := h.progressionSvc.AddBoost(c.Params("id"), boostID, amount)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, pb)
}

// @Summary Submit level result
// @Description Record or overwrite a level attempt for a player
// @Tags player
// @Accept json
// @Produce json
// @Param id path string true "Player ID"
// @Param levelId path string true "Level ID"
// @Param request body dto.LevelResultRequest true "Attempt result"
// @Success 200 {object} shared.Response{data=model.PlayerLevel}
// @Router /api/v1/player/{id}/level/{levelId}/result [post]
func (h *PlayerHandler) SubmitLevelResult(c *fiber.Ctx) error {
	var req dto.LevelResultRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	pl, err := h.progressionSvc.SubmitLevelResult(c.Params("id"), c.Params("levelId"), req.Score, req.Completed)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, pl)
}

// @Summary Grant level prizes
// @Description Grant the level's prizes once the level is completed; safe to repeat
// @Tags player
// @Produce json
// @Param id path string true "Player ID"
// @Param levelId path string true "Level ID"
// @Success 200 {object} shared.Response{data=dto.GrantPrizesResponse}
// @Router /api/v1/player/{id}/level/{levelId}/prizes [post]
func (h *PlayerHandler) GrantLevelPrizes(c *fiber.Ctx) error {
	granted, err := h.progressionSvc.GrantLevelPrizes(c.Params("id"), c.Params("levelId"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, dto.GrantPrizesResponse{Granted: granted})
}

// @Summary Complete level
// @Description Record the attempt and grant prizes in one call
// @Tags player
// @Accept json
// @Produce json
// @Param id path string true "Player ID"
// @Param levelId path string true "Level ID"
// @Param request body dto.LevelResultRequest true "Attempt result"
// @Success 200 {object} shared.Response{data=dto.CompleteLevelResponse}
// @Router /api/v1/player/{id}/level/{levelId}/complete [post]
func (h *PlayerHandler) CompleteLevel(c *fiber.Ctx) error {
	var req dto.LevelResultRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	resp, err := h.progressionSvc.CompleteLevel(c.Params("id"), c.Params("levelId"), req.Score, req.Completed)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Player progress
// @Description Full progress projection: points, boosts, levels, prizes
// @Tags player
// @Produce json
// @Param id path string true "Player ID"
// @Success 200 {object} shared.Response{data=dto.PlayerProgressResponse}
// @Router /api/v1/player/{id}/progress [get]
func (h *PlayerHandler) GetProgress(c *fiber.Ctx) error {
	progress, err := h.progressionSvc.GetPlayerProgress(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, progress)
}
