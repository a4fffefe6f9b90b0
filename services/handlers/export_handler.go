package handlers

import (
	"bufio"

	"github.com/gofiber/fiber/v2"
	"github.com/questforge/progression_api/dto"
	"github.com/questforge/progression_api/shared"
	log "github.com/sirupsen/logrus"
)

type ExportHandler struct {
	exportSvc ExportServiceInterface
}

func NewExportHandler(exportSvc ExportServiceInterface) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// @Summary Export player levels
// @Description Stream the player level report as CSV
// @Tags export
// @Produce text/csv
// @Success 200 {string} string "CSV stream"
// @Router /api/v1/export/player-levels [get]
func (h *ExportHandler) ExportPlayerLevels(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="player_levels.csv"`)

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		if _, err := h.exportSvc.ExportPlayerLevels(w); err != nil {
			// The header already went out; all we can do is log.
			log.Printf("Player level export failed mid-stream: %v", err)
		}
	})

	return nil
}

// @Summary Archive player level export
// @Description Write the CSV report into the object storage archive
// @Tags export
// @Accept json
// @Produce json
// @Param request body dto.ExportArchiveRequest false "Archive options"
// @Success 200 {object} shared.Response{data=dto.ExportArchiveResponse}
// @Router /api/v1/export/player-levels/archive [post]
func (h *ExportHandler) ArchivePlayerLevels(c *fiber.Ctx) error {
	var req dto.ExportArchiveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return shared.NewBadRequestError(err, "Invalid request")
		}
	}

	object, rows, err := h.exportSvc.ExportAndArchive(req.Object)
	if err != nil {
		return err
	}

	url, err := h.exportSvc.ReportURL(object)
	if err != nil {
		// The archive succeeded; the link is a convenience.
		log.Printf("Failed to presign archived report %s: %v", object, err)
	}

	return shared.ResponseOK(c, dto.ExportArchiveResponse{Object: object, Rows: rows, URL: url})
}
