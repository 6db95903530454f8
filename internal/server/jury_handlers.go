package server

import (
	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CastJurorVote handles POST /api/deliberations/:id/votes
// @Summary Cast a juror vote on an appeal deliberation
// @Description One vote per juror; the final vote resolves the appeal
// @Tags jury
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Deliberation ID"
// @Param request body object{vote=string} true "'uphold' or 'overturn'"
// @Success 200 {object} object{finalized=bool,decision=string,votes_cast=int,jury_size=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /deliberations/{id}/votes [post]
func (s *Server) CastJurorVote(c *fiber.Ctx) error {
	deliberationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Vote string `json:"vote"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	outcome, err := s.juryService.CastVote(c.Context(), currentUserID(c), deliberationID, models.JuryVote(req.Vote))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	resp := fiber.Map{
		"finalized": outcome.Finalized,
		"jury_size": outcome.Deliberation.JurySize,
	}
	if outcome.Finalized {
		resp["decision"] = outcome.Decision
		resp["appeal_status"] = outcome.Appeal.Status
	}
	return c.JSON(resp)
}

// GetDeliberation handles GET /api/deliberations/:id
// @Summary Get a deliberation with its votes
// @Tags jury
// @Produce json
// @Security BearerAuth
// @Param id path int true "Deliberation ID"
// @Success 200 {object} models.JuryDeliberation
// @Failure 404 {object} models.ErrorResponse
// @Router /deliberations/{id} [get]
func (s *Server) GetDeliberation(c *fiber.Ctx) error {
	deliberationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	deliberation, err := s.juryService.GetDeliberation(c.Context(), deliberationID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(deliberation)
}
