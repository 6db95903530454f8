package server

import (
	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"github.com/gofiber/fiber/v2"
)

// OpenAppeal handles POST /api/content/:id/appeals
// @Summary Open an appeal against a moderation decision
// @Description Content owner disputes a block; opens a jury deliberation
// @Tags appeals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Content ID"
// @Param request body object{reason=string} true "Dispute reason (min 20 chars)"
// @Success 201 {object} models.Appeal
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /content/{id}/appeals [post]
func (s *Server) OpenAppeal(c *fiber.Ctx) error {
	contentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	appeal, err := s.appealService.Open(c.Context(), currentUserID(c), contentID, req.Reason)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(appeal)
}

// GetAppeal handles GET /api/appeals/:id
// @Summary Get an appeal by id
// @Tags appeals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appeal ID"
// @Success 200 {object} models.Appeal
// @Failure 404 {object} models.ErrorResponse
// @Router /appeals/{id} [get]
func (s *Server) GetAppeal(c *fiber.Ctx) error {
	appealID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	appeal, err := s.appealService.GetAppeal(c.Context(), appealID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(appeal)
}

// RequestRevision handles POST /api/appeals/:id/request-revision
// @Summary Send a pending appeal back to the author for edits
// @Tags appeals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appeal ID"
// @Param request body object{note=string} true "What to change"
// @Success 200 {object} models.Appeal
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /appeals/{id}/request-revision [post]
func (s *Server) RequestRevision(c *fiber.Ctx) error {
	appealID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	appeal, err := s.appealService.RequestRevision(c.Context(), currentUserID(c), appealID, req.Note)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(appeal)
}

// ResubmitAppeal handles POST /api/appeals/:id/resubmit
// @Summary Resubmit revised content on an appeal
// @Description Applies the author's edits and returns the appeal to pending
// @Tags appeals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appeal ID"
// @Param request body object{title=string,body=string} true "Revised content"
// @Success 200 {object} models.Appeal
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /appeals/{id}/resubmit [post]
func (s *Server) ResubmitAppeal(c *fiber.Ctx) error {
	appealID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	appeal, err := s.appealService.Resubmit(c.Context(), currentUserID(c), appealID, req.Title, req.Body)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(appeal)
}

// GetMyAppeals handles GET /api/appeals/mine
// @Summary List the caller's appeals
// @Tags appeals
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Appeal
// @Router /appeals/mine [get]
func (s *Server) GetMyAppeals(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	appeals, err := s.appealService.ListMine(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(appeals)
}
