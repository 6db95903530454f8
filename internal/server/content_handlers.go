package server

import (
	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateContent handles POST /api/content
// @Summary Create draft content
// @Description Store new content in draft status, untouched by moderation
// @Tags content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,body=string} true "Content"
// @Success 201 {object} models.ContentItem
// @Failure 400 {object} models.ErrorResponse
// @Router /content [post]
func (s *Server) CreateContent(c *fiber.Ctx) error {
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	item, err := s.moderationService.CreateDraft(c.Context(), currentUserID(c), req.Title, req.Body)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// SubmitForModeration handles POST /api/content/:id/submit
// @Summary Submit content for moderation
// @Description Run the moderation pipeline; publishes the content or flags it
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path int true "Content ID"
// @Success 200 {object} service.DecisionReport
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /content/{id}/submit [post]
func (s *Server) SubmitForModeration(c *fiber.Ctx) error {
	contentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	report, err := s.moderationService.Submit(c.Context(), currentUserID(c), contentID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(report)
}

// GetContent handles GET /api/content/:id
// @Summary Get content by id
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path int true "Content ID"
// @Success 200 {object} models.ContentItem
// @Failure 404 {object} models.ErrorResponse
// @Router /content/{id} [get]
func (s *Server) GetContent(c *fiber.Ctx) error {
	contentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.moderationService.GetContent(c.Context(), contentID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(item)
}

// GetDecision handles GET /api/content/:id/decision
// @Summary Get the latest moderation decision for a content item
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path int true "Content ID"
// @Success 200 {object} models.ModerationDecision
// @Failure 404 {object} models.ErrorResponse
// @Router /content/{id}/decision [get]
func (s *Server) GetDecision(c *fiber.Ctx) error {
	contentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	decision, err := s.moderationService.GetDecision(c.Context(), contentID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(decision)
}

// GetMyContent handles GET /api/content/mine
// @Summary List the caller's content
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.ContentItem
// @Router /content/mine [get]
func (s *Server) GetMyContent(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	items, err := s.moderationService.ListByAuthor(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(items)
}
