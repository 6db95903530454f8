package server

import (
	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RequestPromotion handles POST /api/promotions
// @Summary Request a role promotion
// @Description Open a promotion request toward a higher role
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{requested_role=string,justification=string} true "Promotion request (justification min 50 chars)"
// @Success 201 {object} models.PromotionRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /promotions [post]
func (s *Server) RequestPromotion(c *fiber.Ctx) error {
	var req struct {
		RequestedRole string `json:"requested_role"`
		Justification string `json:"justification"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	promotion, err := s.promotionService.Request(c.Context(), currentUserID(c), models.Role(req.RequestedRole), req.Justification)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(promotion)
}

// EndorsePromotion handles POST /api/promotions/:id/endorsements
// @Summary Endorse a promotion request
// @Description One endorsement per qualifying account; quorum approves the request
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Promotion request ID"
// @Param request body object{justification=string} true "Endorsement justification (min 20 chars)"
// @Success 200 {object} object{approved=bool,request=models.PromotionRequest}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /promotions/{id}/endorsements [post]
func (s *Server) EndorsePromotion(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Justification string `json:"justification"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("Invalid request body"))
	}

	outcome, err := s.promotionService.Endorse(c.Context(), currentUserID(c), requestID, req.Justification)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"approved":     outcome.Approved,
		"role_changed": outcome.RoleChanged,
		"request":      outcome.Request,
	})
}

// RejectPromotion handles POST /api/promotions/:id/reject
// @Summary Reject a pending promotion request
// @Description Admin-only terminal rejection, available any time before quorum
// @Tags promotions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Promotion request ID"
// @Param request body object{note=string} false "Review notes"
// @Success 200 {object} models.PromotionRequest
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /promotions/{id}/reject [post]
func (s *Server) RejectPromotion(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "id")
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

	promotion, err := s.promotionService.Reject(c.Context(), currentUserID(c), requestID, req.Note)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(promotion)
}

// GetPromotion handles GET /api/promotions/:id
// @Summary Get a promotion request with its endorsements
// @Tags promotions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Promotion request ID"
// @Success 200 {object} models.PromotionRequest
// @Failure 404 {object} models.ErrorResponse
// @Router /promotions/{id} [get]
func (s *Server) GetPromotion(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	promotion, err := s.promotionService.GetRequest(c.Context(), requestID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(promotion)
}

// GetPendingPromotions handles GET /api/promotions/pending
// @Summary List open promotion requests
// @Tags promotions
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.PromotionRequest
// @Router /promotions/pending [get]
func (s *Server) GetPendingPromotions(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	promotions, err := s.promotionService.ListPending(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(promotions)
}
