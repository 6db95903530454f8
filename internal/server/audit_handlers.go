package server

import (
	"github.com/PluraGate/SyriaHub-sub004/internal/models"
	"github.com/PluraGate/SyriaHub-sub004/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAuditLog handles GET /api/admin/audit-log
// @Summary List role-change audit entries
// @Description Paginated, newest first; entries are append-only
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "1-based page"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} service.AuditPage
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/audit-log [get]
func (s *Server) GetAuditLog(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", service.DefaultAuditPageSize)

	result, err := s.auditService.List(c.Context(), page, pageSize)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// GetUserAuditLog handles GET /api/admin/users/:id/audit-log
// @Summary List role changes for one user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject user ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.AuditEntry
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/users/{id}/audit-log [get]
func (s *Server) GetUserAuditLog(c *fiber.Ctx) error {
	subjectID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 20)
	entries, err := s.auditService.ListForUser(c.Context(), subjectID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(entries)
}

// GetTrustQueueDepth handles GET /api/admin/trust-queue/depth
// @Summary Report the number of unprocessed trust recalculation tasks
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{depth=int}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/trust-queue/depth [get]
func (s *Server) GetTrustQueueDepth(c *fiber.Ctx) error {
	depth, err := s.trustRepo.Depth(c.Context())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"depth": depth})
}
