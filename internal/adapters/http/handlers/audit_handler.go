package handlers

import (
	"time"

	"dormdesk-lendtrack/internal/adapters/persistence/repositories"
	"dormdesk-lendtrack/internal/core/services"
	"dormdesk-lendtrack/internal/pkg/pagination"
	"dormdesk-lendtrack/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuditHandler handles audit trail review endpoints (Admin/Auditor)
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List queries the audit trail newest-first
// @Summary Query audit trail
// @Description List audit entries with optional actor/action/entity/time filters
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param actor_id query int false "Filter by actor user ID"
// @Param action query string false "Filter by action"
// @Param entity query string false "Filter by entity type"
// @Param from query string false "From time (RFC3339)"
// @Param to query string false "To time (RFC3339)"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	params := pagination.Parse(c)

	filter := repositories.AuditFilter{
		ActorID: uint(c.QueryInt("actor_id", 0)),
		Action:  c.Query("action"),
		Entity:  c.Query("entity"),
	}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return response.BadRequest(c, "Invalid 'from' time, expected RFC3339")
		}
		filter.FromTime = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return response.BadRequest(c, "Invalid 'to' time, expected RFC3339")
		}
		filter.ToTime = t
	}

	entries, total, err := h.auditService.Query(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to query audit trail")
	}

	return response.Success(c, "Audit entries retrieved successfully", pagination.NewResponse(entries, params, total))
}
