package handlers

import (
	"errors"
	"strings"

	"dormdesk-lendtrack/internal/core/domain"
	"dormdesk-lendtrack/internal/core/services"
	"dormdesk-lendtrack/internal/pkg/pagination"
	"dormdesk-lendtrack/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan ledger endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// CreateLoanRequest represents loan creation request body
type CreateLoanRequest struct {
	StudentNo    string `json:"student_no"`
	ItemID       uint   `json:"item_id"`
	Destination  string `json:"destination"`
	CardReceived bool   `json:"card_received"`
	Notes        string `json:"notes"`
}

// Create opens a new loan
// @Summary Create loan
// @Description Lend an item to a student; fails if the item already has an active loan
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateLoanRequest true "Loan data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) Create(c *fiber.Ctx) error {
	var req CreateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.StudentNo) == "" {
		return response.BadRequest(c, "Student number is required")
	}
	if req.ItemID == 0 {
		return response.BadRequest(c, "Item ID is required")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	input := &services.CreateLoanInput{
		StudentNo:    strings.TrimSpace(req.StudentNo),
		ItemID:       req.ItemID,
		Destination:  strings.TrimSpace(req.Destination),
		CardReceived: req.CardReceived,
		Notes:        req.Notes,
	}

	loan, err := h.loanService.Create(c.Context(), input, userID, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		case errors.Is(err, domain.ErrItemUnavailable):
			return response.NotFound(c, "Item not found or inactive")
		case errors.Is(err, domain.ErrItemAlreadyOnLoan):
			return response.Conflict(c, "Item already has an active loan")
		default:
			return response.InternalServerError(c, "Failed to create loan")
		}
	}

	return response.Created(c, "Loan created successfully", loan)
}

// Return closes a loan
// @Summary Return loan
// @Description Mark a loan as returned; returning twice is rejected
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/return [put]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid loan ID")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	loan, err := h.loanService.Return(c.Context(), uint(id), userID, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrLoanAlreadyReturned):
			return response.Conflict(c, "Loan already returned")
		default:
			return response.InternalServerError(c, "Failed to return loan")
		}
	}

	return response.Success(c, "Loan returned successfully", loan)
}

// GetByID gets one loan with its relations
// @Summary Get loan
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", loan)
}

// List lists loans with optional filters
// @Summary List loans
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (TAKEN, OVERDUE, RETURNED)"
// @Param student_id query int false "Filter by student ID"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.Parse(c)
	status := c.Query("status")
	studentID := c.QueryInt("student_id", 0)

	loans, total, err := h.loanService.List(c.Context(), status, uint(studentID), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", pagination.NewResponse(loans, params, total))
}

// ListAvailableItems lists items free to lend right now
// @Summary List available items
// @Description Active items with no active loan
// @Tags Items
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /items/available [get]
func (h *LoanHandler) ListAvailableItems(c *fiber.Ctx) error {
	items, err := h.loanService.ListAvailableItems(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list available items")
	}

	return response.Success(c, "Available items retrieved successfully", items)
}
