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

// StudentHandler handles student registry endpoints
type StudentHandler struct {
	studentService *services.StudentService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(studentService *services.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// CreateStudentRequest represents student creation request body
type CreateStudentRequest struct {
	StudentNo string `json:"student_no"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Room      string `json:"room"`
}

// UpdateStudentRequest represents student update request body
type UpdateStudentRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Room      *string `json:"room"`
}

// Create registers a new student
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateStudentRequest true "Student data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /students [post]
func (h *StudentHandler) Create(c *fiber.Ctx) error {
	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.StudentNo) == "" {
		return response.BadRequest(c, "Student number is required")
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return response.BadRequest(c, "First name is required")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	input := &services.CreateStudentInput{
		StudentNo: req.StudentNo,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Room:      req.Room,
	}

	student, err := h.studentService.Create(c.Context(), input, userID, clientMeta(c))
	if err != nil {
		if errors.Is(err, domain.ErrStudentNumberTaken) {
			return response.Conflict(c, "Student number already registered")
		}
		return response.InternalServerError(c, "Failed to create student")
	}

	return response.Created(c, "Student created successfully", student)
}

// GetByID gets a student
// @Summary Get student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /students/{id} [get]
func (h *StudentHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid student ID")
	}

	student, err := h.studentService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to get student")
	}

	return response.Success(c, "Student retrieved successfully", student)
}

// List lists students with optional search
// @Summary List students
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name or student number"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /students [get]
func (h *StudentHandler) List(c *fiber.Ctx) error {
	params := pagination.Parse(c)
	search := c.Query("search")

	students, total, err := h.studentService.List(c.Context(), search, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list students")
	}

	return response.Success(c, "Students retrieved successfully", pagination.NewResponse(students, params, total))
}

// Update updates a student (the student number is immutable)
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param body body UpdateStudentRequest true "Student update data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid student ID")
	}

	var req UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	input := &services.UpdateStudentInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Room:      req.Room,
	}

	student, err := h.studentService.Update(c.Context(), uint(id), input, userID, clientMeta(c))
	if err != nil {
		if errors.Is(err, domain.ErrStudentNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to update student")
	}

	return response.Success(c, "Student updated successfully", student)
}
