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

// ItemHandler handles item catalogue endpoints
type ItemHandler struct {
	itemService *services.ItemService
}

// NewItemHandler creates a new item handler
func NewItemHandler(itemService *services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// CreateItemRequest represents item creation request body
type CreateItemRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	AssetTag *string `json:"asset_tag"`
}

// UpdateItemRequest represents item update request body
type UpdateItemRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	AssetTag *string `json:"asset_tag"`
	IsActive *bool   `json:"is_active"`
}

// Create creates a new item
// @Summary Create item
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateItemRequest true "Item data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var req CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(req.Name) == "" {
		return response.BadRequest(c, "Item name is required")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	input := &services.CreateItemInput{
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		AssetTag: req.AssetTag,
	}

	item, err := h.itemService.Create(c.Context(), input, userID, clientMeta(c))
	if err != nil {
		if errors.Is(err, domain.ErrAssetTagTaken) {
			return response.Conflict(c, "Asset tag already in use")
		}
		return response.InternalServerError(c, "Failed to create item")
	}

	return response.Created(c, "Item created successfully", item)
}

// GetByID gets an item
// @Summary Get item
// @Tags Items
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid item ID")
	}

	item, err := h.itemService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return response.NotFound(c, "Item not found")
		}
		return response.InternalServerError(c, "Failed to get item")
	}

	return response.Success(c, "Item retrieved successfully", item)
}

// List lists items with pagination
// @Summary List items
// @Tags Items
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	params := pagination.Parse(c)

	items, total, err := h.itemService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list items")
	}

	return response.Success(c, "Items retrieved successfully", pagination.NewResponse(items, params, total))
}

// Update updates an item
// @Summary Update item
// @Tags Items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Param body body UpdateItemRequest true "Item update data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /items/{id} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid item ID")
	}

	var req UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	input := &services.UpdateItemInput{
		Name:     req.Name,
		Category: req.Category,
		AssetTag: req.AssetTag,
		IsActive: req.IsActive,
	}

	item, err := h.itemService.Update(c.Context(), uint(id), input, userID, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrItemNotFound):
			return response.NotFound(c, "Item not found")
		case errors.Is(err, domain.ErrAssetTagTaken):
			return response.Conflict(c, "Asset tag already in use")
		default:
			return response.InternalServerError(c, "Failed to update item")
		}
	}

	return response.Success(c, "Item updated successfully", item)
}
