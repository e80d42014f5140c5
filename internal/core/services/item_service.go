package services

import (
	"context"
	"errors"
	"log"

	"dormdesk-lendtrack/internal/adapters/persistence/models"
	"dormdesk-lendtrack/internal/adapters/persistence/repositories"
	"dormdesk-lendtrack/internal/core/domain"

	"gorm.io/gorm"
)

// ItemService handles the loanable-item catalogue.
type ItemService struct {
	itemRepo     repositories.ItemRepository
	auditService *AuditService
}

// NewItemService creates a new item service
func NewItemService(itemRepo repositories.ItemRepository, auditService *AuditService) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		auditService: auditService,
	}
}

// CreateItemInput represents item creation input
type CreateItemInput struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	AssetTag *string `json:"asset_tag"`
}

// UpdateItemInput represents item update input
type UpdateItemInput struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	AssetTag *string `json:"asset_tag"`
	IsActive *bool   `json:"is_active"`
}

// Create creates a new item
func (s *ItemService) Create(ctx context.Context, input *CreateItemInput, actorID uint, meta ClientMeta) (*models.Item, error) {
	if input.AssetTag != nil && *input.AssetTag != "" {
		exists, err := s.itemRepo.ExistsByAssetTag(ctx, *input.AssetTag)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrAssetTagTaken
		}
	}

	item := &models.Item{
		Name:     input.Name,
		Category: input.Category,
		AssetTag: input.AssetTag,
		IsActive: true,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.auditService.Record(ctx, AuditEvent{
		ActorID:  &actorID,
		Action:   domain.ActionItemCreate,
		Entity:   domain.EntityItem,
		EntityID: &item.ID,
		Meta:     meta,
		Diff: map[string]interface{}{
			"name":      item.Name,
			"category":  item.Category,
			"asset_tag": item.AssetTag,
		},
	})

	log.Printf("✅ Item created: %s", item.Name)
	return item, nil
}

// GetByID gets an item by ID
func (s *ItemService) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// List lists items with pagination
func (s *ItemService) List(ctx context.Context, offset, limit int) ([]*models.Item, int64, error) {
	return s.itemRepo.List(ctx, offset, limit)
}

// Update applies edits (name, category, asset tag, active flag)
func (s *ItemService) Update(ctx context.Context, id uint, input *UpdateItemInput, actorID uint, meta ClientMeta) (*models.Item, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}

	if input.Name != nil && *input.Name != item.Name {
		item.Name = *input.Name
		changes["name"] = item.Name
	}
	if input.Category != nil && *input.Category != item.Category {
		item.Category = *input.Category
		changes["category"] = item.Category
	}
	if input.AssetTag != nil {
		if *input.AssetTag != "" && (item.AssetTag == nil || *item.AssetTag != *input.AssetTag) {
			exists, err := s.itemRepo.ExistsByAssetTag(ctx, *input.AssetTag)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domain.ErrAssetTagTaken
			}
		}
		item.AssetTag = input.AssetTag
		changes["asset_tag"] = item.AssetTag
	}
	if input.IsActive != nil && *input.IsActive != item.IsActive {
		item.IsActive = *input.IsActive
		changes["is_active"] = item.IsActive
	}

	if len(changes) == 0 {
		return item, nil
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.auditService.Record(ctx, AuditEvent{
		ActorID:  &actorID,
		Action:   domain.ActionItemUpdate,
		Entity:   domain.EntityItem,
		EntityID: &item.ID,
		Meta:     meta,
		Diff:     changes,
	})

	return item, nil
}
