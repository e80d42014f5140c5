package repositories

import (
	"context"

	"dormdesk-lendtrack/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// itemRepository implements ItemRepository interface
type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

// Create creates a new item
func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID gets an item by ID
func (r *itemRepository) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update updates an item
func (r *itemRepository) Update(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// List lists items with pagination
func (r *itemRepository) List(ctx context.Context, offset, limit int) ([]*models.Item, int64, error) {
	var items []*models.Item
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Item{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("category, name").
		Offset(offset).
		Limit(limit).
		Find(&items).Error

	return items, total, err
}

// ListAvailable lists active items with no loan in an active status.
// The subquery is the same availability predicate the loan creation
// guard uses, so "shown as available" and "accepted for loan" agree.
func (r *itemRepository) ListAvailable(ctx context.Context) ([]*models.Item, error) {
	var items []*models.Item

	activeLoans := r.db.Model(&models.Loan{}).
		Select("item_id").
		Where("status IN ?", models.ActiveLoanStatuses)

	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("id NOT IN (?)", activeLoans).
		Order("category, name").
		Find(&items).Error

	return items, err
}

// ExistsByAssetTag checks if an asset tag is already in use
func (r *itemRepository) ExistsByAssetTag(ctx context.Context, assetTag string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Item{}).Where("asset_tag = ?", assetTag).Count(&count).Error
	return count > 0, err
}

// Count counts all items
func (r *itemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Item{}).Count(&count).Error
	return count, err
}
