package repositories

import (
	"context"

	"dormdesk-lendtrack/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// auditRepository implements AuditRepository interface
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Create appends an audit entry
func (r *auditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Query lists audit entries newest-first with optional filters
func (r *auditRepository) Query(ctx context.Context, filter AuditFilter, offset, limit int) ([]*models.AuditEntry, int64, error) {
	var entries []*models.AuditEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&models.AuditEntry{})
	if filter.ActorID != 0 {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Entity != "" {
		query = query.Where("entity = ?", filter.Entity)
	}
	if !filter.FromTime.IsZero() {
		query = query.Where("created_at >= ?", filter.FromTime)
	}
	if !filter.ToTime.IsZero() {
		query = query.Where("created_at < ?", filter.ToTime)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Actor").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error

	return entries, total, err
}
