package repositories

import (
	"context"
	"errors"
	"time"

	"dormdesk-lendtrack/internal/adapters/persistence/models"
	"dormdesk-lendtrack/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// CreateForItem inserts the loan inside a transaction that first takes a
// row lock on the item. Two concurrent creates for the same item both
// reach the SELECT ... FOR UPDATE, one blocks, and the loser re-checks
// availability against the winner's committed loan.
func (r *loanRepository) CreateForItem(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Item
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", loan.ItemID).
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrItemUnavailable
			}
			return err
		}
		if !item.IsActive {
			return domain.ErrItemUnavailable
		}

		var active int64
		err = tx.Model(&models.Loan{}).
			Where("item_id = ? AND status IN ?", loan.ItemID, models.ActiveLoanStatuses).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return domain.ErrItemAlreadyOnLoan
		}

		return tx.Create(loan).Error
	})
}

// GetByID gets a loan by ID with relations
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Item").
		Preload("Creator").
		Preload("Closer").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// CloseLoan transitions an active loan to RETURNED. The status and
// returned_at preconditions live inside the UPDATE itself so a
// concurrent sweep or double return can never clobber a closed loan.
func (r *loanRepository) CloseLoan(ctx context.Context, id uint, closedBy uint, returnedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ? AND status IN ? AND returned_at IS NULL", id, models.ActiveLoanStatuses).
		Updates(map[string]interface{}{
			"status":      models.LoanStatusReturned,
			"returned_at": returnedAt,
			"closed_by":   closedBy,
		})
	return res.RowsAffected, res.Error
}

// MarkOverdue flags stale TAKEN loans as OVERDUE in one batched update.
// The returned_at IS NULL predicate keeps a loan returned between cutoff
// computation and this update out of the batch.
func (r *loanRepository) MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status = ? AND taken_at <= ? AND returned_at IS NULL", models.LoanStatusTaken, cutoff).
		Update("status", models.LoanStatusOverdue)
	return res.RowsAffected, res.Error
}

// List lists loans with optional status/student filters and pagination
func (r *loanRepository) List(ctx context.Context, status string, studentID uint, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Loan{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if studentID != 0 {
		query = query.Where("student_id = ?", studentID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Student").
		Preload("Item").
		Order("taken_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// CountByStatus counts loans in any of the given statuses
func (r *loanRepository) CountByStatus(ctx context.Context, statuses ...string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}

// CountReturnedBetween counts loans returned inside [from, to)
func (r *loanRepository) CountReturnedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("status = ?", models.LoanStatusReturned).
		Where("returned_at >= ? AND returned_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// CountActiveForItem counts loans blocking the given item
func (r *loanRepository) CountActiveForItem(ctx context.Context, itemID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("item_id = ? AND status IN ?", itemID, models.ActiveLoanStatuses).
		Count(&count).Error
	return count, err
}
