package services

import (
	"context"
	"errors"
	"log"
	"time"

	"dormdesk-lendtrack/internal/adapters/persistence/models"
	"dormdesk-lendtrack/internal/adapters/persistence/repositories"
	"dormdesk-lendtrack/internal/core/domain"
	"dormdesk-lendtrack/internal/pkg/metrics"

	"gorm.io/gorm"
)

// LoanService is the loan ledger: the state machine governing item
// loans and returns. Transitions:
//
//	TAKEN --(sweep past max age)--> OVERDUE
//	TAKEN --(return)--> RETURNED
//	OVERDUE --(return)--> RETURNED
//
// RETURNED is terminal. At most one loan per item may be TAKEN or
// OVERDUE at any time.
type LoanService struct {
	loanRepo     repositories.LoanRepository
	studentRepo  repositories.StudentRepository
	itemRepo     repositories.ItemRepository
	auditService *AuditService
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repositories.LoanRepository,
	studentRepo repositories.StudentRepository,
	itemRepo repositories.ItemRepository,
	auditService *AuditService,
	m *metrics.Metrics,
) *LoanService {
	return &LoanService{
		loanRepo:     loanRepo,
		studentRepo:  studentRepo,
		itemRepo:     itemRepo,
		auditService: auditService,
		metrics:      m,
		now:          time.Now,
	}
}

// CreateLoanInput represents loan creation input
type CreateLoanInput struct {
	StudentNo    string `json:"student_no"`
	ItemID       uint   `json:"item_id"`
	Destination  string `json:"destination"`
	CardReceived bool   `json:"card_received"`
	Notes        string `json:"notes"`
}

// Create opens a loan. Preconditions are checked in order: the student
// must exist (students are never auto-created here), the item must
// exist and be active, and the item must have no active loan. The last
// check and the insert run under the repository's item row lock, so two
// concurrent calls for the same item cannot both succeed.
func (s *LoanService) Create(ctx context.Context, input *CreateLoanInput, createdBy uint, meta ClientMeta) (*models.Loan, error) {
	// 1. Resolve the borrower
	student, err := s.studentRepo.GetByStudentNo(ctx, input.StudentNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}

	// 2. The item must exist and be active
	item, err := s.itemRepo.GetByID(ctx, input.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrItemUnavailable
		}
		return nil, err
	}
	if !item.IsActive {
		return nil, domain.ErrItemUnavailable
	}

	// 3. Availability check + insert, atomic per item
	loan := &models.Loan{
		StudentID:    student.ID,
		ItemID:       item.ID,
		Destination:  input.Destination,
		CardReceived: input.CardReceived,
		TakenAt:      s.now(),
		Status:       models.LoanStatusTaken,
		CreatedBy:    createdBy,
		Notes:        input.Notes,
	}
	if err := s.loanRepo.CreateForItem(ctx, loan); err != nil {
		return nil, err
	}
	loan.Student = student
	loan.Item = item

	if s.metrics != nil {
		s.metrics.LoanCreated.Inc()
	}
	s.auditService.Record(ctx, AuditEvent{
		ActorID:  &createdBy,
		Action:   domain.ActionLoanCreate,
		Entity:   domain.EntityLoan,
		EntityID: &loan.ID,
		Meta:     meta,
		Diff: map[string]interface{}{
			"student_no":    student.StudentNo,
			"item_id":       item.ID,
			"item_name":     item.Name,
			"destination":   loan.Destination,
			"card_received": loan.CardReceived,
			"taken_at":      loan.TakenAt,
			"status":        loan.Status,
		},
	})

	log.Printf("📦 Loan created: item %d → student %s", item.ID, student.StudentNo)
	return loan, nil
}

// Return closes a loan. The transition is a single conditional update;
// a loan already returned yields ErrLoanAlreadyReturned so callers can
// tell a no-op from a success — the ledger never silently no-ops.
func (s *LoanService) Return(ctx context.Context, loanID uint, closedBy uint, meta ClientMeta) (*models.Loan, error) {
	returnedAt := s.now()

	rows, err := s.loanRepo.CloseLoan(ctx, loanID, closedBy, returnedAt)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Missing or already returned; disambiguate with a read
		loan, err := s.loanRepo.GetByID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrLoanNotFound
			}
			return nil, err
		}
		if loan.Status == models.LoanStatusReturned {
			return nil, domain.ErrLoanAlreadyReturned
		}
		return nil, domain.ErrLoanNotFound
	}

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.LoanReturned.Inc()
	}
	s.auditService.Record(ctx, AuditEvent{
		ActorID:  &closedBy,
		Action:   domain.ActionLoanReturn,
		Entity:   domain.EntityLoan,
		EntityID: &loan.ID,
		Meta:     meta,
		Diff: map[string]interface{}{
			"status":      loan.Status,
			"returned_at": loan.ReturnedAt,
			"closed_by":   closedBy,
		},
	})

	log.Printf("📦 Loan returned: %d", loanID)
	return loan, nil
}

// GetByID gets a loan with its relations
func (s *LoanService) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// List lists loans with optional status/student filters
func (s *LoanService) List(ctx context.Context, status string, studentID uint, offset, limit int) ([]*models.Loan, int64, error) {
	return s.loanRepo.List(ctx, status, studentID, offset, limit)
}

// ListAvailableItems lists active items with no active loan. The
// repository reuses the exact predicate the creation guard checks.
func (s *LoanService) ListAvailableItems(ctx context.Context) ([]*models.Item, error) {
	return s.itemRepo.ListAvailable(ctx)
}
