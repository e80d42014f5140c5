package services

import (
	"context"
	"time"

	"dormdesk-lendtrack/internal/adapters/persistence/models"
	"dormdesk-lendtrack/internal/adapters/persistence/repositories"
)

// DashboardService aggregates current ledger state for the front desk.
type DashboardService struct {
	loanRepo    repositories.LoanRepository
	itemRepo    repositories.ItemRepository
	studentRepo repositories.StudentRepository
	now         func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	loanRepo repositories.LoanRepository,
	itemRepo repositories.ItemRepository,
	studentRepo repositories.StudentRepository,
) *DashboardService {
	return &DashboardService{
		loanRepo:    loanRepo,
		itemRepo:    itemRepo,
		studentRepo: studentRepo,
		now:         time.Now,
	}
}

// Stats represents the dashboard counters
type Stats struct {
	ItemsOut      int64 `json:"items_out"`
	Overdue       int64 `json:"overdue"`
	ReturnsToday  int64 `json:"returns_today"`
	Available     int64 `json:"available"`
	TotalStudents int64 `json:"total_students"`
	TotalItems    int64 `json:"total_items"`
}

// GetStats computes the dashboard counters. Pure aggregation, no side
// effects. returns_today is bounded by the local calendar day.
func (s *DashboardService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	var err error
	if stats.ItemsOut, err = s.loanRepo.CountByStatus(ctx, models.ActiveLoanStatuses...); err != nil {
		return nil, err
	}
	if stats.Overdue, err = s.loanRepo.CountByStatus(ctx, models.LoanStatusOverdue); err != nil {
		return nil, err
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if stats.ReturnsToday, err = s.loanRepo.CountReturnedBetween(ctx, startOfDay, startOfDay.Add(24*time.Hour)); err != nil {
		return nil, err
	}

	available, err := s.itemRepo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	stats.Available = int64(len(available))

	if stats.TotalStudents, err = s.studentRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalItems, err = s.itemRepo.Count(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}
