package services

import (
	"context"
	"testing"
	"time"

	"dormdesk-lendtrack/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	students := newFakeStudentRepo()
	items := newFakeItemRepo()
	loans := newFakeLoanRepo(items)

	svc := NewDashboardService(loans, items, students)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	students.add(&models.Student{StudentNo: "S1", FirstName: "Mira"})
	students.add(&models.Student{StudentNo: "S2", FirstName: "Jonas"})

	out := items.add(&models.Item{Name: "Vacuum", IsActive: true})
	overdueItem := items.add(&models.Item{Name: "Iron", IsActive: true})
	free := items.add(&models.Item{Name: "Projector", IsActive: true})

	ctx := context.Background()

	// One loan out, one overdue, one returned earlier today
	require.NoError(t, loans.CreateForItem(ctx, &models.Loan{
		StudentID: 1, ItemID: out.ID, TakenAt: now.Add(-time.Hour), Status: models.LoanStatusTaken, CreatedBy: 1,
	}))
	require.NoError(t, loans.CreateForItem(ctx, &models.Loan{
		StudentID: 2, ItemID: overdueItem.ID, TakenAt: now.Add(-8 * time.Hour), Status: models.LoanStatusOverdue, CreatedBy: 1,
	}))
	returned := &models.Loan{
		StudentID: 1, ItemID: free.ID, TakenAt: now.Add(-6 * time.Hour), Status: models.LoanStatusTaken, CreatedBy: 1,
	}
	require.NoError(t, loans.CreateForItem(ctx, returned))
	_, err := loans.CloseLoan(ctx, returned.ID, 1, now.Add(-time.Hour))
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.ItemsOut)
	assert.Equal(t, int64(1), stats.Overdue)
	assert.Equal(t, int64(1), stats.ReturnsToday)
	assert.Equal(t, int64(1), stats.Available)
	assert.Equal(t, int64(2), stats.TotalStudents)
	assert.Equal(t, int64(3), stats.TotalItems)
}

func TestDashboardReturnsTodayWindow(t *testing.T) {
	students := newFakeStudentRepo()
	items := newFakeItemRepo()
	loans := newFakeLoanRepo(items)

	svc := NewDashboardService(loans, items, students)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	item := items.add(&models.Item{Name: "Vacuum", IsActive: true})

	// Returned yesterday: outside the window
	old := &models.Loan{StudentID: 1, ItemID: item.ID, TakenAt: now.Add(-30 * time.Hour), Status: models.LoanStatusTaken, CreatedBy: 1}
	require.NoError(t, loans.CreateForItem(ctx, old))
	_, err := loans.CloseLoan(ctx, old.ID, 1, now.Add(-26*time.Hour))
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.ReturnsToday)
}
