package services

import (
	"context"
	"log"
	"time"

	"dormdesk-lendtrack/internal/adapters/persistence/repositories"
	"dormdesk-lendtrack/internal/core/domain"
	"dormdesk-lendtrack/internal/pkg/metrics"
)

// SweeperService is the recurring background task that flags stale
// TAKEN loans as OVERDUE and prunes expired refresh tokens. It is an
// explicit long-lived object with a start/stop lifecycle so tests can
// drive runs deterministically.
type SweeperService struct {
	loanRepo     repositories.LoanRepository
	tokenRepo    repositories.RefreshTokenRepository
	auditService *AuditService
	maxLoanHours int
	interval     time.Duration
	metrics      *metrics.Metrics
	now          func() time.Time
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewSweeperService creates a new sweeper service
func NewSweeperService(
	loanRepo repositories.LoanRepository,
	tokenRepo repositories.RefreshTokenRepository,
	auditService *AuditService,
	maxLoanHours int,
	interval time.Duration,
	m *metrics.Metrics,
) *SweeperService {
	return &SweeperService{
		loanRepo:     loanRepo,
		tokenRepo:    tokenRepo,
		auditService: auditService,
		maxLoanHours: maxLoanHours,
		interval:     interval,
		metrics:      m,
		now:          time.Now,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start launches the sweep loop in a background goroutine
func (s *SweeperService) Start() {
	log.Printf("🚀 Overdue sweeper started (every %s, max loan age %dh)", s.interval, s.maxLoanHours)
	go s.run()
}

// Stop stops the sweep loop and waits for it to exit
func (s *SweeperService) Stop() {
	close(s.stopChan)
	<-s.doneChan
	log.Println("🛑 Overdue sweeper stopped")
}

func (s *SweeperService) run() {
	defer close(s.doneChan)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(context.Background()); err != nil {
				log.Printf("❌ Overdue sweep failed: %v", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// RunOnce performs a single sweep and returns the number of loans
// flagged overdue. The batch update carries its own status and
// returned_at preconditions, so a loan returned mid-sweep is never
// resurrected as overdue. A run that changes nothing writes no audit
// entry.
func (s *SweeperService) RunOnce(ctx context.Context) (int64, error) {
	start := s.now()
	cutoff := start.Add(-time.Duration(s.maxLoanHours) * time.Hour)

	count, err := s.loanRepo.MarkOverdue(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	// Token hygiene rides on the same schedule: refresh tokens past
	// their expiry are dead rows. A failed cleanup never fails the sweep.
	if pruned, perr := s.tokenRepo.DeleteExpired(ctx); perr != nil {
		log.Printf("⚠️ Expired refresh token cleanup failed: %v", perr)
	} else if pruned > 0 {
		log.Printf("🧹 Pruned %d expired refresh tokens", pruned)
	}

	if s.metrics != nil {
		s.metrics.SweepRuns.Inc()
		s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}

	if count > 0 {
		if s.metrics != nil {
			s.metrics.SweepOverdue.Add(float64(count))
		}
		s.auditService.Record(ctx, AuditEvent{
			Action: domain.ActionLoanOverdue,
			Entity: domain.EntityLoan,
			Diff: map[string]interface{}{
				"overdue_count":  count,
				"max_loan_hours": s.maxLoanHours,
			},
		})
		log.Printf("⏰ Sweep flagged %d loans overdue (cutoff %s)", count, cutoff.Format(time.RFC3339))
	}

	return count, nil
}
