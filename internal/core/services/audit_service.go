package services

import (
	"context"
	"encoding/json"
	"log"

	"dormdesk-lendtrack/internal/adapters/persistence/models"
	"dormdesk-lendtrack/internal/adapters/persistence/repositories"
	"dormdesk-lendtrack/internal/core/domain"
	"dormdesk-lendtrack/internal/pkg/metrics"
)

// ClientMeta carries request origin details into audit entries.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// AuditEvent describes one security- or ledger-relevant event.
type AuditEvent struct {
	ActorID  *uint
	Action   domain.AuditAction
	Entity   string
	EntityID *uint
	Meta     ClientMeta
	Diff     interface{} // marshaled to JSON, may be nil
}

// AuditService writes and reads the append-only audit trail.
type AuditService struct {
	auditRepo repositories.AuditRepository
	metrics   *metrics.Metrics
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repositories.AuditRepository, m *metrics.Metrics) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		metrics:   m,
	}
}

// Record appends an audit entry. A failed write never propagates to the
// triggering business operation: it is logged and dropped, trading audit
// completeness for ledger availability.
func (s *AuditService) Record(ctx context.Context, event AuditEvent) {
	entry := &models.AuditEntry{
		ActorID:   event.ActorID,
		Action:    event.Action,
		Entity:    event.Entity,
		EntityID:  event.EntityID,
		IP:        event.Meta.IP,
		UserAgent: event.Meta.UserAgent,
	}

	if event.Diff != nil {
		payload, err := json.Marshal(event.Diff)
		if err != nil {
			log.Printf("⚠️ Audit diff for %s not serializable: %v", event.Action, err)
		} else {
			entry.Diff = string(payload)
		}
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("⚠️ Audit write dropped [%s %s]: %v", event.Action, event.Entity, err)
		if s.metrics != nil {
			s.metrics.AuditWriteFails.Inc()
		}
	}
}

// Query lists audit entries newest-first for operator review.
func (s *AuditService) Query(ctx context.Context, filter repositories.AuditFilter, offset, limit int) ([]*models.AuditEntry, int64, error) {
	return s.auditRepo.Query(ctx, filter, offset, limit)
}
