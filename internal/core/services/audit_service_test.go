package services

import (
	"context"
	"testing"
	"time"

	"dormdesk-lendtrack/internal/adapters/persistence/repositories"
	"dormdesk-lendtrack/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRecord(t *testing.T) {
	repo := newFakeAuditRepo()
	svc := NewAuditService(repo, nil)

	actor := uint(7)
	entity := uint(42)
	svc.Record(context.Background(), AuditEvent{
		ActorID:  &actor,
		Action:   domain.ActionLoanCreate,
		Entity:   domain.EntityLoan,
		EntityID: &entity,
		Meta:     ClientMeta{IP: "10.0.0.7", UserAgent: "test"},
		Diff:     map[string]interface{}{"item_id": 3},
	})

	require.Equal(t, 1, repo.count())
	entries := repo.byAction(domain.ActionLoanCreate)
	require.Len(t, entries, 1)
	assert.Equal(t, actor, *entries[0].ActorID)
	assert.Equal(t, "10.0.0.7", entries[0].IP)
	assert.JSONEq(t, `{"item_id":3}`, entries[0].Diff)
}

func TestAuditRecordSwallowsWriteFailure(t *testing.T) {
	repo := newFakeAuditRepo()
	repo.failWrites = true
	svc := NewAuditService(repo, nil)

	// Must not panic or propagate; the business operation goes on
	svc.Record(context.Background(), AuditEvent{
		Action: domain.ActionUserLogin,
		Entity: domain.EntityUser,
	})
	assert.Zero(t, repo.count())
}

func TestAuditRecordUnmarshalableDiff(t *testing.T) {
	repo := newFakeAuditRepo()
	svc := NewAuditService(repo, nil)

	// A channel cannot be marshaled; the entry is still written, diff empty
	svc.Record(context.Background(), AuditEvent{
		Action: domain.ActionUserLogin,
		Entity: domain.EntityUser,
		Diff:   make(chan int),
	})

	require.Equal(t, 1, repo.count())
	entries := repo.byAction(domain.ActionUserLogin)
	assert.Empty(t, entries[0].Diff)
}

func TestAuditQueryNewestFirstWithFilters(t *testing.T) {
	repo := newFakeAuditRepo()
	svc := NewAuditService(repo, nil)

	actorA, actorB := uint(1), uint(2)
	svc.Record(context.Background(), AuditEvent{ActorID: &actorA, Action: domain.ActionUserLogin, Entity: domain.EntityUser})
	svc.Record(context.Background(), AuditEvent{ActorID: &actorB, Action: domain.ActionLoanCreate, Entity: domain.EntityLoan})
	svc.Record(context.Background(), AuditEvent{ActorID: &actorA, Action: domain.ActionLoanReturn, Entity: domain.EntityLoan})

	all, total, err := svc.Query(context.Background(), repositories.AuditFilter{}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, domain.ActionLoanReturn, all[0].Action)
	assert.Equal(t, domain.ActionUserLogin, all[2].Action)

	byActor, total, err := svc.Query(context.Background(), repositories.AuditFilter{ActorID: actorA}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, byActor, 2)

	byEntity, total, err := svc.Query(context.Background(), repositories.AuditFilter{Entity: domain.EntityLoan}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, byEntity, 2)
}

func TestAuditQueryTimeWindow(t *testing.T) {
	repo := newFakeAuditRepo()
	svc := NewAuditService(repo, nil)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	at := base
	repo.clock = func() time.Time { return at }

	svc.Record(context.Background(), AuditEvent{Action: domain.ActionUserLogin, Entity: domain.EntityUser})
	at = base.Add(time.Hour)
	svc.Record(context.Background(), AuditEvent{Action: domain.ActionLoanCreate, Entity: domain.EntityLoan})
	at = base.Add(2 * time.Hour)
	svc.Record(context.Background(), AuditEvent{Action: domain.ActionLoanReturn, Entity: domain.EntityLoan})

	// Closed-open window: from inclusive, to exclusive
	window, total, err := svc.Query(context.Background(), repositories.AuditFilter{
		FromTime: base.Add(time.Hour),
		ToTime:   base.Add(2 * time.Hour),
	}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, window, 1)
	assert.Equal(t, domain.ActionLoanCreate, window[0].Action)

	// Open-ended lower bound
	fromOnly, total, err := svc.Query(context.Background(), repositories.AuditFilter{
		FromTime: base.Add(30 * time.Minute),
	}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, fromOnly, 2)
}
