package services

import (
	"context"
	"testing"

	"dormdesk-lendtrack/internal/adapters/persistence/models"
	"dormdesk-lendtrack/internal/core/domain"
	"dormdesk-lendtrack/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture(t *testing.T) (*UserService, *fakeUserRepo, *fakeAuditRepo) {
	t.Helper()
	users := newFakeUserRepo()
	audit := newFakeAuditRepo()
	return NewUserService(users, NewAuditService(audit, nil)), users, audit
}

func TestCreateUser(t *testing.T) {
	svc, _, audit := newUserFixture(t)

	user, err := svc.Create(context.Background(), &CreateUserInput{
		Email:    "New.Clerk@DormDesk.local",
		Password: "longenough",
		FullName: "New Clerk",
		Role:     "CLERK",
	}, 1, ClientMeta{})
	require.NoError(t, err)

	// Email normalized, password hashed, audited
	assert.Equal(t, "new.clerk@dormdesk.local", user.Email)
	assert.NotEqual(t, "longenough", user.Password)
	assert.True(t, password.Verify("longenough", user.Password))
	assert.True(t, user.IsActive)
	assert.Len(t, audit.byAction(domain.ActionUserCreate), 1)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	_, err := svc.Create(context.Background(), &CreateUserInput{
		Email:    "x@dormdesk.local",
		Password: "longenough",
		Role:     "SUPERUSER",
	}, 1, ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	users.add(&models.User{Email: "taken@dormdesk.local", Role: "CLERK", IsActive: true})

	_, err := svc.Create(context.Background(), &CreateUserInput{
		Email:    "Taken@dormdesk.local",
		Password: "longenough",
		Role:     "CLERK",
	}, 1, ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUpdateUserSelfGuards(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	admin := users.add(&models.User{Email: "admin@dormdesk.local", Role: "ADMIN", IsActive: true})

	newRole := "CLERK"
	_, err := svc.Update(context.Background(), admin.ID, &UpdateUserInput{Role: &newRole}, admin.ID, ClientMeta{})
	assert.ErrorIs(t, err, ErrCannotChangeOwnRole)

	inactive := false
	_, err = svc.Update(context.Background(), admin.ID, &UpdateUserInput{IsActive: &inactive}, admin.ID, ClientMeta{})
	assert.ErrorIs(t, err, ErrCannotDeactivateSelf)
}

func TestUpdateUserByAdmin(t *testing.T) {
	svc, users, audit := newUserFixture(t)
	admin := users.add(&models.User{Email: "admin@dormdesk.local", Role: "ADMIN", IsActive: true})
	clerk := users.add(&models.User{Email: "clerk@dormdesk.local", Role: "CLERK", IsActive: true})

	newRole := "AUDITOR"
	inactive := false
	updated, err := svc.Update(context.Background(), clerk.ID, &UpdateUserInput{
		Role:     &newRole,
		IsActive: &inactive,
	}, admin.ID, ClientMeta{})
	require.NoError(t, err)

	assert.Equal(t, "AUDITOR", updated.Role)
	assert.False(t, updated.IsActive)
	assert.Len(t, audit.byAction(domain.ActionUserUpdate), 1)
}

func TestChangePassword(t *testing.T) {
	svc, users, _ := newUserFixture(t)

	hashed, err := password.Hash("old-password")
	require.NoError(t, err)
	user := users.add(&models.User{Email: "clerk@dormdesk.local", Password: hashed, Role: "CLERK", IsActive: true})

	err = svc.ChangePassword(context.Background(), user.ID, "wrong-old", "new-password")
	assert.ErrorIs(t, err, ErrOldPasswordWrong)

	err = svc.ChangePassword(context.Background(), user.ID, "old-password", "new-password")
	require.NoError(t, err)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, password.Verify("new-password", stored.Password))
}
