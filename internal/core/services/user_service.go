package services

import (
	"context"
	"errors"
	"log"

	"dormdesk-lendtrack/internal/adapters/persistence/models"
	"dormdesk-lendtrack/internal/adapters/persistence/repositories"
	"dormdesk-lendtrack/internal/core/domain"
	"dormdesk-lendtrack/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrOldPasswordWrong     = errors.New("old password is incorrect")
	ErrCannotChangeOwnRole  = errors.New("cannot change your own role")
	ErrCannotDeactivateSelf = errors.New("cannot deactivate your own account")
)

// UserService handles staff identity management. Identities are only
// created by Admin-privileged operations and never hard-deleted.
type UserService struct {
	userRepo     repositories.UserRepository
	auditService *AuditService
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, auditService *AuditService) *UserService {
	return &UserService{
		userRepo:     userRepo,
		auditService: auditService,
	}
}

// CreateUserInput represents user creation input (Admin only)
type CreateUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// UpdateUserInput represents user update input (Admin only)
type UpdateUserInput struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// Create creates a new staff identity
func (s *UserService) Create(ctx context.Context, input *CreateUserInput, actorID uint, meta ClientMeta) (*models.User, error) {
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	email := NormalizeEmail(input.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: hashed,
		FullName: input.FullName,
		Role:     role.String(),
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.auditService.Record(ctx, AuditEvent{
		ActorID:  &actorID,
		Action:   domain.ActionUserCreate,
		Entity:   domain.EntityUser,
		EntityID: &user.ID,
		Meta:     meta,
		Diff: map[string]interface{}{
			"email":     user.Email,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})

	log.Printf("✅ User created: %s (%s)", user.Email, user.Role)
	return user, nil
}

// GetByID gets a user by ID
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// List lists users with pagination
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, offset, limit)
}

// Update applies Admin edits (full name, role, active flag) to a user
func (s *UserService) Update(ctx context.Context, id uint, input *UpdateUserInput, actorID uint, meta ClientMeta) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}

	if input.FullName != nil && *input.FullName != user.FullName {
		user.FullName = *input.FullName
		changes["full_name"] = user.FullName
	}
	if input.Role != nil {
		role, err := domain.ParseRole(*input.Role)
		if err != nil {
			return nil, err
		}
		if id == actorID && role.String() != user.Role {
			return nil, ErrCannotChangeOwnRole
		}
		if role.String() != user.Role {
			user.Role = role.String()
			changes["role"] = user.Role
		}
	}
	if input.IsActive != nil && *input.IsActive != user.IsActive {
		if id == actorID && !*input.IsActive {
			return nil, ErrCannotDeactivateSelf
		}
		user.IsActive = *input.IsActive
		changes["is_active"] = user.IsActive
	}

	if len(changes) == 0 {
		return user, nil
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditService.Record(ctx, AuditEvent{
		ActorID:  &actorID,
		Action:   domain.ActionUserUpdate,
		Entity:   domain.EntityUser,
		EntityID: &user.ID,
		Meta:     meta,
		Diff:     changes,
	})

	return user, nil
}

// ChangePassword changes the caller's own password
func (s *UserService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !password.Verify(oldPassword, user.Password) {
		return ErrOldPasswordWrong
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	return s.userRepo.Update(ctx, user)
}
