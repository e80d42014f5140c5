package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"dormdesk-lendtrack/internal/adapters/persistence/models"
	"dormdesk-lendtrack/internal/adapters/persistence/repositories"
	"dormdesk-lendtrack/internal/core/domain"

	"gorm.io/gorm"
)

// StudentService handles the borrower registry. Students are not login
// identities; they only appear as loan counterparties.
type StudentService struct {
	studentRepo  repositories.StudentRepository
	auditService *AuditService
}

// NewStudentService creates a new student service
func NewStudentService(studentRepo repositories.StudentRepository, auditService *AuditService) *StudentService {
	return &StudentService{
		studentRepo:  studentRepo,
		auditService: auditService,
	}
}

// CreateStudentInput represents student creation input
type CreateStudentInput struct {
	StudentNo string `json:"student_no"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Room      string `json:"room"`
}

// UpdateStudentInput represents student update input
type UpdateStudentInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Room      *string `json:"room"`
}

// Create registers a new student
func (s *StudentService) Create(ctx context.Context, input *CreateStudentInput, actorID uint, meta ClientMeta) (*models.Student, error) {
	studentNo := strings.TrimSpace(input.StudentNo)

	exists, err := s.studentRepo.ExistsByStudentNo(ctx, studentNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrStudentNumberTaken
	}

	student := &models.Student{
		StudentNo: studentNo,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Room:      strings.TrimSpace(input.Room),
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	s.auditService.Record(ctx, AuditEvent{
		ActorID:  &actorID,
		Action:   domain.ActionStudentCreate,
		Entity:   domain.EntityStudent,
		EntityID: &student.ID,
		Meta:     meta,
		Diff: map[string]interface{}{
			"student_no": student.StudentNo,
			"first_name": student.FirstName,
			"last_name":  student.LastName,
			"room":       student.Room,
		},
	})

	log.Printf("✅ Student registered: %s", student.StudentNo)
	return student, nil
}

// GetByID gets a student by ID
func (s *StudentService) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

// List lists students with optional search
func (s *StudentService) List(ctx context.Context, search string, offset, limit int) ([]*models.Student, int64, error) {
	return s.studentRepo.List(ctx, search, offset, limit)
}

// Update applies edits (names, room); the student number is immutable
func (s *StudentService) Update(ctx context.Context, id uint, input *UpdateStudentInput, actorID uint, meta ClientMeta) (*models.Student, error) {
	student, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}

	if input.FirstName != nil && *input.FirstName != student.FirstName {
		student.FirstName = *input.FirstName
		changes["first_name"] = student.FirstName
	}
	if input.LastName != nil && *input.LastName != student.LastName {
		student.LastName = *input.LastName
		changes["last_name"] = student.LastName
	}
	if input.Room != nil && *input.Room != student.Room {
		student.Room = *input.Room
		changes["room"] = student.Room
	}

	if len(changes) == 0 {
		return student, nil
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}

	s.auditService.Record(ctx, AuditEvent{
		ActorID:  &actorID,
		Action:   domain.ActionStudentUpdate,
		Entity:   domain.EntityStudent,
		EntityID: &student.ID,
		Meta:     meta,
		Diff:     changes,
	})

	return student, nil
}
