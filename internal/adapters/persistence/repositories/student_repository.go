package repositories

import (
	"context"

	"dormdesk-lendtrack/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// studentRepository implements StudentRepository interface
type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

// Create creates a new student
func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// GetByID gets a student by ID
func (r *studentRepository) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// GetByStudentNo gets a student by student number
func (r *studentRepository) GetByStudentNo(ctx context.Context, studentNo string) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Where("student_no = ?", studentNo).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// Update updates a student
func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

// List lists students with optional search and pagination
func (r *studentRepository) List(ctx context.Context, search string, offset, limit int) ([]*models.Student, int64, error) {
	var students []*models.Student
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Student{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("student_no LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("last_name, first_name").
		Offset(offset).
		Limit(limit).
		Find(&students).Error

	return students, total, err
}

// ExistsByStudentNo checks if a student number exists
func (r *studentRepository) ExistsByStudentNo(ctx context.Context, studentNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Where("student_no = ?", studentNo).Count(&count).Error
	return count > 0, err
}

// Count counts all students
func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Count(&count).Error
	return count, err
}
