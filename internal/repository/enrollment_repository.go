package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"enrollwall/internal/model"
)

// EnrollmentFilter narrows enrollment listings. Zero values match everything.
type EnrollmentFilter struct {
	StudentID uint
	CourseID  uint
	// TutorID matches enrollments whose course is taught by the tutor.
	TutorID uint
	Status  model.EnrollmentStatus
}

// EnrollmentRepository defines enrollment persistence operations.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	Update(ctx context.Context, enrollment *model.Enrollment) error
	FindByID(ctx context.Context, id uint) (*model.Enrollment, error)
	List(ctx context.Context, filter EnrollmentFilter) ([]model.Enrollment, error)
	Delete(ctx context.Context, id uint) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// Create creates a new enrollment record.
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(enrollment).Error
}

// Update writes every column of an existing enrollment.
func (r *enrollmentRepository) Update(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(enrollment).Error
}

// FindByID finds an enrollment by ID.
func (r *enrollmentRepository) FindByID(ctx context.Context, id uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	if err := r.db.WithContext(ctx).First(&enrollment, id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// List lists enrollments matching filter.
func (r *enrollmentRepository) List(ctx context.Context, filter EnrollmentFilter) ([]model.Enrollment, error) {
	enrollments := []model.Enrollment{}
	q := r.db.WithContext(ctx).Model(&model.Enrollment{}).Select("enrollments.*")
	if filter.TutorID != 0 {
		q = q.Joins("JOIN courses ON courses.id = enrollments.course_id").
			Where("courses.tutor_id = ?", filter.TutorID)
	}
	if filter.StudentID != 0 {
		q = q.Where("enrollments.student_id = ?", filter.StudentID)
	}
	if filter.CourseID != 0 {
		q = q.Where("enrollments.course_id = ?", filter.CourseID)
	}
	if filter.Status != "" {
		q = q.Where("enrollments.status = ?", filter.Status)
	}
	if err := q.Order("enrollments.id").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

// Delete deletes an enrollment by ID.
func (r *enrollmentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Enrollment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
