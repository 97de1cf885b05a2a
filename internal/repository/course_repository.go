package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"enrollwall/internal/model"
)

// CourseRepository defines course persistence operations.
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	Update(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id uint) (*model.Course, error)
	FindByTitle(ctx context.Context, title string) (*model.Course, error)
	List(ctx context.Context) ([]model.Course, error)
	ListByTutor(ctx context.Context, tutorID uint) ([]model.Course, error)
	// Delete removes the course together with its enrollments.
	Delete(ctx context.Context, id uint) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// Create creates a new course.
func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(course).Error
}

// Update writes every column of an existing course.
func (r *courseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(course).Error
}

// FindByID finds a course by ID.
func (r *courseRepository) FindByID(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByTitle finds a course by its unique title.
func (r *courseRepository) FindByTitle(ctx context.Context, title string) (*model.Course, error) {
	var course model.Course
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// List lists all courses.
func (r *courseRepository) List(ctx context.Context) ([]model.Course, error) {
	courses := []model.Course{}
	if err := r.db.WithContext(ctx).Order("id").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// ListByTutor lists the courses taught by a tutor.
func (r *courseRepository) ListByTutor(ctx context.Context, tutorID uint) ([]model.Course, error) {
	courses := []model.Course{}
	if err := r.db.WithContext(ctx).Where("tutor_id = ?", tutorID).Order("id").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// Delete deletes a course and its enrollments in one transaction.
func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Course{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
