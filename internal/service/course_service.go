package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"enrollwall/internal/cache"
	apperrors "enrollwall/internal/errors"
	"enrollwall/internal/model"
	"enrollwall/internal/repository"
)

const (
	msgCourseNotFound = "Course not found."
	msgTitleTaken     = "Course title already registered."
)

// CourseInput carries the writable course fields.
type CourseInput struct {
	Title       string
	Description string
	Duration    int
	TutorID     *uint
}

// CourseService registers and maintains courses.
type CourseService interface {
	CreateCourse(ctx context.Context, in CourseInput) (*model.Course, error)
	UpdateCourse(ctx context.Context, id uint, in CourseInput) (*model.Course, error)
	DeleteCourse(ctx context.Context, id uint) error
	GetCourse(ctx context.Context, id uint) (*model.Course, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
}

type courseService struct {
	repo  repository.CourseRepository
	guard RoleGuard
	cache *cache.Client
}

// NewCourseService creates a new course service.
func NewCourseService(repo repository.CourseRepository, guard RoleGuard, cache *cache.Client) CourseService {
	return &courseService{
		repo:  repo,
		guard: guard,
		cache: cache,
	}
}

// validate checks in against the store. selfID is the course being updated,
// zero on create, so a course never conflicts with its own title.
func (s *courseService) validate(ctx context.Context, in CourseInput, selfID uint) error {
	if in.Duration <= 0 {
		return apperrors.Domain(apperrors.ErrValidation, "duration must be a positive integer")
	}

	existing, err := s.repo.FindByTitle(ctx, in.Title)
	switch {
	case err == nil && existing.ID != selfID:
		return apperrors.Domain(apperrors.ErrDuplicateKey, msgTitleTaken)
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("check course title: %w", err)
	}

	if in.TutorID != nil {
		if err := s.guard.RequireRole(ctx, *in.TutorID, model.RoleTutor); err != nil {
			return err
		}
	}
	return nil
}

// CreateCourse validates the tutor and title before persisting a new course.
func (s *courseService) CreateCourse(ctx context.Context, in CourseInput) (*model.Course, error) {
	if err := s.validate(ctx, in, 0); err != nil {
		return nil, err
	}

	course := &model.Course{
		Title:       in.Title,
		Description: in.Description,
		Duration:    in.Duration,
		TutorID:     in.TutorID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, translateWriteErr(err, msgTitleTaken)
	}

	slog.InfoContext(ctx, "course created", "course_id", course.ID, "title", course.Title)
	return course, nil
}

// UpdateCourse replaces every writable field after re-validating the new values.
func (s *courseService) UpdateCourse(ctx context.Context, id uint, in CourseInput) (*model.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateReadErr(err, msgCourseNotFound)
	}
	if err := s.validate(ctx, in, id); err != nil {
		return nil, err
	}

	course.Title = in.Title
	course.Description = in.Description
	course.Duration = in.Duration
	course.TutorID = in.TutorID

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, translateWriteErr(err, msgTitleTaken)
	}
	_ = s.cache.Delete(ctx, courseCacheKey(id))

	slog.InfoContext(ctx, "course updated", "course_id", id)
	return course, nil
}

// DeleteCourse removes the course and its enrollments.
func (s *courseService) DeleteCourse(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateReadErr(err, msgCourseNotFound)
	}
	_ = s.cache.Delete(ctx, courseCacheKey(id))

	slog.InfoContext(ctx, "course deleted", "course_id", id)
	return nil
}

// GetCourse retrieves a course by ID with caching.
func (s *courseService) GetCourse(ctx context.Context, id uint) (*model.Course, error) {
	var cached model.Course
	if s.cache.GetJSON(ctx, courseCacheKey(id), &cached) {
		return &cached, nil
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateReadErr(err, msgCourseNotFound)
	}

	_ = s.cache.SetJSON(ctx, courseCacheKey(id), course, entityCacheTTL)
	return course, nil
}

// ListCourses lists all courses.
func (s *courseService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return s.repo.List(ctx)
}
