package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	apperrors "enrollwall/internal/errors"
	"enrollwall/internal/model"
	"enrollwall/internal/queue"
	"enrollwall/internal/repository"
)

const (
	msgEnrollmentNotFound = "Enrollment not found."
	msgStudentNotFound    = "Student not found."
)

// EnrollmentOptions tunes the lifecycle manager.
type EnrollmentOptions struct {
	// StrictTerminalStatus makes completed and dropped final: Complete and
	// Drop on such enrollments fail with ErrInvalidTransition.
	StrictTerminalStatus bool
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// EnrollmentService manages the enrollment lifecycle.
type EnrollmentService interface {
	CreateEnrollment(ctx context.Context, studentID, courseID uint, status model.EnrollmentStatus) (*model.Enrollment, error)
	UpdateEnrollment(ctx context.Context, id, studentID, courseID uint, status model.EnrollmentStatus) (*model.Enrollment, error)
	CompleteEnrollment(ctx context.Context, id uint) (*model.Enrollment, error)
	DropEnrollment(ctx context.Context, id uint) (*model.Enrollment, error)
	DeleteEnrollment(ctx context.Context, id uint) error

	GetEnrollment(ctx context.Context, id uint) (*model.Enrollment, error)
	ListEnrollments(ctx context.Context) ([]model.Enrollment, error)
	ListEnrollmentsByStatus(ctx context.Context, status model.EnrollmentStatus) ([]model.Enrollment, error)
	ListEnrollmentsByStudent(ctx context.Context, studentID uint) ([]model.Enrollment, error)
	ListEnrollmentsByStudentAndStatus(ctx context.Context, studentID uint, status model.EnrollmentStatus) ([]model.Enrollment, error)
	ListEnrollmentsByCourse(ctx context.Context, courseID uint) ([]model.Enrollment, error)
	ListEnrollmentsByTutor(ctx context.Context, tutorID uint) ([]model.Enrollment, error)
}

type enrollmentService struct {
	repo      repository.EnrollmentRepository
	users     repository.UserRepository
	courses   repository.CourseRepository
	guard     RoleGuard
	publisher queue.Publisher
	strict    bool
	now       func() time.Time
}

// NewEnrollmentService creates the enrollment lifecycle manager.
func NewEnrollmentService(
	repo repository.EnrollmentRepository,
	users repository.UserRepository,
	courses repository.CourseRepository,
	guard RoleGuard,
	publisher queue.Publisher,
	opts EnrollmentOptions,
) EnrollmentService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &enrollmentService{
		repo:      repo,
		users:     users,
		courses:   courses,
		guard:     guard,
		publisher: publisher,
		strict:    opts.StrictTerminalStatus,
		now:       now,
	}
}

func invalidStatus(status model.EnrollmentStatus) error {
	return apperrors.Domain(apperrors.ErrValidation, fmt.Sprintf("invalid enrollment status %q", status))
}

// requireCourse fails with ErrNotFound when the course does not exist.
func (s *enrollmentService) requireCourse(ctx context.Context, courseID uint) error {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return translateReadErr(err, msgCourseNotFound)
	}
	return nil
}

// CreateEnrollment enrolls a student in a course with the caller-supplied status.
func (s *enrollmentService) CreateEnrollment(ctx context.Context, studentID, courseID uint, status model.EnrollmentStatus) (*model.Enrollment, error) {
	if !status.Valid() {
		return nil, invalidStatus(status)
	}
	if err := s.guard.RequireRole(ctx, studentID, model.RoleStudent); err != nil {
		return nil, err
	}
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}

	enrollment := &model.Enrollment{
		StudentID:      studentID,
		CourseID:       courseID,
		EnrollmentDate: s.now(),
		CompletionDate: nil,
		Status:         status,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("create enrollment: %w", err)
	}

	s.publish(ctx, queue.EventEnrollmentCreated, enrollment)
	return enrollment, nil
}

// UpdateEnrollment overwrites the status directly. The referenced student and
// course must exist but the student's role is not re-checked.
func (s *enrollmentService) UpdateEnrollment(ctx context.Context, id, studentID, courseID uint, status model.EnrollmentStatus) (*model.Enrollment, error) {
	if !status.Valid() {
		return nil, invalidStatus(status)
	}
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateReadErr(err, msgEnrollmentNotFound)
	}
	if _, err := s.users.FindByID(ctx, studentID); err != nil {
		return nil, translateReadErr(err, msgStudentNotFound)
	}
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}

	enrollment.Status = status
	if err := s.repo.Update(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("update enrollment: %w", err)
	}

	s.publish(ctx, queue.EventEnrollmentUpdated, enrollment)
	return enrollment, nil
}

// CompleteEnrollment marks the enrollment completed and stamps completion_date.
func (s *enrollmentService) CompleteEnrollment(ctx context.Context, id uint) (*model.Enrollment, error) {
	return s.transition(ctx, id, model.EnrollmentStatusCompleted, queue.EventEnrollmentCompleted)
}

// DropEnrollment marks the enrollment dropped, leaving completion_date untouched.
func (s *enrollmentService) DropEnrollment(ctx context.Context, id uint) (*model.Enrollment, error) {
	return s.transition(ctx, id, model.EnrollmentStatusDropped, queue.EventEnrollmentDropped)
}

func (s *enrollmentService) transition(ctx context.Context, id uint, to model.EnrollmentStatus, event queue.EventType) (*model.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateReadErr(err, msgEnrollmentNotFound)
	}
	if s.strict && enrollment.Status.Terminal() {
		return nil, apperrors.Domain(apperrors.ErrInvalidTransition,
			fmt.Sprintf("Enrollment is already %s.", enrollment.Status))
	}

	enrollment.Status = to
	if to == model.EnrollmentStatusCompleted {
		completedAt := s.now()
		enrollment.CompletionDate = &completedAt
	}
	if err := s.repo.Update(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("%s enrollment: %w", to, err)
	}

	s.publish(ctx, event, enrollment)
	return enrollment, nil
}

// DeleteEnrollment removes a single enrollment.
func (s *enrollmentService) DeleteEnrollment(ctx context.Context, id uint) error {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translateReadErr(err, msgEnrollmentNotFound)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateReadErr(err, msgEnrollmentNotFound)
	}

	s.publish(ctx, queue.EventEnrollmentDeleted, enrollment)
	return nil
}

// GetEnrollment retrieves an enrollment by ID.
func (s *enrollmentService) GetEnrollment(ctx context.Context, id uint) (*model.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(msgEnrollmentNotFound)
		}
		return nil, err
	}
	return enrollment, nil
}

func (s *enrollmentService) ListEnrollments(ctx context.Context) ([]model.Enrollment, error) {
	return s.repo.List(ctx, repository.EnrollmentFilter{})
}

func (s *enrollmentService) ListEnrollmentsByStatus(ctx context.Context, status model.EnrollmentStatus) ([]model.Enrollment, error) {
	if !status.Valid() {
		return nil, invalidStatus(status)
	}
	return s.repo.List(ctx, repository.EnrollmentFilter{Status: status})
}

func (s *enrollmentService) ListEnrollmentsByStudent(ctx context.Context, studentID uint) ([]model.Enrollment, error) {
	if err := s.guard.RequireRole(ctx, studentID, model.RoleStudent); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, repository.EnrollmentFilter{StudentID: studentID})
}

func (s *enrollmentService) ListEnrollmentsByStudentAndStatus(ctx context.Context, studentID uint, status model.EnrollmentStatus) ([]model.Enrollment, error) {
	if !status.Valid() {
		return nil, invalidStatus(status)
	}
	if err := s.guard.RequireRole(ctx, studentID, model.RoleStudent); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, repository.EnrollmentFilter{StudentID: studentID, Status: status})
}

func (s *enrollmentService) ListEnrollmentsByCourse(ctx context.Context, courseID uint) ([]model.Enrollment, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, repository.EnrollmentFilter{CourseID: courseID})
}

func (s *enrollmentService) ListEnrollmentsByTutor(ctx context.Context, tutorID uint) ([]model.Enrollment, error) {
	if err := s.guard.RequireRole(ctx, tutorID, model.RoleTutor); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, repository.EnrollmentFilter{TutorID: tutorID})
}

// publish emits a lifecycle event. Failures are logged and never surface to the caller.
func (s *enrollmentService) publish(ctx context.Context, t queue.EventType, e *model.Enrollment) {
	slog.InfoContext(ctx, string(t), "enrollment_id", e.ID, "student_id", e.StudentID, "course_id", e.CourseID, "status", e.Status)
	if err := s.publisher.Publish(ctx, queue.NewEnrollmentEvent(t, e)); err != nil {
		slog.WarnContext(ctx, "publish enrollment event failed", "event", t, "enrollment_id", e.ID, "error", err)
	}
}
