package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "enrollwall/internal/errors"
	"enrollwall/internal/model"
	"enrollwall/internal/queue"
	"enrollwall/internal/repository"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type enrollmentMocks struct {
	repo      *MockEnrollmentRepository
	users     *MockUserRepository
	courses   *MockCourseRepository
	guard     *MockRoleGuard
	publisher *MockPublisher
}

func newEnrollmentMocks() enrollmentMocks {
	return enrollmentMocks{
		repo:      new(MockEnrollmentRepository),
		users:     new(MockUserRepository),
		courses:   new(MockCourseRepository),
		guard:     new(MockRoleGuard),
		publisher: new(MockPublisher),
	}
}

func (m enrollmentMocks) service(strict bool) EnrollmentService {
	return NewEnrollmentService(m.repo, m.users, m.courses, m.guard, m.publisher, EnrollmentOptions{
		StrictTerminalStatus: strict,
		Now:                  func() time.Time { return fixedNow },
	})
}

func eventOfType(t queue.EventType) interface{} {
	return mock.MatchedBy(func(e queue.EnrollmentEvent) bool { return e.Type == t })
}

func TestEnrollmentService_CreateEnrollment(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps caller status", func(t *testing.T) {
		m := newEnrollmentMocks()
		m.guard.On("RequireRole", ctx, uint(1), model.RoleStudent).Return(nil)
		m.courses.On("FindByID", ctx, uint(2)).Return(&model.Course{ID: 2}, nil)
		m.repo.On("Create", ctx, mock.AnythingOfType("*model.Enrollment")).Return(nil)
		m.publisher.On("Publish", ctx, eventOfType(queue.EventEnrollmentCreated)).Return(nil)

		e, err := m.service(false).CreateEnrollment(ctx, 1, 2, model.EnrollmentStatusDropped)
		require.NoError(t, err)
		assert.Equal(t, model.EnrollmentStatusDropped, e.Status)
		assert.Equal(t, fixedNow, e.EnrollmentDate)
		assert.Nil(t, e.CompletionDate)
		m.publisher.AssertExpectations(t)
	})

	t.Run("student role mismatch", func(t *testing.T) {
		m := newEnrollmentMocks()
		m.guard.On("RequireRole", ctx, uint(1), model.RoleStudent).
			Return(apperrors.Domain(apperrors.ErrRoleMismatch, "Student not found."))

		_, err := m.service(false).CreateEnrollment(ctx, 1, 2, model.EnrollmentStatusActive)
		assert.ErrorIs(t, err, apperrors.ErrRoleMismatch)
		m.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing course", func(t *testing.T) {
		m := newEnrollmentMocks()
		m.guard.On("RequireRole", ctx, uint(1), model.RoleStudent).Return(nil)
		m.courses.On("FindByID", ctx, uint(2)).Return(nil, gorm.ErrRecordNotFound)

		_, err := m.service(false).CreateEnrollment(ctx, 1, 2, model.EnrollmentStatusActive)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.EqualError(t, err, "Course not found.")
	})

	t.Run("unknown status", func(t *testing.T) {
		m := newEnrollmentMocks()
		_, err := m.service(false).CreateEnrollment(ctx, 1, 2, "paused")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("publish failure does not fail the operation", func(t *testing.T) {
		m := newEnrollmentMocks()
		m.guard.On("RequireRole", ctx, uint(1), model.RoleStudent).Return(nil)
		m.courses.On("FindByID", ctx, uint(2)).Return(&model.Course{ID: 2}, nil)
		m.repo.On("Create", ctx, mock.AnythingOfType("*model.Enrollment")).Return(nil)
		m.publisher.On("Publish", ctx, mock.Anything).Return(errors.New("broker down"))

		_, err := m.service(false).CreateEnrollment(ctx, 1, 2, model.EnrollmentStatusActive)
		assert.NoError(t, err)
	})
}

func TestEnrollmentService_Transitions(t *testing.T) {
	ctx := context.Background()
	earlier := fixedNow.Add(-24 * time.Hour)

	tests := []struct {
		name           string
		strict         bool
		from           model.EnrollmentStatus
		fromCompletion *time.Time
		drop           bool
		wantErr        error
		wantStatus     model.EnrollmentStatus
		wantCompletion *time.Time
	}{
		{name: "complete active", from: model.EnrollmentStatusActive, wantStatus: model.EnrollmentStatusCompleted, wantCompletion: &fixedNow},
		{name: "drop active", from: model.EnrollmentStatusActive, drop: true, wantStatus: model.EnrollmentStatusDropped},
		{name: "drop completed keeps date", from: model.EnrollmentStatusCompleted, fromCompletion: &earlier, drop: true, wantStatus: model.EnrollmentStatusDropped, wantCompletion: &earlier},
		{name: "permissive complete dropped", from: model.EnrollmentStatusDropped, wantStatus: model.EnrollmentStatusCompleted, wantCompletion: &fixedNow},
		{name: "strict complete completed", strict: true, from: model.EnrollmentStatusCompleted, wantErr: apperrors.ErrInvalidTransition},
		{name: "strict drop dropped", strict: true, from: model.EnrollmentStatusDropped, drop: true, wantErr: apperrors.ErrInvalidTransition},
		{name: "strict complete active", strict: true, from: model.EnrollmentStatusActive, wantStatus: model.EnrollmentStatusCompleted, wantCompletion: &fixedNow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newEnrollmentMocks()
			current := &model.Enrollment{ID: 4, StudentID: 1, CourseID: 2, Status: tt.from, CompletionDate: tt.fromCompletion}
			m.repo.On("FindByID", ctx, uint(4)).Return(current, nil)
			m.repo.On("Update", ctx, current).Return(nil).Maybe()
			m.publisher.On("Publish", ctx, mock.Anything).Return(nil).Maybe()

			svc := m.service(tt.strict)
			var (
				e   *model.Enrollment
				err error
			)
			if tt.drop {
				e, err = svc.DropEnrollment(ctx, 4)
			} else {
				e, err = svc.CompleteEnrollment(ctx, 4)
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				m.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, e.Status)
			if tt.wantCompletion == nil {
				assert.Nil(t, e.CompletionDate)
			} else {
				require.NotNil(t, e.CompletionDate)
				assert.Equal(t, *tt.wantCompletion, *e.CompletionDate)
			}
		})
	}
}

func TestEnrollmentService_TransitionNotFound(t *testing.T) {
	ctx := context.Background()
	m := newEnrollmentMocks()
	m.repo.On("FindByID", ctx, uint(9)).Return(nil, gorm.ErrRecordNotFound)

	_, err := m.service(false).CompleteEnrollment(ctx, 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.EqualError(t, err, "Enrollment not found.")

	_, err = m.service(false).DropEnrollment(ctx, 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEnrollmentService_UpdateEnrollment(t *testing.T) {
	ctx := context.Background()

	t.Run("missing student", func(t *testing.T) {
		m := newEnrollmentMocks()
		m.repo.On("FindByID", ctx, uint(4)).Return(&model.Enrollment{ID: 4}, nil)
		m.users.On("FindByID", ctx, uint(1)).Return(nil, gorm.ErrRecordNotFound)

		_, err := m.service(false).UpdateEnrollment(ctx, 4, 1, 2, model.EnrollmentStatusActive)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.EqualError(t, err, "Student not found.")
	})

	t.Run("missing enrollment", func(t *testing.T) {
		m := newEnrollmentMocks()
		m.repo.On("FindByID", ctx, uint(4)).Return(nil, gorm.ErrRecordNotFound)

		_, err := m.service(false).UpdateEnrollment(ctx, 4, 1, 2, model.EnrollmentStatusActive)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("status replaced without role check", func(t *testing.T) {
		m := newEnrollmentMocks()
		current := &model.Enrollment{ID: 4, StudentID: 1, CourseID: 2, Status: model.EnrollmentStatusActive}
		m.repo.On("FindByID", ctx, uint(4)).Return(current, nil)
		m.users.On("FindByID", ctx, uint(1)).Return(&model.User{ID: 1, Role: model.RoleAdmin}, nil)
		m.courses.On("FindByID", ctx, uint(2)).Return(&model.Course{ID: 2}, nil)
		m.repo.On("Update", ctx, current).Return(nil)
		m.publisher.On("Publish", ctx, eventOfType(queue.EventEnrollmentUpdated)).Return(nil)

		e, err := m.service(false).UpdateEnrollment(ctx, 4, 1, 2, model.EnrollmentStatusDropped)
		require.NoError(t, err)
		assert.Equal(t, model.EnrollmentStatusDropped, e.Status)
		m.guard.AssertNotCalled(t, "RequireRole", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEnrollmentService_Queries(t *testing.T) {
	ctx := context.Background()
	rows := []model.Enrollment{{ID: 1}}

	t.Run("by student and status", func(t *testing.T) {
		m := newEnrollmentMocks()
		m.guard.On("RequireRole", ctx, uint(3), model.RoleStudent).Return(nil)
		m.repo.On("List", ctx, repository.EnrollmentFilter{StudentID: 3, Status: model.EnrollmentStatusActive}).Return(rows, nil)

		got, err := m.service(false).ListEnrollmentsByStudentAndStatus(ctx, 3, model.EnrollmentStatusActive)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})

	t.Run("by tutor", func(t *testing.T) {
		m := newEnrollmentMocks()
		m.guard.On("RequireRole", ctx, uint(8), model.RoleTutor).Return(nil)
		m.repo.On("List", ctx, repository.EnrollmentFilter{TutorID: 8}).Return(rows, nil)

		got, err := m.service(false).ListEnrollmentsByTutor(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})

	t.Run("by course requires course", func(t *testing.T) {
		m := newEnrollmentMocks()
		m.courses.On("FindByID", ctx, uint(2)).Return(nil, gorm.ErrRecordNotFound)

		_, err := m.service(false).ListEnrollmentsByCourse(ctx, 2)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		m.repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("by invalid status", func(t *testing.T) {
		m := newEnrollmentMocks()
		_, err := m.service(false).ListEnrollmentsByStatus(ctx, "archived")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("get missing", func(t *testing.T) {
		m := newEnrollmentMocks()
		m.repo.On("FindByID", ctx, uint(5)).Return(nil, gorm.ErrRecordNotFound)

		_, err := m.service(false).GetEnrollment(ctx, 5)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestEnrollmentService_DeleteEnrollment(t *testing.T) {
	ctx := context.Background()
	m := newEnrollmentMocks()
	m.repo.On("FindByID", ctx, uint(4)).Return(&model.Enrollment{ID: 4}, nil)
	m.repo.On("Delete", ctx, uint(4)).Return(nil)
	m.publisher.On("Publish", ctx, eventOfType(queue.EventEnrollmentDeleted)).Return(nil)

	require.NoError(t, m.service(false).DeleteEnrollment(ctx, 4))
	m.repo.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}
