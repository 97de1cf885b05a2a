package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"enrollwall/internal/db"
	"enrollwall/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

type fixture struct {
	users       UserRepository
	courses     CourseRepository
	enrollments EnrollmentRepository
}

func newFixture(t *testing.T) fixture {
	gormDB := newTestDB(t)
	return fixture{
		users:       NewUserRepository(gormDB),
		courses:     NewCourseRepository(gormDB),
		enrollments: NewEnrollmentRepository(gormDB),
	}
}

func (f fixture) user(t *testing.T, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{FirstName: "F", LastName: "L", Email: email, Role: role, PasswordHash: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f fixture) course(t *testing.T, title string, tutorID *uint) *model.Course {
	t.Helper()
	c := &model.Course{Title: title, Description: "d", Duration: 10, TutorID: tutorID}
	require.NoError(t, f.courses.Create(context.Background(), c))
	return c
}

func (f fixture) enroll(t *testing.T, studentID, courseID uint, status model.EnrollmentStatus) *model.Enrollment {
	t.Helper()
	e := &model.Enrollment{StudentID: studentID, CourseID: courseID, Status: status, EnrollmentDate: time.Now()}
	require.NoError(t, f.enrollments.Create(context.Background(), e))
	return e
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.user(t, "a@x.com", model.RoleStudent)

	err := f.users.Create(context.Background(), &model.User{Email: "a@x.com", Role: model.RoleTutor, PasswordHash: "y"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_ListByRole(t *testing.T) {
	f := newFixture(t)
	f.user(t, "s1@x.com", model.RoleStudent)
	f.user(t, "t1@x.com", model.RoleTutor)
	f.user(t, "s2@x.com", model.RoleStudent)

	all, err := f.users.List(context.Background(), UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	students, err := f.users.List(context.Background(), UserFilter{Role: model.RoleStudent})
	require.NoError(t, err)
	assert.Len(t, students, 2)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tutor := f.user(t, "t@x.com", model.RoleTutor)
	student := f.user(t, "s@x.com", model.RoleStudent)
	other := f.user(t, "o@x.com", model.RoleStudent)
	course := f.course(t, "Intro", &tutor.ID)
	f.enroll(t, student.ID, course.ID, model.EnrollmentStatusActive)
	kept := f.enroll(t, other.ID, course.ID, model.EnrollmentStatusActive)

	require.NoError(t, f.users.Delete(ctx, student.ID))
	left, err := f.enrollments.List(ctx, EnrollmentFilter{CourseID: course.ID})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, kept.ID, left[0].ID)

	require.NoError(t, f.users.Delete(ctx, tutor.ID))
	reloaded, err := f.courses.FindByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.TutorID)

	assert.ErrorIs(t, f.users.Delete(ctx, tutor.ID), gorm.ErrRecordNotFound)
}

func TestCourseRepository_DuplicateTitle(t *testing.T) {
	f := newFixture(t)
	f.course(t, "Intro", nil)

	err := f.courses.Create(context.Background(), &model.Course{Title: "Intro", Duration: 1})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCourseRepository_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	student := f.user(t, "s@x.com", model.RoleStudent)
	doomed := f.course(t, "Doomed", nil)
	survivor := f.course(t, "Survivor", nil)
	f.enroll(t, student.ID, doomed.ID, model.EnrollmentStatusActive)
	f.enroll(t, student.ID, survivor.ID, model.EnrollmentStatusActive)

	require.NoError(t, f.courses.Delete(ctx, doomed.ID))

	gone, err := f.enrollments.List(ctx, EnrollmentFilter{CourseID: doomed.ID})
	require.NoError(t, err)
	assert.Empty(t, gone)

	mine, err := f.enrollments.List(ctx, EnrollmentFilter{StudentID: student.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, survivor.ID, mine[0].CourseID)

	assert.ErrorIs(t, f.courses.Delete(ctx, doomed.ID), gorm.ErrRecordNotFound)
}

func TestEnrollmentRepository_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tutorA := f.user(t, "ta@x.com", model.RoleTutor)
	tutorB := f.user(t, "tb@x.com", model.RoleTutor)
	s1 := f.user(t, "s1@x.com", model.RoleStudent)
	s2 := f.user(t, "s2@x.com", model.RoleStudent)
	c1 := f.course(t, "C1", &tutorA.ID)
	c2 := f.course(t, "C2", &tutorA.ID)
	c3 := f.course(t, "C3", &tutorB.ID)

	f.enroll(t, s1.ID, c1.ID, model.EnrollmentStatusActive)
	f.enroll(t, s1.ID, c2.ID, model.EnrollmentStatusCompleted)
	f.enroll(t, s2.ID, c2.ID, model.EnrollmentStatusDropped)
	f.enroll(t, s2.ID, c3.ID, model.EnrollmentStatusActive)

	tests := []struct {
		name   string
		filter EnrollmentFilter
		want   int
	}{
		{"all", EnrollmentFilter{}, 4},
		{"by status", EnrollmentFilter{Status: model.EnrollmentStatusActive}, 2},
		{"by student", EnrollmentFilter{StudentID: s1.ID}, 2},
		{"by student and status", EnrollmentFilter{StudentID: s1.ID, Status: model.EnrollmentStatusCompleted}, 1},
		{"by course", EnrollmentFilter{CourseID: c2.ID}, 2},
		{"by tutor across statuses", EnrollmentFilter{TutorID: tutorA.ID}, 3},
		{"by other tutor", EnrollmentFilter{TutorID: tutorB.ID}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.enrollments.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestEnrollmentRepository_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.user(t, "s@x.com", model.RoleStudent)
	c := f.course(t, "C", nil)
	e := f.enroll(t, s.ID, c.ID, model.EnrollmentStatusActive)

	now := time.Now()
	e.Status = model.EnrollmentStatusCompleted
	e.CompletionDate = &now
	require.NoError(t, f.enrollments.Update(ctx, e))

	got, err := f.enrollments.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentStatusCompleted, got.Status)
	require.NotNil(t, got.CompletionDate)

	require.NoError(t, f.enrollments.Delete(ctx, e.ID))
	_, err = f.enrollments.FindByID(ctx, e.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, f.enrollments.Delete(ctx, e.ID), gorm.ErrRecordNotFound)
}
