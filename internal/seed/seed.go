// Package seed loads YAML fixtures into the store through the services.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	apperrors "enrollwall/internal/errors"
	"enrollwall/internal/model"
	"enrollwall/internal/repository"
	"enrollwall/internal/service"
)

// Fixture is the on-disk seed format.
type Fixture struct {
	Users       []UserFixture       `yaml:"users"`
	Courses     []CourseFixture     `yaml:"courses"`
	Enrollments []EnrollmentFixture `yaml:"enrollments"`
}

type UserFixture struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Role      string `yaml:"role"`
	Password  string `yaml:"password"`
}

// CourseFixture references its tutor by email.
type CourseFixture struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Duration    int    `yaml:"duration"`
	TutorEmail  string `yaml:"tutor_email"`
}

// EnrollmentFixture references the student by email and the course by title.
type EnrollmentFixture struct {
	StudentEmail string `yaml:"student_email"`
	CourseTitle  string `yaml:"course_title"`
	Status       string `yaml:"status"`
	Complete     bool   `yaml:"complete"`
}

// Decode parses a fixture document.
func Decode(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

// Counts reports what a run created and skipped per entity.
type Counts struct {
	Created int
	Skipped int
}

// Result summarises a seeding run.
type Result struct {
	Users       Counts
	Courses     Counts
	Enrollments Counts
}

// Seeder applies fixtures.
type Seeder struct {
	Users       service.UserService
	Courses     service.CourseService
	Enrollments service.EnrollmentService

	UserRepo       repository.UserRepository
	CourseRepo     repository.CourseRepository
	EnrollmentRepo repository.EnrollmentRepository
}

// Apply creates every fixture entry in order. Entries that already exist are skipped,
// so running the same fixture twice is a no-op.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (Result, error) {
	var res Result

	for _, u := range f.Users {
		role, err := model.ParseRole(u.Role)
		if err != nil {
			return res, fmt.Errorf("user %s: %w", u.Email, err)
		}
		_, err = s.Users.CreateUser(ctx, service.UserInput{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Role:      role,
			Password:  u.Password,
		})
		if err := tally(&res.Users, err); err != nil {
			return res, fmt.Errorf("user %s: %w", u.Email, err)
		}
	}

	for _, c := range f.Courses {
		in := service.CourseInput{Title: c.Title, Description: c.Description, Duration: c.Duration}
		if c.TutorEmail != "" {
			tutor, err := s.UserRepo.FindByEmail(ctx, c.TutorEmail)
			if err != nil {
				return res, fmt.Errorf("course %q tutor %s: %w", c.Title, c.TutorEmail, err)
			}
			in.TutorID = &tutor.ID
		}
		_, err := s.Courses.CreateCourse(ctx, in)
		if err := tally(&res.Courses, err); err != nil {
			return res, fmt.Errorf("course %q: %w", c.Title, err)
		}
	}

	for _, e := range f.Enrollments {
		if err := s.enroll(ctx, e, &res.Enrollments); err != nil {
			return res, fmt.Errorf("enrollment %s/%q: %w", e.StudentEmail, e.CourseTitle, err)
		}
	}

	slog.InfoContext(ctx, "seed applied",
		"users_created", res.Users.Created, "users_skipped", res.Users.Skipped,
		"courses_created", res.Courses.Created, "courses_skipped", res.Courses.Skipped,
		"enrollments_created", res.Enrollments.Created, "enrollments_skipped", res.Enrollments.Skipped,
	)
	return res, nil
}

func (s *Seeder) enroll(ctx context.Context, e EnrollmentFixture, counts *Counts) error {
	status := model.EnrollmentStatusActive
	if e.Status != "" {
		parsed, err := model.ParseEnrollmentStatus(e.Status)
		if err != nil {
			return err
		}
		status = parsed
	}

	student, err := s.UserRepo.FindByEmail(ctx, e.StudentEmail)
	if err != nil {
		return fmt.Errorf("find student: %w", err)
	}
	course, err := s.CourseRepo.FindByTitle(ctx, e.CourseTitle)
	if err != nil {
		return fmt.Errorf("find course: %w", err)
	}

	existing, err := s.EnrollmentRepo.List(ctx, repository.EnrollmentFilter{StudentID: student.ID, CourseID: course.ID})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		counts.Skipped++
		return nil
	}

	created, err := s.Enrollments.CreateEnrollment(ctx, student.ID, course.ID, status)
	if err != nil {
		return err
	}
	if e.Complete {
		if _, err := s.Enrollments.CompleteEnrollment(ctx, created.ID); err != nil {
			return err
		}
	}
	counts.Created++
	return nil
}

// tally counts err as a skip when the entity already exists.
func tally(c *Counts, err error) error {
	switch {
	case err == nil:
		c.Created++
	case errors.Is(err, apperrors.ErrDuplicateKey):
		c.Skipped++
	default:
		return err
	}
	return nil
}
