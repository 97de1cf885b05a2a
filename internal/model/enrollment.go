package model

import (
	"fmt"
	"strings"
	"time"
)

// EnrollmentStatus represents the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// Valid reports whether s is one of the known statuses.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusCompleted, EnrollmentStatusDropped:
		return true
	}
	return false
}

// Terminal reports whether no further transition is expected from s.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentStatusCompleted || s == EnrollmentStatusDropped
}

func (s EnrollmentStatus) String() string {
	return string(s)
}

// ParseEnrollmentStatus converts a raw string into an EnrollmentStatus.
func ParseEnrollmentStatus(s string) (EnrollmentStatus, error) {
	st := EnrollmentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown enrollment status %q", s)
	}
	return st, nil
}

// Enrollment links a student to a course.
type Enrollment struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	StudentID      uint             `json:"student_id" gorm:"not null;index"`
	CourseID       uint             `json:"course_id" gorm:"not null;index"`
	EnrollmentDate time.Time        `json:"enrollment_date" gorm:"not null"`
	CompletionDate *time.Time       `json:"completion_date"`
	Status         EnrollmentStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	CreatedAt      time.Time        `json:"-"`
	UpdatedAt      time.Time        `json:"-"`

	// Relations
	Student User   `json:"-" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	Course  Course `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}
