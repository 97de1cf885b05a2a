// Package queue publishes enrollment lifecycle events to the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"

	"enrollwall/internal/model"
)

// EventType names a lifecycle transition.
type EventType string

const (
	EventEnrollmentCreated   EventType = "enrollment.created"
	EventEnrollmentUpdated   EventType = "enrollment.updated"
	EventEnrollmentCompleted EventType = "enrollment.completed"
	EventEnrollmentDropped   EventType = "enrollment.dropped"
	EventEnrollmentDeleted   EventType = "enrollment.deleted"
)

// EnrollmentEvent is published after an enrollment mutation commits. It
// carries enough state for consumers to act without querying the database.
type EnrollmentEvent struct {
	ID             string     `json:"id"`
	Type           EventType  `json:"type"`
	EnrollmentID   uint       `json:"enrollment_id"`
	StudentID      uint       `json:"student_id"`
	CourseID       uint       `json:"course_id"`
	Status         string     `json:"status"`
	EnrollmentDate time.Time  `json:"enrollment_date"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// NewEnrollmentEvent snapshots e as an event of the given type.
func NewEnrollmentEvent(t EventType, e *model.Enrollment) EnrollmentEvent {
	return EnrollmentEvent{
		ID:             uuid.NewString(),
		Type:           t,
		EnrollmentID:   e.ID,
		StudentID:      e.StudentID,
		CourseID:       e.CourseID,
		Status:         e.Status.String(),
		EnrollmentDate: e.EnrollmentDate,
		CompletionDate: e.CompletionDate,
		OccurredAt:     time.Now().UTC(),
	}
}
