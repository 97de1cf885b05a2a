package model

import "time"

// Course is a unit of teaching optionally owned by a tutor.
type Course struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"uniqueIndex;size:150;not null"`
	Description string    `json:"description" gorm:"size:1000"`
	Duration    int       `json:"duration" gorm:"not null"`
	TutorID     *uint     `json:"tutor_id" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Tutor *User `json:"-" gorm:"foreignKey:TutorID;constraint:OnDelete:SET NULL"`
}
