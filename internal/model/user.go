package model

import "time"

// User represents a tutor, student or admin.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FirstName    string    `json:"first_name" gorm:"size:100"`
	LastName     string    `json:"last_name" gorm:"size:255"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;index"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
