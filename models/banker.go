package models

import (
	"time"
)

// Banker is the operator account for the administrative surface (property
// seeding, team edits, resets, exports). Regular game play is unauthenticated.
type Banker struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"uniqueIndex;not null;size:100" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
}
