package model

import "time"

// User is a local planner account.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session ties an opaque bearer token to a logged-in user.
type Session struct {
	Token     string `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	CreatedAt time.Time
}
