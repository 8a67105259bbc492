package models

import "time"

// User is a registered rider. Users are created at registration and never
// mutated afterwards.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"createdAt"`
}
