package models

import (
	"time"
)

// User is the identity record. Email is the login identifier.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName    string    `gorm:"size:150;not null" json:"first_name"`
	LastName     string    `gorm:"size:150;not null" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsStaff      bool      `gorm:"not null;default:false" json:"-"`
	IsSuperuser  bool      `gorm:"not null;default:false" json:"-"`
}

func (User) TableName() string {
	return "users"
}
