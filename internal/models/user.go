package models

import "time"

// User represents an account in the system. PasswordHash holds a bcrypt hash
// and is never serialized. Admins can view and modify all complaints and are
// recipients of most fanout events.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:100;uniqueIndex" json:"username"`
	Email        string `gorm:"size:255;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"size:128" json:"-"`
	IsAdmin      bool   `gorm:"default:false" json:"is_admin"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
