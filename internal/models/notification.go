package models

import "time"

// Notification types.
const (
	NotifyInfo    = "info"
	NotifySuccess = "success"
	NotifyWarning = "warning"
	NotifyError   = "error"
)

// Notification is a message delivered to a single user in response to a
// lifecycle event. Records are never mutated after creation except for the
// read transition.
type Notification struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"index;not null"`

	Title   string `gorm:"size:200"`
	Message string `gorm:"type:text"`
	Type    string `gorm:"size:20;default:info"`

	// ComplaintRef optionally links the notification to the complaint that
	// triggered it. It is the internal row ID, not the public CMP identifier.
	ComplaintRef *uint
	Complaint    *Complaint `gorm:"foreignKey:ComplaintRef"`

	Read   bool `gorm:"default:false"`
	ReadAt *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}
