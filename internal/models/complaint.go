package models

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // needed for pq.StringArray
	"gorm.io/gorm"
)

// Complaint statuses. Status is overwritten as a whole on update; there is no
// transition table, any status is reachable from any other.
const (
	StatusPending  = "pending"
	StatusProgress = "progress"
	StatusResolved = "resolved"
	StatusReopened = "reopened"
)

// Urgency levels.
const (
	UrgencyNormal = "Normal"
	UrgencyHigh   = "High"
)

// Complaint is the central record of a user-reported issue and its resolution
// lifecycle. ComplaintID is the public identifier (CMP followed by 8 digits)
// and is immutable once assigned; the owner never changes.
type Complaint struct {
	ID          uint   `gorm:"primaryKey"`
	ComplaintID string `gorm:"size:20;uniqueIndex;not null"`

	UserID uint `gorm:"index;not null"`
	User   User `gorm:"foreignKey:UserID"`

	ComplaintType string         `gorm:"size:200"`
	Urgency       string         `gorm:"size:10"`
	Location      string         `gorm:"size:255"`
	Details       string         `gorm:"type:text;not null"`
	Tags          pq.StringArray `gorm:"type:text[]"`

	// Filer identity, denormalized from the submission form.
	Name string  `gorm:"size:100"`
	Roll *string `gorm:"size:50"`

	Status string `gorm:"size:20;index"`

	// GPS fix, set together or not at all.
	Latitude    *float64
	Longitude   *float64
	GPSAccuracy *float64

	Rating              *int
	Feedback            *string `gorm:"type:text"`
	FeedbackSubmittedAt *time.Time

	Reopened     bool    `gorm:"default:false"`
	ReopenReason *string `gorm:"type:text"`
	ReopenCount  int     `gorm:"default:0"`

	// ReminderSent flips false->true exactly once per complaint and is never
	// reset, not even on reopen.
	ReminderSent   bool `gorm:"default:false"`
	ReminderSentAt *time.Time

	SubmittedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	Files []Attachment `gorm:"foreignKey:ComplaintRef;constraint:OnDelete:CASCADE"`
}

// BeforeCreate is a GORM hook that assigns the public complaint ID and field
// defaults before the row is inserted.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ComplaintID == "" {
		c.ComplaintID = NewComplaintID()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	return
}

// NewComplaintID generates a public complaint identifier of the form
// "CMP" + 8 digits, derived from a random UUID. Uniqueness is only enforced
// by the store's unique index, not by construction.
func NewComplaintID() string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8]) % 100000000
	return fmt.Sprintf("CMP%08d", n)
}

// HasGPS reports whether a GPS fix was recorded for the complaint.
func (c *Complaint) HasGPS() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Attachment is a file uploaded with a complaint. It is immutable once
// created and is removed together with its parent complaint.
type Attachment struct {
	ID           uint   `gorm:"primaryKey"`
	ComplaintRef uint   `gorm:"index;not null"`
	Name         string `gorm:"size:255"`
	// StoredName is the blob store handle for the file content.
	StoredName string `gorm:"size:255"`
	Size       int64
	UploadedAt time.Time `gorm:"autoCreateTime"`
}
