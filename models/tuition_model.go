package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TuitionStatusPending  = "Pending"
	TuitionStatusApproved = "Approved"
	TuitionStatusRejected = "Rejected"
	TuitionStatusOngoing  = "Ongoing"
)

// Tuition is a student's posting for a tutor. Status moves Pending ->
// Approved/Rejected by an admin; Ongoing is set only by the application
// lifecycle once a tutor is accepted, at which point TutorEmail is stamped.
type Tuition struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"_id"`
	Subject      string    `gorm:"size:100;not null" json:"subject"`
	Class        string    `gorm:"size:50;not null" json:"class"`
	Location     string    `gorm:"size:255;not null" json:"location"`
	Budget       float64   `gorm:"type:numeric(10,2);not null" json:"budget"`
	StudentEmail string    `gorm:"size:255;not null;index" json:"studentEmail"`
	TutorEmail   *string   `gorm:"size:255" json:"tutorEmail,omitempty"`
	Status       string    `gorm:"size:20;not null;default:'Pending'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Tuition) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
