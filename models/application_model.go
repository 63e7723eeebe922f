package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ApplicationStatusPending  = "Pending"
	ApplicationStatusApproved = "Approved"
	ApplicationStatusRejected = "Rejected"
)

// Application is a tutor's bid on a tuition posting. The compound unique
// index on (tuition_id, tutor_email) is what actually guarantees a tutor
// cannot apply twice; the handler-level pre-check only exists for a
// friendlier message. Approved is terminal: no field may change after it.
type Application struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"_id"`
	TuitionID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applications_tuition_tutor" json:"tuitionId"`
	TutorEmail     string    `gorm:"size:255;not null;uniqueIndex:idx_applications_tuition_tutor" json:"tutorEmail"`
	TutorName      string    `gorm:"size:255" json:"tutorName"`
	StudentEmail   string    `gorm:"size:255;not null;index" json:"studentEmail"`
	Qualifications string    `gorm:"type:text" json:"qualifications"`
	Experience     string    `gorm:"type:text" json:"experience"`
	ExpectedSalary int       `gorm:"not null" json:"expectedSalary"`
	Contact        string    `gorm:"size:100" json:"contact"`
	Status         string    `gorm:"size:20;not null;default:'Pending'" json:"status"`
	TransactionID  *string   `gorm:"size:255" json:"transactionId,omitempty"`
	AppliedAt      time.Time `json:"appliedAt"`

	Tuition Tuition `gorm:"foreignkey:TuitionID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
