package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is an append-only record of one successful checkout session.
// SessionID is unique: it is the idempotency key that keeps a retried
// payment-success callback from producing a second row. PaymentStatus is
// stored verbatim as the gateway reported it.
type Payment struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"_id"`
	Amount        float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency      string    `gorm:"size:3;not null" json:"currency"`
	StudentEmail  string    `gorm:"size:255;not null" json:"studentEmail"`
	TutorEmail    string    `gorm:"size:255;not null" json:"tutorEmail"`
	TransactionID string    `gorm:"size:255" json:"transactionId"`
	SessionID     string    `gorm:"size:255;not null;unique" json:"sessionId"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null" json:"applicationId"`
	TuitionID     uuid.UUID `gorm:"type:uuid;not null" json:"tuitionId"`
	PaymentStatus string    `gorm:"size:30;not null" json:"paymentStatus"`
	PaidAt        time.Time `json:"paidAt"`

	CreatedAt time.Time `json:"createdAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
