package jobs

import (
	"log"

	"github.com/etuitionbd/etuition_backend/database"
	"github.com/etuitionbd/etuition_backend/models"
	"github.com/etuitionbd/etuition_backend/services"
)

// ReconcilePayments replays the finalize cascade for payments whose side
// effects never completed. A payment row with its application not Approved
// means the process died between recording the payment and finishing the
// status writes; the cascade is idempotent, so replaying it is safe.
func ReconcilePayments() {
	log.Println("Running job: ReconcilePayments...")

	var stranded []models.Payment
	err := database.DB.
		Joins("JOIN applications ON applications.id = payments.application_id").
		Where("applications.status <> ?", models.ApplicationStatusApproved).
		Find(&stranded).Error
	if err != nil {
		log.Printf("Error scanning for stranded payments: %v", err)
		return
	}

	if len(stranded) == 0 {
		return
	}

	for _, payment := range stranded {
		log.Printf("Replaying finalize cascade for payment %s (session %s)", payment.ID, payment.SessionID)
		if err := services.ApplyFinalizeCascade(&payment); err != nil {
			log.Printf("🔥 Failed to replay cascade for payment %s: %v", payment.ID, err)
		}
	}
}
