package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	config "github.com/etuitionbd/etuition_backend/configs"
	"github.com/etuitionbd/etuition_backend/database"
	"github.com/etuitionbd/etuition_backend/models"
	"github.com/etuitionbd/etuition_backend/notifications"
	"github.com/etuitionbd/etuition_backend/payments"
	"github.com/etuitionbd/etuition_backend/websocket"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("you have already applied for this tuition")
	ErrImmutable        = errors.New("approved applications can no longer be changed")
	ErrAlreadyFinalized = errors.New("payment already recorded for this session")
	ErrNotPaid          = errors.New("payment not confirmed by the gateway")
	ErrValidation       = errors.New("invalid input")
	ErrGateway          = errors.New("payment gateway error")
)

type ApplicationInput struct {
	TutorEmail     string
	TutorName      string
	Qualifications string
	Experience     string
	ExpectedSalary int
	Contact        string
}

// SubmitApplication records a tutor's bid on a tuition posting. StudentEmail
// is denormalized from the tuition so student dashboards never need a join.
// The compound unique index backs up the pre-check: a concurrent duplicate
// submission surfaces as gorm.ErrDuplicatedKey and is reported the same way.
func SubmitApplication(tuitionID uuid.UUID, input ApplicationInput) (*models.Application, error) {
	var tuition models.Tuition
	if err := database.DB.First(&tuition, "id = ?", tuitionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var existing models.Application
	err := database.DB.Where("tuition_id = ? AND tutor_email = ?", tuitionID, input.TutorEmail).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicate
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	application := models.Application{
		TuitionID:      tuitionID,
		TutorEmail:     input.TutorEmail,
		TutorName:      input.TutorName,
		StudentEmail:   tuition.StudentEmail,
		Qualifications: input.Qualifications,
		Experience:     input.Experience,
		ExpectedSalary: input.ExpectedSalary,
		Contact:        input.Contact,
		Status:         models.ApplicationStatusPending,
		AppliedAt:      time.Now(),
	}
	if err := database.DB.Create(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	websocket.Notify(&websocket.ApplicationEvent{
		Type:          "application_submitted",
		ApplicationID: application.ID.String(),
		TuitionID:     tuitionID.String(),
		Status:        application.Status,
		Recipients:    []string{tuition.StudentEmail},
	})

	return &application, nil
}

type ApplicationPatch struct {
	Qualifications *string
	Experience     *string
	ExpectedSalary *int
	Contact        *string
	Status         *string
}

// UpdateApplication merges the supplied fields into a pending or rejected
// application. Approved is terminal: nothing may change, status included.
// Setting status to Approved here is the direct-approval path and cascades
// to the tuition inside the same transaction.
func UpdateApplication(applicationID uuid.UUID, patch ApplicationPatch) (*models.Application, error) {
	var application models.Application
	if err := database.DB.First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if application.Status == models.ApplicationStatusApproved {
		return nil, ErrImmutable
	}

	updates := map[string]interface{}{}
	if patch.Qualifications != nil {
		updates["qualifications"] = *patch.Qualifications
	}
	if patch.Experience != nil {
		updates["experience"] = *patch.Experience
	}
	if patch.ExpectedSalary != nil {
		updates["expected_salary"] = *patch.ExpectedSalary
	}
	if patch.Contact != nil {
		updates["contact"] = *patch.Contact
	}

	approving := false
	if patch.Status != nil {
		switch *patch.Status {
		case models.ApplicationStatusPending, models.ApplicationStatusRejected:
			updates["status"] = *patch.Status
		case models.ApplicationStatusApproved:
			updates["status"] = *patch.Status
			approving = true
		default:
			return nil, ErrValidation
		}
	}

	if len(updates) == 0 {
		return &application, nil
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&application).Updates(updates).Error; err != nil {
			return err
		}
		if approving {
			if err := tx.Model(&models.Tuition{}).Where("id = ?", application.TuitionID).
				Updates(map[string]interface{}{
					"status":      models.TuitionStatusOngoing,
					"tutor_email": application.TutorEmail,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		websocket.Notify(&websocket.ApplicationEvent{
			Type:          "application_updated",
			ApplicationID: application.ID.String(),
			TuitionID:     application.TuitionID.String(),
			Status:        application.Status,
			Recipients:    []string{application.StudentEmail, application.TutorEmail},
		})
	}
	if approving {
		go notifications.SendEmail(application.TutorName, application.TutorEmail,
			"Your Application Was Approved!",
			"<h1>Congratulations</h1><p>Your tuition application has been approved. The student will contact you shortly.</p>")
	}

	return &application, nil
}

// DeleteApplication withdraws an application. Approved applications are
// frozen and cannot be withdrawn.
func DeleteApplication(applicationID uuid.UUID) error {
	var application models.Application
	if err := database.DB.First(&application, "id = ?", applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if application.Status == models.ApplicationStatusApproved {
		return ErrImmutable
	}
	return database.DB.Delete(&application).Error
}

type CheckoutIntentInput struct {
	ApplicationID  string
	TuitionID      string
	TutorEmail     string
	TutorName      string
	Subject        string
	Class          string
	ExpectedSalary int
	StudentEmail   string
}

// CreateCheckoutIntent asks the gateway for a hosted checkout session. The
// session metadata carries {applicationId, tuitionId, tutorEmail}; it is the
// only link FinalizeByPayment has back to the records it must mutate.
func CreateCheckoutIntent(input CheckoutIntentInput) (string, error) {
	if input.ApplicationID == "" || input.TuitionID == "" || input.TutorEmail == "" ||
		input.TutorName == "" || input.Subject == "" || input.Class == "" ||
		input.StudentEmail == "" || input.ExpectedSalary <= 0 {
		return "", ErrValidation
	}

	if payments.Checkout == nil {
		return "", fmt.Errorf("%w: checkout client not configured", ErrGateway)
	}

	siteDomain := config.Config("SITE_DOMAIN")
	session, err := payments.Checkout.CreateSession(payments.CreateSessionParams{
		Description:   fmt.Sprintf("Tuition: %s (Class %s) with %s", input.Subject, input.Class, input.TutorName),
		Amount:        input.ExpectedSalary,
		Currency:      "BDT",
		CustomerEmail: input.StudentEmail,
		SuccessURL:    fmt.Sprintf("%s/payment-success?session_id={CHECKOUT_SESSION_ID}", siteDomain),
		CancelURL:     fmt.Sprintf("%s/payment-cancelled", siteDomain),
		Metadata: map[string]string{
			"applicationId": input.ApplicationID,
			"tuitionId":     input.TuitionID,
			"tutorEmail":    input.TutorEmail,
		},
	})
	if err != nil {
		log.Printf("🔥 Checkout session creation failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}

	return session.URL, nil
}

// FinalizeByPayment turns a paid checkout session into its durable side
// effects: one Payment row, the named application approved, its siblings
// rejected, the tuition ongoing. The payment insert comes first so a crash
// mid-sequence leaves a recoverable trail that the reconciliation job can
// replay; the whole sequence runs in one transaction so a clean run never
// leaves the three tables disagreeing.
func FinalizeByPayment(sessionID string) (*models.Payment, error) {
	if sessionID == "" {
		return nil, ErrValidation
	}
	if payments.Checkout == nil {
		return nil, fmt.Errorf("%w: checkout client not configured", ErrGateway)
	}

	session, err := payments.Checkout.RetrieveSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if session.PaymentStatus != "paid" {
		return nil, ErrNotPaid
	}

	applicationID, tuitionID, tutorEmail, err := parseSessionMetadata(session)
	if err != nil {
		return nil, err
	}

	var existing models.Payment
	err = database.DB.Where("session_id = ?", sessionID).First(&existing).Error
	if err == nil {
		return &existing, ErrAlreadyFinalized
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var application models.Application
	if err := database.DB.First(&application, "id = ?", applicationID).Error; err != nil {
		return nil, fmt.Errorf("%w: session references unknown application %s", ErrGateway, applicationID)
	}
	var tuition models.Tuition
	if err := database.DB.First(&tuition, "id = ?", tuitionID).Error; err != nil {
		return nil, fmt.Errorf("%w: session references unknown tuition %s", ErrGateway, tuitionID)
	}

	payment := models.Payment{
		Amount:        float64(session.AmountTotal) / 100,
		Currency:      session.Currency,
		StudentEmail:  application.StudentEmail,
		TutorEmail:    tutorEmail,
		TransactionID: session.PaymentIntentID,
		SessionID:     sessionID,
		ApplicationID: applicationID,
		TuitionID:     tuitionID,
		PaymentStatus: session.PaymentStatus,
		PaidAt:        time.Now(),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return applyFinalizeCascade(tx, &payment)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent callback for the same session.
			if probe := database.DB.Where("session_id = ?", sessionID).First(&existing).Error; probe == nil {
				return &existing, ErrAlreadyFinalized
			}
		}
		return nil, err
	}

	websocket.Notify(&websocket.ApplicationEvent{
		Type:          "payment_confirmed",
		ApplicationID: applicationID.String(),
		TuitionID:     tuitionID.String(),
		Status:        models.ApplicationStatusApproved,
		Recipients:    []string{application.StudentEmail, tutorEmail},
	})
	go notifications.SendEmail(application.TutorName, tutorEmail,
		"Payment Received - Tuition Confirmed!",
		"<h1>Tuition Confirmed</h1><p>The student's payment went through and your application is approved. The tuition is now ongoing.</p>")
	go notifications.SendEmail("", application.StudentEmail,
		"Payment Successful!",
		"<h1>Payment Successful</h1><p>Your payment was received and your chosen tutor has been confirmed.</p>")

	return &payment, nil
}

// ApplyFinalizeCascade replays steps 2-4 of the finalize sequence for an
// already recorded payment: approve the paid application, reject its
// siblings, mark the tuition ongoing. Safe to run more than once.
func ApplyFinalizeCascade(payment *models.Payment) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		return applyFinalizeCascade(tx, payment)
	})
}

func applyFinalizeCascade(tx *gorm.DB, payment *models.Payment) error {
	if err := tx.Model(&models.Application{}).Where("id = ?", payment.ApplicationID).
		Updates(map[string]interface{}{
			"status":         models.ApplicationStatusApproved,
			"transaction_id": payment.TransactionID,
		}).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Application{}).
		Where("tuition_id = ? AND id <> ?", payment.TuitionID, payment.ApplicationID).
		Update("status", models.ApplicationStatusRejected).Error; err != nil {
		return err
	}
	return tx.Model(&models.Tuition{}).Where("id = ?", payment.TuitionID).
		Updates(map[string]interface{}{
			"status":      models.TuitionStatusOngoing,
			"tutor_email": payment.TutorEmail,
		}).Error
}

func parseSessionMetadata(session *payments.CheckoutSession) (uuid.UUID, uuid.UUID, string, error) {
	applicationRaw, ok := session.Metadata["applicationId"]
	if !ok || applicationRaw == "" {
		return uuid.Nil, uuid.Nil, "", fmt.Errorf("%w: session metadata missing applicationId", ErrGateway)
	}
	tuitionRaw, ok := session.Metadata["tuitionId"]
	if !ok || tuitionRaw == "" {
		return uuid.Nil, uuid.Nil, "", fmt.Errorf("%w: session metadata missing tuitionId", ErrGateway)
	}
	tutorEmail, ok := session.Metadata["tutorEmail"]
	if !ok || tutorEmail == "" {
		return uuid.Nil, uuid.Nil, "", fmt.Errorf("%w: session metadata missing tutorEmail", ErrGateway)
	}

	applicationID, err := uuid.Parse(applicationRaw)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", fmt.Errorf("%w: malformed applicationId in session metadata", ErrGateway)
	}
	tuitionID, err := uuid.Parse(tuitionRaw)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", fmt.Errorf("%w: malformed tuitionId in session metadata", ErrGateway)
	}
	return applicationID, tuitionID, tutorEmail, nil
}

// SetTuitionStatus is the admin moderation action. Only Approved and
// Rejected are accepted; Ongoing is reserved for the lifecycle and Pending
// for creation. No cascade.
func SetTuitionStatus(tuitionID uuid.UUID, status string) (int64, error) {
	if status != models.TuitionStatusApproved && status != models.TuitionStatusRejected {
		return 0, ErrValidation
	}

	result := database.DB.Model(&models.Tuition{}).Where("id = ?", tuitionID).Update("status", status)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return result.RowsAffected, nil
}
