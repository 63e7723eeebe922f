package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/etuitionbd/etuition_backend/database"
	"github.com/etuitionbd/etuition_backend/models"
	"github.com/etuitionbd/etuition_backend/payments"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Tuition{}, &models.Application{}, &models.Payment{}))

	database.DB = db
}

type fakeCheckout struct {
	sessions    map[string]*payments.CheckoutSession
	createCalls int
}

func newFakeCheckout() *fakeCheckout {
	return &fakeCheckout{sessions: make(map[string]*payments.CheckoutSession)}
}

func (f *fakeCheckout) CreateSession(params payments.CreateSessionParams) (*payments.CheckoutSession, error) {
	f.createCalls++
	session := &payments.CheckoutSession{
		ID:            fmt.Sprintf("cs_test_%d", f.createCalls),
		URL:           fmt.Sprintf("https://checkout.example.com/cs_test_%d", f.createCalls),
		PaymentStatus: "unpaid",
		AmountTotal:   int64(params.Amount) * 100,
		Currency:      strings.ToLower(params.Currency),
		CustomerEmail: params.CustomerEmail,
		Metadata:      params.Metadata,
	}
	f.sessions[session.ID] = session
	return session, nil
}

func (f *fakeCheckout) RetrieveSession(sessionID string) (*payments.CheckoutSession, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such session: %s", sessionID)
	}
	return session, nil
}

func (f *fakeCheckout) markPaid(sessionID string) {
	session := f.sessions[sessionID]
	session.PaymentStatus = "paid"
	session.PaymentIntentID = "pi_" + sessionID
}

func useFakeCheckout(t *testing.T) *fakeCheckout {
	t.Helper()
	fake := newFakeCheckout()
	payments.Checkout = fake
	t.Cleanup(func() { payments.Checkout = nil })
	return fake
}

func seedTuition(t *testing.T, status string) *models.Tuition {
	t.Helper()
	tuition := models.Tuition{
		Subject:      "Math",
		Class:        "10",
		Location:     "Dhaka",
		Budget:       500,
		StudentEmail: "student@example.com",
		Status:       status,
	}
	require.NoError(t, database.DB.Create(&tuition).Error)
	return &tuition
}

func seedApplication(t *testing.T, tuition *models.Tuition, tutorEmail string) *models.Application {
	t.Helper()
	application, err := SubmitApplication(tuition.ID, ApplicationInput{
		TutorEmail:     tutorEmail,
		TutorName:      "Tutor " + tutorEmail,
		Qualifications: "BSc in Mathematics",
		Experience:     "3 years",
		ExpectedSalary: 300,
		Contact:        "01700000000",
	})
	require.NoError(t, err)
	return application
}

func TestSubmitApplication(t *testing.T) {
	setupTestDB(t)
	tuition := seedTuition(t, models.TuitionStatusApproved)

	application, err := SubmitApplication(tuition.ID, ApplicationInput{
		TutorEmail:     "tutor@example.com",
		TutorName:      "Tutor One",
		ExpectedSalary: 300,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusPending, application.Status)
	assert.Equal(t, "student@example.com", application.StudentEmail)
	assert.False(t, application.AppliedAt.IsZero())
}

func TestSubmitApplicationTuitionNotFound(t *testing.T) {
	setupTestDB(t)

	_, err := SubmitApplication(uuid.New(), ApplicationInput{TutorEmail: "tutor@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitApplicationDuplicate(t *testing.T) {
	setupTestDB(t)
	tuition := seedTuition(t, models.TuitionStatusApproved)

	input := ApplicationInput{TutorEmail: "tutor@example.com", ExpectedSalary: 300}
	_, err := SubmitApplication(tuition.ID, input)
	require.NoError(t, err)

	_, err = SubmitApplication(tuition.ID, input)
	assert.ErrorIs(t, err, ErrDuplicate)

	var count int64
	require.NoError(t, database.DB.Model(&models.Application{}).
		Where("tuition_id = ? AND tutor_email = ?", tuition.ID, "tutor@example.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateApplicationMergesOnlyProvidedFields(t *testing.T) {
	setupTestDB(t)
	tuition := seedTuition(t, models.TuitionStatusApproved)
	application := seedApplication(t, tuition, "tutor@example.com")

	salary := 450
	updated, err := UpdateApplication(application.ID, ApplicationPatch{ExpectedSalary: &salary})
	require.NoError(t, err)

	assert.Equal(t, 450, updated.ExpectedSalary)
	assert.Equal(t, "BSc in Mathematics", updated.Qualifications)
	assert.Equal(t, models.ApplicationStatusPending, updated.Status)
}

func TestUpdateApplicationNotFound(t *testing.T) {
	setupTestDB(t)

	status := models.ApplicationStatusRejected
	_, err := UpdateApplication(uuid.New(), ApplicationPatch{Status: &status})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateApplicationRejectsUnknownStatus(t *testing.T) {
	setupTestDB(t)
	tuition := seedTuition(t, models.TuitionStatusApproved)
	application := seedApplication(t, tuition, "tutor@example.com")

	status := "Shipped"
	_, err := UpdateApplication(application.ID, ApplicationPatch{Status: &status})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateApplicationApprovedIsImmutable(t *testing.T) {
	setupTestDB(t)
	tuition := seedTuition(t, models.TuitionStatusApproved)
	application := seedApplication(t, tuition, "tutor@example.com")

	approved := models.ApplicationStatusApproved
	_, err := UpdateApplication(application.ID, ApplicationPatch{Status: &approved})
	require.NoError(t, err)

	qualifications := "PhD in Mathematics"
	_, err = UpdateApplication(application.ID, ApplicationPatch{Qualifications: &qualifications})
	assert.ErrorIs(t, err, ErrImmutable)

	rejected := models.ApplicationStatusRejected
	_, err = UpdateApplication(application.ID, ApplicationPatch{Status: &rejected})
	assert.ErrorIs(t, err, ErrImmutable)

	var reloaded models.Application
	require.NoError(t, database.DB.First(&reloaded, "id = ?", application.ID).Error)
	assert.Equal(t, models.ApplicationStatusApproved, reloaded.Status)
	assert.Equal(t, "BSc in Mathematics", reloaded.Qualifications)
}

func TestUpdateApplicationDirectApprovalCascades(t *testing.T) {
	setupTestDB(t)
	tuition := seedTuition(t, models.TuitionStatusApproved)
	application := seedApplication(t, tuition, "tutor@example.com")

	approved := models.ApplicationStatusApproved
	updated, err := UpdateApplication(application.ID, ApplicationPatch{Status: &approved})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApproved, updated.Status)

	var reloadedTuition models.Tuition
	require.NoError(t, database.DB.First(&reloadedTuition, "id = ?", tuition.ID).Error)
	assert.Equal(t, models.TuitionStatusOngoing, reloadedTuition.Status)
	require.NotNil(t, reloadedTuition.TutorEmail)
	assert.Equal(t, "tutor@example.com", *reloadedTuition.TutorEmail)
}

func TestDeleteApplicationBlockedWhenApproved(t *testing.T) {
	setupTestDB(t)
	tuition := seedTuition(t, models.TuitionStatusApproved)
	application := seedApplication(t, tuition, "tutor@example.com")

	approved := models.ApplicationStatusApproved
	_, err := UpdateApplication(application.ID, ApplicationPatch{Status: &approved})
	require.NoError(t, err)

	err = DeleteApplication(application.ID)
	assert.ErrorIs(t, err, ErrImmutable)
}

func TestCreateCheckoutIntentValidation(t *testing.T) {
	setupTestDB(t)
	fake := useFakeCheckout(t)

	valid := CheckoutIntentInput{
		ApplicationID:  uuid.New().String(),
		TuitionID:      uuid.New().String(),
		TutorEmail:     "tutor@example.com",
		TutorName:      "Tutor One",
		Subject:        "Math",
		Class:          "10",
		ExpectedSalary: 300,
		StudentEmail:   "student@example.com",
	}

	cases := []struct {
		name   string
		mutate func(*CheckoutIntentInput)
	}{
		{"zero salary", func(in *CheckoutIntentInput) { in.ExpectedSalary = 0 }},
		{"negative salary", func(in *CheckoutIntentInput) { in.ExpectedSalary = -50 }},
		{"missing tutor email", func(in *CheckoutIntentInput) { in.TutorEmail = "" }},
		{"missing subject", func(in *CheckoutIntentInput) { in.Subject = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			_, err := CreateCheckoutIntent(input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	assert.Equal(t, 0, fake.createCalls, "validation failures must not reach the gateway")

	url, err := CreateCheckoutIntent(valid)
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Equal(t, 1, fake.createCalls)
}

func TestCreateCheckoutIntentCarriesMetadata(t *testing.T) {
	setupTestDB(t)
	fake := useFakeCheckout(t)

	applicationID := uuid.New().String()
	tuitionID := uuid.New().String()
	_, err := CreateCheckoutIntent(CheckoutIntentInput{
		ApplicationID:  applicationID,
		TuitionID:      tuitionID,
		TutorEmail:     "tutor@example.com",
		TutorName:      "Tutor One",
		Subject:        "Math",
		Class:          "10",
		ExpectedSalary: 300,
		StudentEmail:   "student@example.com",
	})
	require.NoError(t, err)

	session := fake.sessions["cs_test_1"]
	require.NotNil(t, session)
	assert.Equal(t, applicationID, session.Metadata["applicationId"])
	assert.Equal(t, tuitionID, session.Metadata["tuitionId"])
	assert.Equal(t, "tutor@example.com", session.Metadata["tutorEmail"])
	assert.EqualValues(t, 30000, session.AmountTotal)
}

func finalizeScenario(t *testing.T, fake *fakeCheckout) (*models.Tuition, *models.Application, *models.Application, string) {
	t.Helper()
	tuition := seedTuition(t, models.TuitionStatusApproved)
	chosen := seedApplication(t, tuition, "tutor@example.com")
	sibling := seedApplication(t, tuition, "other@example.com")

	session, err := fake.CreateSession(payments.CreateSessionParams{
		Amount:   300,
		Currency: "BDT",
		Metadata: map[string]string{
			"applicationId": chosen.ID.String(),
			"tuitionId":     tuition.ID.String(),
			"tutorEmail":    chosen.TutorEmail,
		},
	})
	require.NoError(t, err)
	fake.createCalls = 0
	return tuition, chosen, sibling, session.ID
}

func TestFinalizeByPaymentUnpaidSession(t *testing.T) {
	setupTestDB(t)
	fake := useFakeCheckout(t)
	_, _, _, sessionID := finalizeScenario(t, fake)

	_, err := FinalizeByPayment(sessionID)
	assert.ErrorIs(t, err, ErrNotPaid)

	var count int64
	require.NoError(t, database.DB.Model(&models.Payment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestFinalizeByPaymentCascade(t *testing.T) {
	setupTestDB(t)
	fake := useFakeCheckout(t)
	tuition, chosen, sibling, sessionID := finalizeScenario(t, fake)
	fake.markPaid(sessionID)

	payment, err := FinalizeByPayment(sessionID)
	require.NoError(t, err)

	assert.Equal(t, 300.0, payment.Amount)
	assert.Equal(t, "paid", payment.PaymentStatus)
	assert.Equal(t, "pi_"+sessionID, payment.TransactionID)
	assert.Equal(t, chosen.ID, payment.ApplicationID)
	assert.False(t, payment.PaidAt.IsZero())

	var reloadedChosen models.Application
	require.NoError(t, database.DB.First(&reloadedChosen, "id = ?", chosen.ID).Error)
	assert.Equal(t, models.ApplicationStatusApproved, reloadedChosen.Status)
	require.NotNil(t, reloadedChosen.TransactionID)
	assert.NotEmpty(t, *reloadedChosen.TransactionID)

	var reloadedSibling models.Application
	require.NoError(t, database.DB.First(&reloadedSibling, "id = ?", sibling.ID).Error)
	assert.Equal(t, models.ApplicationStatusRejected, reloadedSibling.Status)

	var reloadedTuition models.Tuition
	require.NoError(t, database.DB.First(&reloadedTuition, "id = ?", tuition.ID).Error)
	assert.Equal(t, models.TuitionStatusOngoing, reloadedTuition.Status)
	require.NotNil(t, reloadedTuition.TutorEmail)
	assert.Equal(t, chosen.TutorEmail, *reloadedTuition.TutorEmail)
}

func TestFinalizeByPaymentIdempotent(t *testing.T) {
	setupTestDB(t)
	fake := useFakeCheckout(t)
	_, chosen, _, sessionID := finalizeScenario(t, fake)
	fake.markPaid(sessionID)

	first, err := FinalizeByPayment(sessionID)
	require.NoError(t, err)

	second, err := FinalizeByPayment(sessionID)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)

	var paymentCount int64
	require.NoError(t, database.DB.Model(&models.Payment{}).Where("session_id = ?", sessionID).Count(&paymentCount).Error)
	assert.EqualValues(t, 1, paymentCount)

	var approvedCount int64
	require.NoError(t, database.DB.Model(&models.Application{}).
		Where("tuition_id = ? AND status = ?", chosen.TuitionID, models.ApplicationStatusApproved).Count(&approvedCount).Error)
	assert.EqualValues(t, 1, approvedCount)
}

func TestFinalizeByPaymentFailsClosedOnBadMetadata(t *testing.T) {
	setupTestDB(t)
	fake := useFakeCheckout(t)

	session, err := fake.CreateSession(payments.CreateSessionParams{
		Amount:   300,
		Currency: "BDT",
		Metadata: map[string]string{"tuitionId": uuid.New().String()},
	})
	require.NoError(t, err)
	fake.markPaid(session.ID)

	_, err = FinalizeByPayment(session.ID)
	assert.ErrorIs(t, err, ErrGateway)

	// Well-formed metadata pointing at records that do not exist fails the
	// same way.
	dangling, err := fake.CreateSession(payments.CreateSessionParams{
		Amount:   300,
		Currency: "BDT",
		Metadata: map[string]string{
			"applicationId": uuid.New().String(),
			"tuitionId":     uuid.New().String(),
			"tutorEmail":    "tutor@example.com",
		},
	})
	require.NoError(t, err)
	fake.markPaid(dangling.ID)

	_, err = FinalizeByPayment(dangling.ID)
	assert.ErrorIs(t, err, ErrGateway)

	var count int64
	require.NoError(t, database.DB.Model(&models.Payment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestSetTuitionStatus(t *testing.T) {
	setupTestDB(t)
	tuition := seedTuition(t, models.TuitionStatusPending)

	modified, err := SetTuitionStatus(tuition.ID, models.TuitionStatusApproved)
	require.NoError(t, err)
	assert.EqualValues(t, 1, modified)

	var reloaded models.Tuition
	require.NoError(t, database.DB.First(&reloaded, "id = ?", tuition.ID).Error)
	assert.Equal(t, models.TuitionStatusApproved, reloaded.Status)
}

func TestSetTuitionStatusRejectsUnknownStatus(t *testing.T) {
	setupTestDB(t)
	tuition := seedTuition(t, models.TuitionStatusPending)

	for _, status := range []string{"Shipped", "Ongoing", "Pending", ""} {
		_, err := SetTuitionStatus(tuition.ID, status)
		assert.ErrorIs(t, err, ErrValidation, "status %q must be rejected", status)
	}

	var reloaded models.Tuition
	require.NoError(t, database.DB.First(&reloaded, "id = ?", tuition.ID).Error)
	assert.Equal(t, models.TuitionStatusPending, reloaded.Status)
}

func TestSetTuitionStatusNotFound(t *testing.T) {
	setupTestDB(t)

	_, err := SetTuitionStatus(uuid.New(), models.TuitionStatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Full happy path: posting created, approved by admin, applied to, paid for,
// finalized.
func TestTuitionLifecycleEndToEnd(t *testing.T) {
	setupTestDB(t)
	fake := useFakeCheckout(t)

	tuition := seedTuition(t, models.TuitionStatusPending)

	_, err := SetTuitionStatus(tuition.ID, models.TuitionStatusApproved)
	require.NoError(t, err)

	application, err := SubmitApplication(tuition.ID, ApplicationInput{
		TutorEmail:     "tutor@example.com",
		TutorName:      "Tutor One",
		ExpectedSalary: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPending, application.Status)
	assert.Equal(t, "student@example.com", application.StudentEmail)

	url, err := CreateCheckoutIntent(CheckoutIntentInput{
		ApplicationID:  application.ID.String(),
		TuitionID:      tuition.ID.String(),
		TutorEmail:     application.TutorEmail,
		TutorName:      application.TutorName,
		Subject:        tuition.Subject,
		Class:          tuition.Class,
		ExpectedSalary: 300,
		StudentEmail:   tuition.StudentEmail,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	sessionID := "cs_test_1"
	fake.markPaid(sessionID)

	payment, err := FinalizeByPayment(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, payment.Amount)

	var reloadedTuition models.Tuition
	require.NoError(t, database.DB.First(&reloadedTuition, "id = ?", tuition.ID).Error)
	assert.Equal(t, models.TuitionStatusOngoing, reloadedTuition.Status)

	var reloadedApplication models.Application
	require.NoError(t, database.DB.First(&reloadedApplication, "id = ?", application.ID).Error)
	assert.Equal(t, models.ApplicationStatusApproved, reloadedApplication.Status)

	var paymentCount int64
	require.NoError(t, database.DB.Model(&models.Payment{}).Count(&paymentCount).Error)
	assert.EqualValues(t, 1, paymentCount)
}
