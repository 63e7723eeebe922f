package jobs

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/etuitionbd/etuition_backend/database"
	"github.com/etuitionbd/etuition_backend/models"
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

// A payment row whose application never got approved is the footprint of a
// crash between recording the payment and finishing the cascade.
func TestReconcilePaymentsReplaysStrandedCascade(t *testing.T) {
	setupTestDB(t)

	tuition := models.Tuition{
		Subject: "Math", Class: "10", Location: "Dhaka", Budget: 500,
		StudentEmail: "student@example.com", Status: models.TuitionStatusApproved,
	}
	require.NoError(t, database.DB.Create(&tuition).Error)

	chosen := models.Application{
		TuitionID: tuition.ID, TutorEmail: "tutor@example.com", StudentEmail: tuition.StudentEmail,
		ExpectedSalary: 300, Status: models.ApplicationStatusPending, AppliedAt: time.Now(),
	}
	require.NoError(t, database.DB.Create(&chosen).Error)

	sibling := models.Application{
		TuitionID: tuition.ID, TutorEmail: "other@example.com", StudentEmail: tuition.StudentEmail,
		ExpectedSalary: 350, Status: models.ApplicationStatusPending, AppliedAt: time.Now(),
	}
	require.NoError(t, database.DB.Create(&sibling).Error)

	payment := models.Payment{
		Amount: 300, Currency: "bdt",
		StudentEmail: tuition.StudentEmail, TutorEmail: chosen.TutorEmail,
		TransactionID: "pi_stranded", SessionID: "cs_stranded",
		ApplicationID: chosen.ID, TuitionID: tuition.ID,
		PaymentStatus: "paid", PaidAt: time.Now(),
	}
	require.NoError(t, database.DB.Create(&payment).Error)

	ReconcilePayments()

	var reloadedChosen models.Application
	require.NoError(t, database.DB.First(&reloadedChosen, "id = ?", chosen.ID).Error)
	assert.Equal(t, models.ApplicationStatusApproved, reloadedChosen.Status)
	require.NotNil(t, reloadedChosen.TransactionID)
	assert.Equal(t, "pi_stranded", *reloadedChosen.TransactionID)

	var reloadedSibling models.Application
	require.NoError(t, database.DB.First(&reloadedSibling, "id = ?", sibling.ID).Error)
	assert.Equal(t, models.ApplicationStatusRejected, reloadedSibling.Status)

	var reloadedTuition models.Tuition
	require.NoError(t, database.DB.First(&reloadedTuition, "id = ?", tuition.ID).Error)
	assert.Equal(t, models.TuitionStatusOngoing, reloadedTuition.Status)
}

func TestReconcilePaymentsNoopWhenConsistent(t *testing.T) {
	setupTestDB(t)

	tuition := models.Tuition{
		Subject: "Physics", Class: "9", Location: "Chittagong", Budget: 400,
		StudentEmail: "student@example.com", Status: models.TuitionStatusOngoing,
	}
	require.NoError(t, database.DB.Create(&tuition).Error)

	transactionID := "pi_done"
	application := models.Application{
		TuitionID: tuition.ID, TutorEmail: "tutor@example.com", StudentEmail: tuition.StudentEmail,
		ExpectedSalary: 300, Status: models.ApplicationStatusApproved,
		TransactionID: &transactionID, AppliedAt: time.Now(),
	}
	require.NoError(t, database.DB.Create(&application).Error)

	payment := models.Payment{
		Amount: 300, Currency: "bdt",
		StudentEmail: tuition.StudentEmail, TutorEmail: application.TutorEmail,
		TransactionID: transactionID, SessionID: "cs_done",
		ApplicationID: application.ID, TuitionID: tuition.ID,
		PaymentStatus: "paid", PaidAt: time.Now(),
	}
	require.NoError(t, database.DB.Create(&payment).Error)

	ReconcilePayments()

	var reloaded models.Application
	require.NoError(t, database.DB.First(&reloaded, "id = ?", application.ID).Error)
	assert.Equal(t, models.ApplicationStatusApproved, reloaded.Status)
}
