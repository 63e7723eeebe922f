package handlers

import (
	"errors"
	"log"

	"github.com/etuitionbd/etuition_backend/database"
	"github.com/etuitionbd/etuition_backend/models"
	"github.com/etuitionbd/etuition_backend/services"
	"github.com/gofiber/fiber/v2"
)

type CheckoutSessionRequest struct {
	ApplicationID  string `json:"applicationId" validate:"required"`
	TuitionID      string `json:"tuitionId" validate:"required"`
	TutorEmail     string `json:"tutorEmail" validate:"required,email"`
	TutorName      string `json:"tutorName" validate:"required"`
	Subject        string `json:"subject" validate:"required"`
	Class          string `json:"class" validate:"required"`
	ExpectedSalary int    `json:"expectedSalary" validate:"required,gt=0"`
	StudentEmail   string `json:"studentEmail" validate:"required,email"`
}

// CreateCheckoutSession returns the gateway's hosted checkout URL for the
// student to pay the tutor's expected salary. Validation runs before any
// gateway call.
func CreateCheckoutSession(c *fiber.Ctx) error {
	var req CheckoutSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	url, err := services.CreateCheckoutIntent(services.CheckoutIntentInput{
		ApplicationID:  req.ApplicationID,
		TuitionID:      req.TuitionID,
		TutorEmail:     req.TutorEmail,
		TutorName:      req.TutorName,
		Subject:        req.Subject,
		Class:          req.Class,
		ExpectedSalary: req.ExpectedSalary,
		StudentEmail:   req.StudentEmail,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing or invalid checkout fields"})
		case errors.Is(err, services.ErrGateway):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "Failed to create checkout session"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
		}
	}

	return c.JSON(fiber.Map{"url": url})
}

type PaymentSuccessRequest struct {
	SessionID string `json:"sessionId"`
}

// PaymentSuccess is the callback the frontend hits after the gateway
// redirects back. Replays are answered with the already stored payment and a
// 200, so the frontend can safely retry.
func PaymentSuccess(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		var req PaymentSuccessRequest
		if err := c.BodyParser(&req); err == nil {
			sessionID = req.SessionID
		}
	}
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "session_id is required"})
	}

	payment, err := services.FinalizeByPayment(sessionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyFinalized):
			return c.JSON(fiber.Map{
				"success": true,
				"message": "Payment already processed",
				"payment": payment,
			})
		case errors.Is(err, services.ErrNotPaid):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"success": false, "message": "Payment not confirmed by the gateway"})
		case errors.Is(err, services.ErrGateway):
			log.Printf("🔥 Payment finalization failed for session %s: %v", sessionID, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "message": err.Error()})
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "session_id is required"})
		default:
			log.Printf("🔥 Payment finalization failed for session %s: %v", sessionID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to finalize payment"})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"payment": payment,
	})
}

func GetPaymentsByStudent(c *fiber.Ctx) error {
	email := c.Params("email")

	var records []models.Payment
	if err := database.DB.Where("student_email = ?", email).Order("paid_at DESC").Find(&records).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	return c.JSON(records)
}

func GetPaymentsByTutor(c *fiber.Ctx) error {
	email := c.Params("email")

	var records []models.Payment
	if err := database.DB.Where("tutor_email = ?", email).Order("paid_at DESC").Find(&records).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	return c.JSON(records)
}
