package handlers

import (
	"errors"

	"github.com/etuitionbd/etuition_backend/database"
	"github.com/etuitionbd/etuition_backend/models"
	"github.com/etuitionbd/etuition_backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ApplyTuitionRequest struct {
	TuitionID      string `json:"tuitionId" validate:"required"`
	TutorEmail     string `json:"tutorEmail" validate:"required,email"`
	TutorName      string `json:"tutorName"`
	Qualifications string `json:"qualifications"`
	Experience     string `json:"experience"`
	ExpectedSalary int    `json:"expectedSalary"`
	Contact        string `json:"contact"`
}

func ApplyTuition(c *fiber.Ctx) error {
	var req ApplyTuitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	tuitionID, err := uuid.Parse(req.TuitionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid tuition ID format."})
	}

	application, err := services.SubmitApplication(tuitionID, services.ApplicationInput{
		TutorEmail:     req.TutorEmail,
		TutorName:      req.TutorName,
		Qualifications: req.Qualifications,
		Experience:     req.Experience,
		ExpectedSalary: req.ExpectedSalary,
		Contact:        req.Contact,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Tuition not found"})
		case errors.Is(err, services.ErrDuplicate):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"success": false, "message": "You have already applied for this tuition."})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Internal Server Error"})
		}
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Application submitted successfully!",
		"insertedId": application.ID,
	})
}

type UpdateApplicationRequest struct {
	Qualifications *string `json:"qualifications,omitempty"`
	Experience     *string `json:"experience,omitempty"`
	ExpectedSalary *int    `json:"expectedSalary,omitempty"`
	Contact        *string `json:"contact,omitempty"`
	Status         *string `json:"status,omitempty"`
}

func UpdateApplication(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid application ID format"})
	}

	var req UpdateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}

	application, err := services.UpdateApplication(id, services.ApplicationPatch{
		Qualifications: req.Qualifications,
		Experience:     req.Experience,
		ExpectedSalary: req.ExpectedSalary,
		Contact:        req.Contact,
		Status:         req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Application not found"})
		case errors.Is(err, services.ErrImmutable):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Approved applications can no longer be changed"})
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid application status"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Internal Server Error"})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"result":  application,
	})
}

func DeleteApplication(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid application ID format"})
	}

	if err := services.DeleteApplication(id); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Application not found"})
		case errors.Is(err, services.ErrImmutable):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Approved applications cannot be deleted"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Internal Server Error"})
		}
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"deletedCount": 1,
	})
}

func GetApplicationsByTutor(c *fiber.Ctx) error {
	email := c.Params("email")

	var applications []models.Application
	if err := database.DB.Where("tutor_email = ?", email).Order("applied_at DESC").Find(&applications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	return c.JSON(applications)
}

func GetApplicationsByStudent(c *fiber.Ctx) error {
	email := c.Params("email")

	var applications []models.Application
	if err := database.DB.Where("student_email = ?", email).Order("applied_at DESC").Find(&applications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	return c.JSON(applications)
}

func GetApplicationsByTuition(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid tuition ID format"})
	}

	var applications []models.Application
	if err := database.DB.Where("tuition_id = ?", id).Order("applied_at DESC").Find(&applications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	return c.JSON(applications)
}
