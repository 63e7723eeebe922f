package handlers

import (
	"strconv"

	"github.com/etuitionbd/etuition_backend/database"
	"github.com/etuitionbd/etuition_backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateTuitionRequest struct {
	Subject      string  `json:"subject" validate:"required"`
	Class        string  `json:"class" validate:"required"`
	Location     string  `json:"location" validate:"required"`
	Budget       float64 `json:"budget" validate:"required,gt=0"`
	StudentEmail string  `json:"studentEmail" validate:"required,email"`
}

// CreateTuition posts a new tuition. Status is always Pending until an admin
// approves it, whatever the frontend sends.
func CreateTuition(c *fiber.Ctx) error {
	var req CreateTuitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing required fields"})
	}

	tuition := models.Tuition{
		Subject:      req.Subject,
		Class:        req.Class,
		Location:     req.Location,
		Budget:       req.Budget,
		StudentEmail: req.StudentEmail,
		Status:       models.TuitionStatusPending,
	}
	if err := database.DB.Create(&tuition).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"insertedId": tuition.ID,
	})
}

// GetTuitions is the browse page listing. Without a studentEmail filter only
// Approved postings show; with one, the student sees all of their own.
// Supports subject/location substring filters, class match, budget or date
// sort and page/limit pagination.
func GetTuitions(c *fiber.Ctx) error {
	studentEmail := c.Query("studentEmail")

	query := database.DB.Model(&models.Tuition{})
	if studentEmail != "" {
		query = query.Where("student_email = ?", studentEmail)
	} else {
		query = query.Where("status = ?", models.TuitionStatusApproved)
	}

	if subject := c.Query("subject"); subject != "" {
		query = query.Where("LOWER(subject) LIKE LOWER(?)", "%"+subject+"%")
	}
	if location := c.Query("location"); location != "" {
		query = query.Where("LOWER(location) LIKE LOWER(?)", "%"+location+"%")
	}
	if class := c.Query("className"); class != "" {
		query = query.Where("class = ?", class)
	}

	switch c.Query("sort") {
	case "budget":
		query = query.Order("budget ASC")
	default:
		query = query.Order("created_at DESC")
	}

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", "0"))
	if err != nil || limit < 0 {
		limit = 0
	}
	if limit > 0 {
		query = query.Offset((page - 1) * limit).Limit(limit)
	}

	var tuitions []models.Tuition
	if err := query.Find(&tuitions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	return c.JSON(tuitions)
}

func GetTuitionByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid tuition ID format"})
	}

	var tuition models.Tuition
	if err := database.DB.First(&tuition, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Tuition not found"})
	}
	return c.JSON(tuition)
}

type UpdateTuitionRequest struct {
	Subject  *string  `json:"subject,omitempty"`
	Class    *string  `json:"class,omitempty"`
	Location *string  `json:"location,omitempty"`
	Budget   *float64 `json:"budget,omitempty"`
}

func UpdateTuition(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid tuition ID format"})
	}

	var req UpdateTuitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cannot parse JSON"})
	}

	updates := map[string]interface{}{}
	if req.Subject != nil {
		updates["subject"] = *req.Subject
	}
	if req.Class != nil {
		updates["class"] = *req.Class
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Budget != nil {
		updates["budget"] = *req.Budget
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Nothing to update"})
	}

	result := database.DB.Model(&models.Tuition{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"modifiedCount": result.RowsAffected,
	})
}

func DeleteTuition(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid tuition ID format"})
	}

	result := database.DB.Delete(&models.Tuition{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"deletedCount": result.RowsAffected,
	})
}

func GetMyTuitions(c *fiber.Ctx) error {
	email := c.Params("email")

	var tuitions []models.Tuition
	if err := database.DB.Where("student_email = ?", email).Order("created_at DESC").Find(&tuitions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	return c.JSON(tuitions)
}

// GetLatestTuitions feeds the home page: four newest approved postings.
func GetLatestTuitions(c *fiber.Ctx) error {
	var tuitions []models.Tuition
	err := database.DB.Where("status = ?", models.TuitionStatusApproved).
		Order("created_at DESC").Limit(4).Find(&tuitions).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	return c.JSON(tuitions)
}

func GetTutors(c *fiber.Ctx) error {
	var tutors []models.User
	err := database.DB.Where("role = ? AND status = ?", models.RoleTutor, "Active").
		Order("created_at DESC").Find(&tutors).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	return c.JSON(tutors)
}

func GetTutorByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid tutor ID format"})
	}

	var tutor models.User
	if err := database.DB.First(&tutor, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Tutor not found"})
	}
	return c.JSON(tutor)
}

// GetLatestTutors feeds the home page's "meet our tutors" strip.
func GetLatestTutors(c *fiber.Ctx) error {
	var tutors []models.User
	err := database.DB.Where("role = ?", models.RoleTutor).
		Order("created_at DESC").Limit(4).Find(&tutors).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}
	return c.JSON(tutors)
}
