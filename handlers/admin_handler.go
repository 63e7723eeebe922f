package handlers

import (
	"errors"

	"github.com/etuitionbd/etuition_backend/database"
	"github.com/etuitionbd/etuition_backend/models"
	"github.com/etuitionbd/etuition_backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SetTuitionStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetTuitionStatus is the admin moderation action on a posting. Only
// Approved and Rejected are legal here.
func SetTuitionStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid tuition ID format"})
	}

	var req SetTuitionStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "status is required"})
	}

	modified, err := services.SetTuitionStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Status must be Approved or Rejected"})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Tuition not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Internal Server Error"})
		}
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"modifiedCount": modified,
	})
}

// GetAllTuitionsAdmin lists every posting regardless of status for the admin
// moderation queue.
func GetAllTuitionsAdmin(c *fiber.Ctx) error {
	var tuitions []models.Tuition
	if err := database.DB.Order("created_at DESC").Find(&tuitions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to load tuitions"})
	}
	return c.JSON(tuitions)
}

func GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to load users"})
	}
	return c.JSON(users)
}

func DeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user ID format"})
	}

	result := database.DB.Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Delete failed"})
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"deletedCount": result.RowsAffected,
	})
}

type UpdateUserRequest struct {
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

// UpdateUser changes a user's role or account status from the admin panel.
func UpdateUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user ID format"})
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Cannot parse JSON"})
	}

	updates := map[string]interface{}{}
	if req.Role != nil {
		switch *req.Role {
		case models.RoleStudent, models.RoleTutor, models.RoleAdmin:
			updates["role"] = *req.Role
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid role"})
		}
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Nothing to update"})
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Update failed"})
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"modifiedCount": result.RowsAffected,
	})
}
