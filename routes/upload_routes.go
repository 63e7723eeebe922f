package routes

import (
	"github.com/etuitionbd/etuition_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App) {
	app.Get("/uploads/signature", handlers.GenerateUploadSignature)
}
