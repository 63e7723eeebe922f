package routes

import (
	"github.com/etuitionbd/etuition_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func TuitionRoutes(app *fiber.App) {
	app.Post("/tuitions", handlers.CreateTuition)
	app.Put("/tuitions/:id", handlers.UpdateTuition)
	app.Delete("/tuitions/:id", handlers.DeleteTuition)
	app.Get("/my-tuitions/:email", handlers.GetMyTuitions)
}
