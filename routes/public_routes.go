package routes

import (
	"github.com/etuitionbd/etuition_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App) {
	app.Get("/latest-tuitions", handlers.GetLatestTuitions)
	app.Get("/latest-tutors", handlers.GetLatestTutors)
	app.Get("/tutors", handlers.GetTutors)
	app.Get("/tutors/:id", handlers.GetTutorByID)
	app.Get("/tuitions", handlers.GetTuitions)
	app.Get("/tuitions/:id", handlers.GetTuitionByID)
}
