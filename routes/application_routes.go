package routes

import (
	"github.com/etuitionbd/etuition_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func ApplicationRoutes(app *fiber.App) {
	app.Post("/apply-tuition", handlers.ApplyTuition)
	app.Patch("/applications/:id", handlers.UpdateApplication)
	app.Delete("/applications/:id", handlers.DeleteApplication)
	app.Get("/applications/tutor/:email", handlers.GetApplicationsByTutor)
	app.Get("/applications/student/:email", handlers.GetApplicationsByStudent)
	app.Get("/applications/tuition/:id", handlers.GetApplicationsByTuition)
}
