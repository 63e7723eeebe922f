package routes

import (
	"github.com/etuitionbd/etuition_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App) {
	app.Post("/users", handlers.RegisterUser)
	app.Post("/auth/login", handlers.Login)
	app.Get("/users/:email/role", handlers.GetUserRole)
}
