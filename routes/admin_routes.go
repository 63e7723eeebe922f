package routes

import (
	"github.com/etuitionbd/etuition_backend/handlers"
	"github.com/etuitionbd/etuition_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

// AdminRoutes must be registered before PublicRoutes so /tuitions/admin is
// matched ahead of /tuitions/:id. The user-management routes are the only
// surface behind a JWT; the guards are attached per route because POST
// /users (registration) and GET /users/:email/role stay open.
func AdminRoutes(app *fiber.App) {
	app.Get("/tuitions/admin", handlers.GetAllTuitionsAdmin)
	app.Patch("/tuitions/:id/status", handlers.SetTuitionStatus)

	app.Get("/users", middleware.Protected(), middleware.AdminRequired(), handlers.GetAllUsers)
	app.Delete("/users/:id", middleware.Protected(), middleware.AdminRequired(), handlers.DeleteUser)
	app.Put("/users/:id", middleware.Protected(), middleware.AdminRequired(), handlers.UpdateUser)
}
