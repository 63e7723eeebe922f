package routes

import (
	"github.com/etuitionbd/etuition_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	app.Post("/payment-checkout-session", handlers.CreateCheckoutSession)
	app.Patch("/payment-success", handlers.PaymentSuccess)
	app.Get("/payments/student/:email", handlers.GetPaymentsByStudent)
	app.Get("/payments/tutor/:email", handlers.GetPaymentsByTutor)
}
