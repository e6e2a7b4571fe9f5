package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chlachla/chlachla-backend/internal/handlers"
	"github.com/chlachla/chlachla-backend/internal/middleware"
	"github.com/chlachla/chlachla-backend/internal/services"
)

// Handlers bundles everything SetupRoutes needs to wire the API.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Ride    *handlers.RideHandler
	Booking *handlers.BookingHandler
	Health  *handlers.HealthHandler
	Issuer  services.TokenIssuer
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, h *Handlers) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Chla Chla Backend!",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":   "/health",
				"auth":     "/api/auth",
				"rides":    "/api/rides",
				"bookings": "/api/bookings",
			},
		})
	})

	app.Get("/health", h.Health.Health)

	api := app.Group("/api")

	// Auth routes (no token required)
	auth := api.Group("/auth")
	auth.Post("/send-otp", h.Auth.SendOTP)
	auth.Post("/verify-otp", h.Auth.VerifyOTP)

	requireAuth := middleware.RequireAuth(h.Issuer)

	// Ride routes; search and lookup are public, publishing is not
	rides := api.Group("/rides")
	rides.Get("/search", h.Ride.SearchRides)
	rides.Get("/:id", h.Ride.GetRide)
	rides.Post("/", requireAuth, h.Ride.PublishRide)
	rides.Put("/:id/status", requireAuth, h.Ride.UpdateRideStatus)
	rides.Get("/:id/bookings", requireAuth, h.Ride.GetRideBookings)

	// Booking routes, all authenticated
	bookings := api.Group("/bookings", requireAuth)
	bookings.Post("/", h.Booking.CreateBooking)
	bookings.Get("/", h.Booking.GetMyBookings)
	bookings.Get("/:id", h.Booking.GetBooking)
	bookings.Put("/:id/confirm", h.Booking.ConfirmBooking)
	bookings.Put("/:id/status", h.Booking.UpdateBookingStatus)
	bookings.Delete("/:id", h.Booking.CancelBooking)
}
