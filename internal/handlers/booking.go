package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chlachla/chlachla-backend/internal/middleware"
	"github.com/chlachla/chlachla-backend/internal/models"
	"github.com/chlachla/chlachla-backend/internal/services"
	"github.com/chlachla/chlachla-backend/internal/storage"
)

// BookingHandler handles booking-related requests
type BookingHandler struct {
	engine *services.BookingService
	store  storage.Store
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(engine *services.BookingService, store storage.Store) *BookingHandler {
	return &BookingHandler{
		engine: engine,
		store:  store,
	}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	var req services.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	booking, err := h.engine.CreateBooking(c.Context(), middleware.CallerID(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	message := "Booking request sent to driver"
	if booking.Status == models.BookingStatusConfirmed {
		message = "Booking confirmed successfully"
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"booking": booking,
	})
}

// ConfirmBooking handles PUT /api/bookings/:id/confirm (driver action)
func (h *BookingHandler) ConfirmBooking(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Booking ID is required",
		})
	}

	booking, err := h.engine.ConfirmBooking(c.Context(), middleware.CallerID(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Booking confirmed successfully",
		"booking": booking,
	})
}

// CancelBooking handles DELETE /api/bookings/:id
func (h *BookingHandler) CancelBooking(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Booking ID is required",
		})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional on cancellation
	_ = c.BodyParser(&req)

	if err := h.engine.CancelBooking(c.Context(), middleware.CallerID(c), id, req.Reason); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Booking cancelled successfully",
	})
}

// UpdateBookingStatus handles PUT /api/bookings/:id/status for the
// post-ride transitions (completed, no_show).
func (h *BookingHandler) UpdateBookingStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Booking ID is required",
		})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var booking *models.Booking
	var err error
	switch req.Status {
	case models.BookingStatusCompleted:
		booking, err = h.engine.CompleteBooking(c.Context(), middleware.CallerID(c), id)
	case models.BookingStatusNoShow:
		booking, err = h.engine.MarkNoShow(c.Context(), middleware.CallerID(c), id)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status value",
		})
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Booking status updated successfully",
		"booking": booking,
	})
}

// GetBooking handles GET /api/bookings/:id
func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Booking ID is required",
		})
	}

	booking, err := h.store.GetBooking(id)
	if err != nil {
		return respondError(c, err)
	}

	// Only the passenger or the ride's driver may view a booking
	callerID := middleware.CallerID(c)
	if booking.PassengerID != callerID {
		ride, err := h.store.GetRide(booking.RideID)
		if err != nil || ride.DriverID != callerID {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Booking not found",
			})
		}
	}

	return c.JSON(booking)
}

// GetMyBookings handles GET /api/bookings
func (h *BookingHandler) GetMyBookings(c *fiber.Ctx) error {
	bookings, err := h.store.GetBookingsByPassenger(middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"bookings": bookings,
		"count":    len(bookings),
	})
}
