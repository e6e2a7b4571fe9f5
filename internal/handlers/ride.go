package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/chlachla/chlachla-backend/internal/middleware"
	"github.com/chlachla/chlachla-backend/internal/models"
	"github.com/chlachla/chlachla-backend/internal/storage"
	"github.com/chlachla/chlachla-backend/internal/utils"
)

// RideHandler handles ride publishing and discovery
type RideHandler struct {
	store storage.Store
}

// NewRideHandler creates a new ride handler
func NewRideHandler(store storage.Store) *RideHandler {
	return &RideHandler{store: store}
}

type publishRideRequest struct {
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	TotalSeats     int       `json:"total_seats"`
	PricePerSeat   float64   `json:"price_per_seat"`
	InstantBooking *bool     `json:"instant_booking"`
	Description    string    `json:"description"`
}

// PublishRide handles POST /api/rides
func (h *RideHandler) PublishRide(c *fiber.Ctx) error {
	var req publishRideRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Origin == "" || req.Destination == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Origin and destination are required",
		})
	}
	if req.TotalSeats < models.RideMinSeats || req.TotalSeats > models.RideMaxSeats {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Total seats must be between 1 and 7",
		})
	}
	if req.PricePerSeat <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Price per seat must be positive",
		})
	}
	if !req.DepartureTime.After(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Departure time must be in the future",
		})
	}

	// Instant booking defaults to on, matching rider expectations
	instant := true
	if req.InstantBooking != nil {
		instant = *req.InstantBooking
	}

	ride := &models.Ride{
		ID:             utils.GenerateSecureID("RD"),
		DriverID:       middleware.CallerID(c),
		Origin:         req.Origin,
		Destination:    req.Destination,
		DepartureTime:  req.DepartureTime,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		PricePerSeat:   req.PricePerSeat,
		Status:         models.RideStatusActive,
		InstantBooking: instant,
		Description:    req.Description,
	}

	if _, err := h.store.CreateRide(ride); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Ride published successfully",
		"ride":    ride,
	})
}

// SearchRides handles GET /api/rides/search
func (h *RideHandler) SearchRides(c *fiber.Ctx) error {
	search := &models.RideSearch{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Date:        c.Query("date"),
		MinSeats:    c.QueryInt("seats"),
	}

	rides, err := h.store.SearchRides(search)
	if err != nil {
		return respondError(c, err)
	}

	// Hide departed rides from search results
	now := time.Now()
	upcoming := make([]*models.Ride, 0, len(rides))
	for _, ride := range rides {
		if ride.DepartureTime.After(now) {
			upcoming = append(upcoming, ride)
		}
	}

	return c.JSON(fiber.Map{
		"rides": upcoming,
		"count": len(upcoming),
	})
}

// GetRide handles GET /api/rides/:id
func (h *RideHandler) GetRide(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Ride ID is required",
		})
	}

	ride, err := h.store.GetRide(id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(ride)
}

// UpdateRideStatus handles PUT /api/rides/:id/status (driver only).
// Cancelling or completing a ride takes it out of search and blocks
// new bookings; existing bookings are untouched and must be cancelled
// or completed individually.
func (h *RideHandler) UpdateRideStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Ride ID is required",
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
	if req.Status != models.RideStatusCancelled && req.Status != models.RideStatusCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status value",
		})
	}

	ride, err := h.store.GetRide(id)
	if err != nil {
		return respondError(c, err)
	}
	if ride.DriverID != middleware.CallerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only the driver can update a ride's status",
		})
	}

	if err := h.store.UpdateRideStatus(id, req.Status); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Ride status updated successfully",
	})
}

// GetRideBookings handles GET /api/rides/:id/bookings (driver only)
func (h *RideHandler) GetRideBookings(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Ride ID is required",
		})
	}

	ride, err := h.store.GetRide(id)
	if err != nil {
		return respondError(c, err)
	}
	if ride.DriverID != middleware.CallerID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only the driver can list a ride's bookings",
		})
	}

	bookings, err := h.store.GetBookingsByRide(id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"bookings": bookings,
		"count":    len(bookings),
	})
}
