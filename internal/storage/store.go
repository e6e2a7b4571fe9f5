package storage

import (
	"github.com/chlachla/chlachla-backend/internal/models"
)

// Store defines the interface for ride and booking persistence.
//
// ReserveSeats and ReleaseSeats are the only operations allowed to
// touch a ride's AvailableSeats, and each must be atomic on its own:
// two concurrent reservations must never together take more seats than
// remain. The booking engine adds per-ride serialization on top, but
// the store-level guarantee is what keeps a multi-process deployment
// honest.
type Store interface {
	// Ride operations
	CreateRide(ride *models.Ride) (*models.Ride, error)
	GetRide(id string) (*models.Ride, error)
	SearchRides(search *models.RideSearch) ([]*models.Ride, error)
	UpdateRideStatus(id string, status string) error

	// Booking operations
	CreateBooking(booking *models.Booking) (*models.Booking, error)
	GetBooking(id string) (*models.Booking, error)
	GetBookingsByRide(rideID string) ([]*models.Booking, error)
	GetBookingsByPassenger(passengerID string) ([]*models.Booking, error)
	// GetActiveBooking returns the passenger's pending or confirmed
	// booking for the ride, or a NotFound error.
	GetActiveBooking(rideID, passengerID string) (*models.Booking, error)
	UpdateBooking(booking *models.Booking) error

	// Seat inventory operations
	// ReserveSeats decrements AvailableSeats by seats if and only if
	// enough remain; otherwise it fails with a Conflict error and
	// changes nothing.
	ReserveSeats(rideID string, seats int) error
	// ReleaseSeats returns seats to the ride's inventory. Pushing
	// AvailableSeats past TotalSeats indicates corrupted accounting
	// and fails with an Internal error.
	ReleaseSeats(rideID string, seats int) error
}
