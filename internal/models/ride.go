package models

import "time"

// Ride status constants
const (
	RideStatusActive     = "active"
	RideStatusInProgress = "in_progress"
	RideStatusCompleted  = "completed"
	RideStatusCancelled  = "cancelled"
)

// Seat limits enforced at publish and booking time
const (
	RideMinSeats    = 1
	RideMaxSeats    = 7
	BookingMinSeats = 1
	BookingMaxSeats = 4
)

// Ride is a driver's published trip with a fixed seat inventory.
// TotalSeats never changes after creation; AvailableSeats is mutated
// only through the booking engine's reserve/release operations.
type Ride struct {
	ID       string `json:"id" gorm:"primaryKey"`
	DriverID string `json:"driver_id" gorm:"not null;index"`

	// Route
	Origin      string `json:"origin" gorm:"not null"`
	Destination string `json:"destination" gorm:"not null"`

	// Timing
	DepartureTime time.Time `json:"departure_time" gorm:"not null;index"`

	// Inventory and pricing
	TotalSeats     int     `json:"total_seats" gorm:"not null"`
	AvailableSeats int     `json:"available_seats" gorm:"not null"`
	PricePerSeat   float64 `json:"price_per_seat" gorm:"not null"`

	Status         string `json:"status" gorm:"not null;default:active;index"`
	InstantBooking bool   `json:"instant_booking" gorm:"not null;default:true"`

	Description string `json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RideSearch holds the filters accepted by the ride search endpoint.
// Empty fields match everything.
type RideSearch struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"` // YYYY-MM-DD, matches the departure day
	MinSeats    int    `json:"min_seats"`
}
