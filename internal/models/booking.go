package models

import "time"

// Booking represents a passenger's claim on seats of a ride
type Booking struct {
	ID          string `json:"id" gorm:"primaryKey"`
	RideID      string `json:"ride_id" gorm:"not null;index"`
	PassengerID string `json:"passenger_id" gorm:"not null;index"`

	// Seats and pricing
	SeatsBooked int     `json:"seats_booked" gorm:"not null"`
	TotalAmount float64 `json:"total_amount" gorm:"not null"`

	// Optional pickup/dropoff overrides; default to the ride's route
	PickupLocation  string `json:"pickup_location,omitempty"`
	DropoffLocation string `json:"dropoff_location,omitempty"`

	Status        string `json:"status" gorm:"not null;index"`
	PaymentStatus string `json:"payment_status" gorm:"not null;default:pending"`

	BookingTime        time.Time  `json:"booking_time"`
	ConfirmationTime   *time.Time `json:"confirmation_time,omitempty"`
	CancellationTime   *time.Time `json:"cancellation_time,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Booking status constants
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
	BookingStatusNoShow    = "no_show"

	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

// bookingTransitions is the full state machine for a booking. A status
// absent from the map is terminal.
var bookingTransitions = map[string][]string{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted, BookingStatusNoShow},
}

// CanTransition reports whether a booking may move from one status to
// another. Terminal states (cancelled, completed, no_show) admit no
// transitions.
func CanTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether status admits no further transitions.
func (b *Booking) Terminal() bool {
	return len(bookingTransitions[b.Status]) == 0
}

// Active reports whether the booking currently counts against the
// one-booking-per-passenger-per-ride rule.
func (b *Booking) Active() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
