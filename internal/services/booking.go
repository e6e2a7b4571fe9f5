package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chlachla/chlachla-backend/internal/apperrors"
	"github.com/chlachla/chlachla-backend/internal/models"
	"github.com/chlachla/chlachla-backend/internal/storage"
	"github.com/chlachla/chlachla-backend/internal/utils"
)

// BookingRequest carries the passenger's input for a new booking.
type BookingRequest struct {
	RideID          string `json:"ride_id"`
	SeatsRequested  int    `json:"seats_requested"`
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
}

// BookingService is the booking engine: it creates, confirms and
// cancels bookings against ride inventories. All seat mutation for a
// ride plus the booking record change is done under that ride's mutex,
// so concurrent bookings against one ride serialize while different
// rides proceed in parallel. The store's ReserveSeats is additionally
// atomic on its own, which keeps multi-process deployments safe.
type BookingService struct {
	store storage.Store
	rides *utils.KeyedMutex
	now   func() time.Time
}

// NewBookingService creates a booking engine over the given store.
func NewBookingService(store storage.Store) *BookingService {
	return &BookingService{
		store: store,
		rides: utils.NewKeyedMutex(),
		now:   time.Now,
	}
}

// SetClock overrides the service's time source. Tests only.
func (s *BookingService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateBooking books seats on a ride for a passenger. Instant-booking
// rides confirm immediately and reserve seats; request-based rides
// store a pending booking WITHOUT reserving inventory. Pending
// requests deliberately do not hold capacity; ConfirmBooking re-checks
// availability when the driver accepts.
//
// Precondition failures are reported in a fixed order: ride missing,
// ride not active, ride departed, self-booking, insufficient seats,
// duplicate booking.
func (s *BookingService) CreateBooking(ctx context.Context, passengerID string, req *BookingRequest) (*models.Booking, error) {
	if req.RideID == "" {
		return nil, apperrors.Validation("bad_request", "ride ID is required")
	}
	if req.SeatsRequested < models.BookingMinSeats || req.SeatsRequested > models.BookingMaxSeats {
		return nil, apperrors.Validation("bad_request",
			fmt.Sprintf("seats requested must be between %d and %d",
				models.BookingMinSeats, models.BookingMaxSeats))
	}

	s.rides.Lock(req.RideID)
	defer s.rides.Unlock(req.RideID)

	ride, err := s.store.GetRide(req.RideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != models.RideStatusActive {
		return nil, apperrors.Conflict("ride_unavailable", "ride is no longer available")
	}
	if !ride.DepartureTime.After(s.now()) {
		return nil, apperrors.Conflict("ride_in_past", "cannot book past rides")
	}
	if passengerID == ride.DriverID {
		return nil, apperrors.Unauthorized("self_booking", "cannot book your own ride")
	}
	if ride.AvailableSeats < req.SeatsRequested {
		return nil, apperrors.Conflict("insufficient_seats",
			fmt.Sprintf("only %d seats available", ride.AvailableSeats))
	}
	if _, err := s.store.GetActiveBooking(req.RideID, passengerID); err == nil {
		return nil, apperrors.Conflict("duplicate_booking",
			"you already have a booking for this ride")
	} else if !apperrors.Is(err, apperrors.KindNotFound) {
		return nil, err
	}

	pickup := req.PickupLocation
	if pickup == "" {
		pickup = ride.Origin
	}
	dropoff := req.DropoffLocation
	if dropoff == "" {
		dropoff = ride.Destination
	}

	status := models.BookingStatusPending
	if ride.InstantBooking {
		status = models.BookingStatusConfirmed
	}

	now := s.now()
	booking := &models.Booking{
		ID:              uuid.NewString(),
		RideID:          ride.ID,
		PassengerID:     passengerID,
		SeatsBooked:     req.SeatsRequested,
		TotalAmount:     float64(req.SeatsRequested) * ride.PricePerSeat,
		PickupLocation:  pickup,
		DropoffLocation: dropoff,
		Status:          status,
		PaymentStatus:   models.PaymentStatusPending,
		BookingTime:     now,
	}

	if ride.InstantBooking {
		// Reserve first, then create; undo the reservation if the
		// booking record cannot be written.
		if err := s.store.ReserveSeats(ride.ID, req.SeatsRequested); err != nil {
			return nil, err
		}
		booking.ConfirmationTime = &now
		if _, err := s.store.CreateBooking(booking); err != nil {
			_ = s.store.ReleaseSeats(ride.ID, req.SeatsRequested)
			return nil, err
		}
		return booking, nil
	}

	// Request-based ride: no inventory change until the driver confirms
	if _, err := s.store.CreateBooking(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ConfirmBooking promotes a pending booking to confirmed on behalf of
// the ride's driver. Capacity was not reserved at creation, so it is
// re-validated here; overlapping pending requests beyond capacity lose
// with an insufficient-seats error.
func (s *BookingService) ConfirmBooking(ctx context.Context, driverID, bookingID string) (*models.Booking, error) {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}

	s.rides.Lock(booking.RideID)
	defer s.rides.Unlock(booking.RideID)

	// Re-read under the lock; status may have moved
	booking, err = s.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}

	ride, err := s.store.GetRide(booking.RideID)
	if err != nil {
		return nil, err
	}
	// Existence is not leaked to non-owners
	if ride.DriverID != driverID {
		return nil, apperrors.NotFound("booking_not_found", "booking not found")
	}
	if !models.CanTransition(booking.Status, models.BookingStatusConfirmed) {
		return nil, apperrors.Conflict("invalid_transition",
			fmt.Sprintf("cannot confirm a %s booking", booking.Status))
	}
	if ride.Status != models.RideStatusActive {
		return nil, apperrors.Conflict("ride_unavailable", "ride is no longer available")
	}

	if err := s.store.ReserveSeats(ride.ID, booking.SeatsBooked); err != nil {
		return nil, err
	}

	now := s.now()
	booking.Status = models.BookingStatusConfirmed
	booking.ConfirmationTime = &now
	if err := s.store.UpdateBooking(booking); err != nil {
		_ = s.store.ReleaseSeats(ride.ID, booking.SeatsBooked)
		return nil, err
	}
	return booking, nil
}

// CancelBooking cancels a booking on behalf of its passenger or the
// ride's driver. Seats return to the inventory only if the booking had
// actually reserved them (i.e. it was confirmed).
func (s *BookingService) CancelBooking(ctx context.Context, callerID, bookingID, reason string) error {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		return err
	}

	s.rides.Lock(booking.RideID)
	defer s.rides.Unlock(booking.RideID)

	booking, err = s.store.GetBooking(bookingID)
	if err != nil {
		return err
	}

	ride, err := s.store.GetRide(booking.RideID)
	if err != nil {
		return err
	}
	if callerID != booking.PassengerID && callerID != ride.DriverID {
		return apperrors.NotFound("booking_not_found", "booking not found")
	}
	if booking.Terminal() {
		return apperrors.Conflict("already_terminal",
			fmt.Sprintf("booking is already %s", booking.Status))
	}

	wasConfirmed := booking.Status == models.BookingStatusConfirmed

	now := s.now()
	booking.Status = models.BookingStatusCancelled
	booking.CancellationTime = &now
	booking.CancellationReason = reason
	if err := s.store.UpdateBooking(booking); err != nil {
		return err
	}

	if wasConfirmed {
		// The booking is already cancelled at this point; a failed
		// release leaks seats rather than resurrecting the booking, so
		// name the leak for the operator.
		if err := s.store.ReleaseSeats(booking.RideID, booking.SeatsBooked); err != nil {
			return apperrors.Internal(
				fmt.Sprintf("booking %s cancelled but %d seats were not returned to ride %s",
					bookingID, booking.SeatsBooked, booking.RideID), err)
		}
	}
	return nil
}

// CompleteBooking moves a confirmed booking to completed on behalf of
// the ride's driver. Seats are not returned.
func (s *BookingService) CompleteBooking(ctx context.Context, driverID, bookingID string) (*models.Booking, error) {
	return s.finishAsDriver(driverID, bookingID, models.BookingStatusCompleted)
}

// MarkNoShow moves a confirmed booking to no_show on behalf of the
// ride's driver.
func (s *BookingService) MarkNoShow(ctx context.Context, driverID, bookingID string) (*models.Booking, error) {
	return s.finishAsDriver(driverID, bookingID, models.BookingStatusNoShow)
}

// finishAsDriver applies a post-ride transition after checking that the
// caller drives the booking's ride. Existence is not leaked to others.
func (s *BookingService) finishAsDriver(driverID, bookingID, status string) (*models.Booking, error) {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}
	ride, err := s.store.GetRide(booking.RideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != driverID {
		return nil, apperrors.NotFound("booking_not_found", "booking not found")
	}
	return s.finishBooking(bookingID, status)
}

func (s *BookingService) finishBooking(bookingID, status string) (*models.Booking, error) {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}

	s.rides.Lock(booking.RideID)
	defer s.rides.Unlock(booking.RideID)

	booking, err = s.store.GetBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(booking.Status, status) {
		return nil, apperrors.Conflict("invalid_transition",
			fmt.Sprintf("cannot move a %s booking to %s", booking.Status, status))
	}

	booking.Status = status
	if err := s.store.UpdateBooking(booking); err != nil {
		return nil, err
	}
	return booking, nil
}
