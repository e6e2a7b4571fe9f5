package storage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/chlachla/chlachla-backend/internal/apperrors"
	"github.com/chlachla/chlachla-backend/internal/models"
)

// DatabaseStore persists rides and bookings in PostgreSQL through GORM.
// Seat mutation goes through single conditional UPDATEs so that the
// no-overbooking guarantee holds even across processes.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given GORM connection.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Ride operations

func (s *DatabaseStore) CreateRide(ride *models.Ride) (*models.Ride, error) {
	if err := s.db.Create(ride).Error; err != nil {
		return nil, apperrors.Internal("failed to create ride", err)
	}
	return ride, nil
}

func (s *DatabaseStore) GetRide(id string) (*models.Ride, error) {
	var ride models.Ride
	err := s.db.First(&ride, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("ride_not_found", "ride not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load ride", err)
	}
	return &ride, nil
}

func (s *DatabaseStore) SearchRides(search *models.RideSearch) ([]*models.Ride, error) {
	q := s.db.Where("status = ?", models.RideStatusActive)
	if search.Origin != "" {
		q = q.Where("LOWER(origin) = LOWER(?)", search.Origin)
	}
	if search.Destination != "" {
		q = q.Where("LOWER(destination) = LOWER(?)", search.Destination)
	}
	if search.Date != "" {
		q = q.Where("DATE(departure_time) = ?", search.Date)
	}
	if search.MinSeats > 0 {
		q = q.Where("available_seats >= ?", search.MinSeats)
	}

	var rides []*models.Ride
	if err := q.Order("departure_time asc").Find(&rides).Error; err != nil {
		return nil, apperrors.Internal("failed to search rides", err)
	}
	return rides, nil
}

func (s *DatabaseStore) UpdateRideStatus(id string, status string) error {
	res := s.db.Model(&models.Ride{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return apperrors.Internal("failed to update ride status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("ride_not_found", "ride not found")
	}
	return nil
}

// Booking operations

func (s *DatabaseStore) CreateBooking(booking *models.Booking) (*models.Booking, error) {
	if err := s.db.Create(booking).Error; err != nil {
		return nil, apperrors.Internal("failed to create booking", err)
	}
	return booking, nil
}

func (s *DatabaseStore) GetBooking(id string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("booking_not_found", "booking not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load booking", err)
	}
	return &booking, nil
}

func (s *DatabaseStore) GetBookingsByRide(rideID string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	if err := s.db.Where("ride_id = ?", rideID).Find(&bookings).Error; err != nil {
		return nil, apperrors.Internal("failed to load bookings", err)
	}
	return bookings, nil
}

func (s *DatabaseStore) GetBookingsByPassenger(passengerID string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := s.db.Where("passenger_id = ?", passengerID).
		Order("booking_time desc").Find(&bookings).Error
	if err != nil {
		return nil, apperrors.Internal("failed to load bookings", err)
	}
	return bookings, nil
}

func (s *DatabaseStore) GetActiveBooking(rideID, passengerID string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Where("ride_id = ? AND passenger_id = ? AND status IN ?",
		rideID, passengerID,
		[]string{models.BookingStatusPending, models.BookingStatusConfirmed}).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("booking_not_found", "no active booking")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load booking", err)
	}
	return &booking, nil
}

func (s *DatabaseStore) UpdateBooking(booking *models.Booking) error {
	res := s.db.Model(&models.Booking{}).Where("id = ?", booking.ID).
		Select("status", "payment_status", "confirmation_time",
			"cancellation_time", "cancellation_reason").
		Updates(booking)
	if res.Error != nil {
		return apperrors.Internal("failed to update booking", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("booking_not_found", "booking not found")
	}
	return nil
}

// Seat inventory operations

// ReserveSeats runs a single find-and-decrement-if-sufficient UPDATE.
// Zero rows affected means either the ride is gone or too few seats
// remain; a follow-up read tells the two apart and supplies the
// remaining count for the error message.
func (s *DatabaseStore) ReserveSeats(rideID string, seats int) error {
	res := s.db.Model(&models.Ride{}).
		Where("id = ? AND available_seats >= ?", rideID, seats).
		UpdateColumn("available_seats", gorm.Expr("available_seats - ?", seats))
	if res.Error != nil {
		return apperrors.Internal("failed to reserve seats", res.Error)
	}
	if res.RowsAffected == 0 {
		ride, err := s.GetRide(rideID)
		if err != nil {
			return err
		}
		return apperrors.Conflict("insufficient_seats",
			fmt.Sprintf("only %d seats available", ride.AvailableSeats))
	}
	return nil
}

func (s *DatabaseStore) ReleaseSeats(rideID string, seats int) error {
	res := s.db.Model(&models.Ride{}).
		Where("id = ? AND available_seats + ? <= total_seats", rideID, seats).
		UpdateColumn("available_seats", gorm.Expr("available_seats + ?", seats))
	if res.Error != nil {
		return apperrors.Internal("failed to release seats", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetRide(rideID); err != nil {
			return err
		}
		return apperrors.Internal(
			fmt.Sprintf("seat release would exceed capacity for ride %s", rideID), nil)
	}
	return nil
}
