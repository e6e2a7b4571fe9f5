package storage

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chlachla/chlachla-backend/internal/apperrors"
	"github.com/chlachla/chlachla-backend/internal/models"
)

// MemoryStore holds rides and bookings in memory. Used for tests and
// for local development with USE_MEMORY_STORE=true; real deployments
// use the Postgres-backed DatabaseStore since bookings are financial
// commitments.
type MemoryStore struct {
	rides    map[string]*models.Ride
	bookings map[string]*models.Booking

	rideMu    sync.RWMutex
	bookingMu sync.RWMutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rides:    make(map[string]*models.Ride),
		bookings: make(map[string]*models.Booking),
	}
}

// Ride operations

func (m *MemoryStore) CreateRide(ride *models.Ride) (*models.Ride, error) {
	m.rideMu.Lock()
	defer m.rideMu.Unlock()

	if _, exists := m.rides[ride.ID]; exists {
		return nil, apperrors.Conflict("duplicate_ride", "ride already exists")
	}
	now := time.Now()
	ride.CreatedAt = now
	ride.UpdatedAt = now

	cp := *ride
	m.rides[ride.ID] = &cp
	return ride, nil
}

func (m *MemoryStore) GetRide(id string) (*models.Ride, error) {
	m.rideMu.RLock()
	defer m.rideMu.RUnlock()

	ride, exists := m.rides[id]
	if !exists {
		return nil, apperrors.NotFound("ride_not_found", "ride not found")
	}
	cp := *ride
	return &cp, nil
}

func (m *MemoryStore) SearchRides(search *models.RideSearch) ([]*models.Ride, error) {
	m.rideMu.RLock()
	defer m.rideMu.RUnlock()

	var results []*models.Ride
	for _, ride := range m.rides {
		if ride.Status != models.RideStatusActive {
			continue
		}
		if search.Origin != "" && !strings.EqualFold(ride.Origin, search.Origin) {
			continue
		}
		if search.Destination != "" && !strings.EqualFold(ride.Destination, search.Destination) {
			continue
		}
		if search.Date != "" && ride.DepartureTime.Format("2006-01-02") != search.Date {
			continue
		}
		if search.MinSeats > 0 && ride.AvailableSeats < search.MinSeats {
			continue
		}
		cp := *ride
		results = append(results, &cp)
	}
	return results, nil
}

func (m *MemoryStore) UpdateRideStatus(id string, status string) error {
	m.rideMu.Lock()
	defer m.rideMu.Unlock()

	ride, exists := m.rides[id]
	if !exists {
		return apperrors.NotFound("ride_not_found", "ride not found")
	}
	ride.Status = status
	ride.UpdatedAt = time.Now()
	return nil
}

// Booking operations

func (m *MemoryStore) CreateBooking(booking *models.Booking) (*models.Booking, error) {
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	if _, exists := m.bookings[booking.ID]; exists {
		return nil, apperrors.Conflict("duplicate_booking", "booking already exists")
	}
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	cp := *booking
	m.bookings[booking.ID] = &cp
	return booking, nil
}

func (m *MemoryStore) GetBooking(id string) (*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	booking, exists := m.bookings[id]
	if !exists {
		return nil, apperrors.NotFound("booking_not_found", "booking not found")
	}
	cp := *booking
	return &cp, nil
}

func (m *MemoryStore) GetBookingsByRide(rideID string) ([]*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var bookings []*models.Booking
	for _, b := range m.bookings {
		if b.RideID == rideID {
			cp := *b
			bookings = append(bookings, &cp)
		}
	}
	return bookings, nil
}

func (m *MemoryStore) GetBookingsByPassenger(passengerID string) ([]*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var bookings []*models.Booking
	for _, b := range m.bookings {
		if b.PassengerID == passengerID {
			cp := *b
			bookings = append(bookings, &cp)
		}
	}
	return bookings, nil
}

func (m *MemoryStore) GetActiveBooking(rideID, passengerID string) (*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	for _, b := range m.bookings {
		if b.RideID == rideID && b.PassengerID == passengerID && b.Active() {
			cp := *b
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("booking_not_found", "no active booking")
}

func (m *MemoryStore) UpdateBooking(booking *models.Booking) error {
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	if _, exists := m.bookings[booking.ID]; !exists {
		return apperrors.NotFound("booking_not_found", "booking not found")
	}
	booking.UpdatedAt = time.Now()
	cp := *booking
	m.bookings[booking.ID] = &cp
	return nil
}

// Seat inventory operations

func (m *MemoryStore) ReserveSeats(rideID string, seats int) error {
	m.rideMu.Lock()
	defer m.rideMu.Unlock()

	ride, exists := m.rides[rideID]
	if !exists {
		return apperrors.NotFound("ride_not_found", "ride not found")
	}
	if ride.AvailableSeats < seats {
		return apperrors.Conflict("insufficient_seats",
			fmt.Sprintf("only %d seats available", ride.AvailableSeats))
	}
	ride.AvailableSeats -= seats
	ride.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) ReleaseSeats(rideID string, seats int) error {
	m.rideMu.Lock()
	defer m.rideMu.Unlock()

	ride, exists := m.rides[rideID]
	if !exists {
		return apperrors.NotFound("ride_not_found", "ride not found")
	}
	if ride.AvailableSeats+seats > ride.TotalSeats {
		return apperrors.Internal(
			fmt.Sprintf("seat release would exceed capacity for ride %s", rideID), nil)
	}
	ride.AvailableSeats += seats
	ride.UpdatedAt = time.Now()
	return nil
}
