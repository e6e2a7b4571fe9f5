package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chlachla/chlachla-backend/internal/apperrors"
	"github.com/chlachla/chlachla-backend/internal/models"
	"github.com/chlachla/chlachla-backend/internal/services"
	"github.com/chlachla/chlachla-backend/internal/storage"
)

func newBookingService(t *testing.T) (*services.BookingService, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return services.NewBookingService(store), store
}

func seedRide(t *testing.T, store *storage.MemoryStore, ride *models.Ride) *models.Ride {
	t.Helper()
	if ride.ID == "" {
		ride.ID = "RD1001"
	}
	if ride.DriverID == "" {
		ride.DriverID = "driver-1"
	}
	if ride.Status == "" {
		ride.Status = models.RideStatusActive
	}
	if ride.DepartureTime.IsZero() {
		ride.DepartureTime = time.Now().Add(24 * time.Hour)
	}
	if ride.AvailableSeats == 0 {
		ride.AvailableSeats = ride.TotalSeats
	}
	created, err := store.CreateRide(ride)
	require.NoError(t, err)
	return created
}

// checkInvariant asserts availableSeats + confirmed seats == totalSeats.
func checkInvariant(t *testing.T, store *storage.MemoryStore, rideID string) {
	t.Helper()
	ride, err := store.GetRide(rideID)
	require.NoError(t, err)

	bookings, err := store.GetBookingsByRide(rideID)
	require.NoError(t, err)

	confirmed := 0
	for _, b := range bookings {
		if b.Status == models.BookingStatusConfirmed {
			confirmed += b.SeatsBooked
		}
	}
	assert.Equal(t, ride.TotalSeats, ride.AvailableSeats+confirmed,
		"seat accounting must balance")
}

func TestCreateBooking_InstantScenario(t *testing.T) {
	svc, store := newBookingService(t)
	ctx := context.Background()
	seedRide(t, store, &models.Ride{
		TotalSeats:     3,
		PricePerSeat:   500,
		InstantBooking: true,
	})

	booking, err := svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, 1000.0, booking.TotalAmount)
	assert.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
	assert.NotNil(t, booking.ConfirmationTime)

	ride, err := store.GetRide("RD1001")
	require.NoError(t, err)
	assert.Equal(t, 1, ride.AvailableSeats)
	checkInvariant(t, store, "RD1001")

	// Second passenger wants 2 seats but only 1 remains
	_, err = svc.CreateBooking(ctx, "passenger-2", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 2,
	})
	require.Error(t, err)
	assert.Equal(t, "insufficient_seats", apperrors.ReasonOf(err))
	assert.Contains(t, err.Error(), "1 seats available")

	// Cancelling the first booking restores the inventory
	require.NoError(t, svc.CancelBooking(ctx, "passenger-1", booking.ID, ""))

	ride, err = store.GetRide("RD1001")
	require.NoError(t, err)
	assert.Equal(t, 3, ride.AvailableSeats)
	checkInvariant(t, store, "RD1001")
}

func TestCreateBooking_PreconditionOrder(t *testing.T) {
	svc, store := newBookingService(t)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
		RideID:         "missing",
		SeatsRequested: 1,
	})
	assert.Equal(t, "ride_not_found", apperrors.ReasonOf(err))

	seedRide(t, store, &models.Ride{
		ID:             "RD-cancelled",
		TotalSeats:     3,
		PricePerSeat:   100,
		Status:         models.RideStatusCancelled,
		InstantBooking: true,
	})
	_, err = svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
		RideID:         "RD-cancelled",
		SeatsRequested: 1,
	})
	assert.Equal(t, "ride_unavailable", apperrors.ReasonOf(err))

	seedRide(t, store, &models.Ride{
		ID:             "RD-past",
		TotalSeats:     3,
		PricePerSeat:   100,
		DepartureTime:  time.Now().Add(-time.Hour),
		InstantBooking: true,
	})
	_, err = svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
		RideID:         "RD-past",
		SeatsRequested: 1,
	})
	assert.Equal(t, "ride_in_past", apperrors.ReasonOf(err))

	seedRide(t, store, &models.Ride{
		ID:             "RD-own",
		DriverID:       "driver-7",
		TotalSeats:     3,
		PricePerSeat:   100,
		InstantBooking: true,
	})
	_, err = svc.CreateBooking(ctx, "driver-7", &services.BookingRequest{
		RideID:         "RD-own",
		SeatsRequested: 1,
	})
	assert.Equal(t, "self_booking", apperrors.ReasonOf(err))
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestCreateBooking_SeatsRequestedBounds(t *testing.T) {
	svc, store := newBookingService(t)
	ctx := context.Background()
	seedRide(t, store, &models.Ride{TotalSeats: 7, PricePerSeat: 100, InstantBooking: true})

	for _, seats := range []int{0, -1, 5} {
		_, err := svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
			RideID:         "RD1001",
			SeatsRequested: seats,
		})
		assert.True(t, apperrors.Is(err, apperrors.KindValidation), "seats=%d", seats)
	}
}

func TestCreateBooking_DuplicateRejected(t *testing.T) {
	svc, store := newBookingService(t)
	ctx := context.Background()
	seedRide(t, store, &models.Ride{TotalSeats: 4, PricePerSeat: 100, InstantBooking: true})

	_, err := svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 1,
	})
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 1,
	})
	assert.Equal(t, "duplicate_booking", apperrors.ReasonOf(err))
}

func TestCreateBooking_PendingDoesNotReserve(t *testing.T) {
	svc, store := newBookingService(t)
	ctx := context.Background()
	seedRide(t, store, &models.Ride{TotalSeats: 2, PricePerSeat: 100, InstantBooking: false})

	booking, err := svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Nil(t, booking.ConfirmationTime)

	// Pending requests do not hold capacity
	ride, err := store.GetRide("RD1001")
	require.NoError(t, err)
	assert.Equal(t, 2, ride.AvailableSeats)

	// Other passengers may still request beyond capacity
	other, err := svc.CreateBooking(ctx, "passenger-2", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, other.Status)
}

func TestConfirmBooking_RevalidatesCapacity(t *testing.T) {
	svc, store := newBookingService(t)
	ctx := context.Background()
	seedRide(t, store, &models.Ride{TotalSeats: 2, PricePerSeat: 100, InstantBooking: false})

	first, err := svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 2,
	})
	require.NoError(t, err)
	second, err := svc.CreateBooking(ctx, "passenger-2", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 2,
	})
	require.NoError(t, err)

	confirmed, err := svc.ConfirmBooking(ctx, "driver-1", first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmationTime)
	checkInvariant(t, store, "RD1001")

	// The interleaved confirmation consumed the capacity
	_, err = svc.ConfirmBooking(ctx, "driver-1", second.ID)
	assert.Equal(t, "insufficient_seats", apperrors.ReasonOf(err))

	booking, err := store.GetBooking(second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
}

func TestConfirmBooking_OnlyDriverAndOnlyPending(t *testing.T) {
	svc, store := newBookingService(t)
	ctx := context.Background()
	seedRide(t, store, &models.Ride{TotalSeats: 3, PricePerSeat: 100, InstantBooking: false})

	booking, err := svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 1,
	})
	require.NoError(t, err)

	// A stranger (or the passenger) cannot confirm, and the response
	// does not reveal that the booking exists
	_, err = svc.ConfirmBooking(ctx, "passenger-1", booking.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = svc.ConfirmBooking(ctx, "driver-1", booking.ID)
	require.NoError(t, err)

	// Confirming twice is an invalid transition
	_, err = svc.ConfirmBooking(ctx, "driver-1", booking.ID)
	assert.Equal(t, "invalid_transition", apperrors.ReasonOf(err))
}

func TestCancelBooking_Rules(t *testing.T) {
	svc, store := newBookingService(t)
	ctx := context.Background()
	seedRide(t, store, &models.Ride{TotalSeats: 3, PricePerSeat: 100, InstantBooking: true})

	booking, err := svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 2,
	})
	require.NoError(t, err)

	// A third party gets NotFound, not a permission error
	err = svc.CancelBooking(ctx, "stranger", booking.ID, "")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	// The driver may cancel a passenger's booking
	require.NoError(t, svc.CancelBooking(ctx, "driver-1", booking.ID, "vehicle trouble"))

	ride, err := store.GetRide("RD1001")
	require.NoError(t, err)
	assert.Equal(t, 3, ride.AvailableSeats)

	cancelled, err := store.GetBooking(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, "vehicle trouble", cancelled.CancellationReason)
	assert.NotNil(t, cancelled.CancellationTime)

	// Terminal bookings stay terminal
	err = svc.CancelBooking(ctx, "passenger-1", booking.ID, "")
	assert.Equal(t, "already_terminal", apperrors.ReasonOf(err))
}

func TestCancelBooking_PendingReleasesNothing(t *testing.T) {
	svc, store := newBookingService(t)
	ctx := context.Background()
	seedRide(t, store, &models.Ride{TotalSeats: 3, PricePerSeat: 100, InstantBooking: false})

	booking, err := svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 2,
	})
	require.NoError(t, err)

	require.NoError(t, svc.CancelBooking(ctx, "passenger-1", booking.ID, ""))

	// Pending bookings never held seats, so nothing comes back
	ride, err := store.GetRide("RD1001")
	require.NoError(t, err)
	assert.Equal(t, 3, ride.AvailableSeats)
	checkInvariant(t, store, "RD1001")
}

func TestBookingLifecycle_CompletedAndNoShow(t *testing.T) {
	svc, store := newBookingService(t)
	ctx := context.Background()
	seedRide(t, store, &models.Ride{TotalSeats: 4, PricePerSeat: 100, InstantBooking: true})

	b1, err := svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 1,
	})
	require.NoError(t, err)
	b2, err := svc.CreateBooking(ctx, "passenger-2", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 1,
	})
	require.NoError(t, err)

	// Post-ride transitions are driver-only; others get NotFound and
	// the booking is untouched
	_, err = svc.CompleteBooking(ctx, "passenger-2", b1.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	stored, err := store.GetBooking(b1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, stored.Status)

	done, err := svc.CompleteBooking(ctx, "driver-1", b1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, done.Status)

	_, err = svc.MarkNoShow(ctx, "passenger-1", b2.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	noShow, err := svc.MarkNoShow(ctx, "driver-1", b2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusNoShow, noShow.Status)

	// Terminal states admit no transitions
	_, err = svc.CompleteBooking(ctx, "driver-1", b1.ID)
	assert.Equal(t, "invalid_transition", apperrors.ReasonOf(err))
	err = svc.CancelBooking(ctx, "passenger-2", b2.ID, "")
	assert.Equal(t, "already_terminal", apperrors.ReasonOf(err))
}

// releaseFailStore simulates a store that loses its backend between
// the booking update and the seat release.
type releaseFailStore struct {
	*storage.MemoryStore
}

func (s *releaseFailStore) ReleaseSeats(rideID string, seats int) error {
	return apperrors.Internal("storage offline", nil)
}

func TestCancelBooking_ReleaseFailureNamesLeakedSeats(t *testing.T) {
	mem := storage.NewMemoryStore()
	svc := services.NewBookingService(&releaseFailStore{MemoryStore: mem})
	ctx := context.Background()
	seedRide(t, mem, &models.Ride{TotalSeats: 3, PricePerSeat: 100, InstantBooking: true})

	booking, err := svc.CreateBooking(ctx, "passenger-1", &services.BookingRequest{
		RideID:         "RD1001",
		SeatsRequested: 2,
	})
	require.NoError(t, err)

	err = svc.CancelBooking(ctx, "passenger-1", booking.ID, "")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindInternal))
	assert.Contains(t, err.Error(), "2 seats were not returned to ride RD1001")

	// The cancellation itself stuck; only the inventory return failed
	stored, err := mem.GetBooking(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, stored.Status)
}

func TestCreateBooking_ConcurrentNeverOverbooks(t *testing.T) {
	svc, store := newBookingService(t)
	ctx := context.Background()

	const totalSeats = 3
	const callers = 12
	seedRide(t, store, &models.Ride{
		TotalSeats:     totalSeats,
		PricePerSeat:   250,
		InstantBooking: true,
	})

	var wg sync.WaitGroup
	errs := make(chan error, callers)

	for i := 0; i < callers; i++ {
		passenger := "passenger-" + string(rune('a'+i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateBooking(ctx, passenger, &services.BookingRequest{
				RideID:         "RD1001",
				SeatsRequested: 1,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	confirmed := 0
	for err := range errs {
		if err == nil {
			confirmed++
		} else {
			assert.Equal(t, "insufficient_seats", apperrors.ReasonOf(err))
		}
	}
	assert.Equal(t, totalSeats, confirmed, "exactly min(N, k) bookings confirm")

	ride, err := store.GetRide("RD1001")
	require.NoError(t, err)
	assert.Equal(t, 0, ride.AvailableSeats)
	assert.GreaterOrEqual(t, ride.AvailableSeats, 0, "inventory never goes negative")
	checkInvariant(t, store, "RD1001")
}
