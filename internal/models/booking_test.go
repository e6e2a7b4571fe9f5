package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chlachla/chlachla-backend/internal/models"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{models.BookingStatusPending, models.BookingStatusConfirmed},
		{models.BookingStatusPending, models.BookingStatusCancelled},
		{models.BookingStatusConfirmed, models.BookingStatusCancelled},
		{models.BookingStatusConfirmed, models.BookingStatusCompleted},
		{models.BookingStatusConfirmed, models.BookingStatusNoShow},
	}
	for _, tr := range allowed {
		assert.True(t, models.CanTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}

	denied := []struct{ from, to string }{
		{models.BookingStatusPending, models.BookingStatusCompleted},
		{models.BookingStatusPending, models.BookingStatusNoShow},
		{models.BookingStatusConfirmed, models.BookingStatusPending},
		{models.BookingStatusCancelled, models.BookingStatusConfirmed},
		{models.BookingStatusCompleted, models.BookingStatusCancelled},
		{models.BookingStatusNoShow, models.BookingStatusConfirmed},
	}
	for _, tr := range denied {
		assert.False(t, models.CanTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}
}

func TestTerminalAndActive(t *testing.T) {
	for _, status := range []string{
		models.BookingStatusCancelled,
		models.BookingStatusCompleted,
		models.BookingStatusNoShow,
	} {
		b := &models.Booking{Status: status}
		assert.True(t, b.Terminal(), status)
		assert.False(t, b.Active(), status)
	}

	for _, status := range []string{
		models.BookingStatusPending,
		models.BookingStatusConfirmed,
	} {
		b := &models.Booking{Status: status}
		assert.False(t, b.Terminal(), status)
		assert.True(t, b.Active(), status)
	}
}
