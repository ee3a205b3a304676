package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func TestFormatBookingID(t *testing.T) {
	day := time.Date(2026, 10, 15, 23, 59, 0, 0, time.UTC)

	id, err := FormatBookingID(day, 7)
	require.NoError(t, err)
	assert.Equal(t, "202610150007", id)
	assert.Len(t, id, BookingIDLength)

	id, err = FormatBookingID(day, MaxDailySequence)
	require.NoError(t, err)
	assert.Equal(t, "202610159999", id)

	_, err = FormatBookingID(day, MaxDailySequence+1)
	assert.ErrorIs(t, err, ErrSequenceExhausted)

	_, err = FormatBookingID(day, 0)
	assert.ErrorIs(t, err, ErrSequenceExhausted)
}

func TestParseBookingID(t *testing.T) {
	day, seq, err := ParseBookingID("202610150042")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), day)
	assert.Equal(t, 42, seq)

	for _, bad := range []string{"", "20261015004", "2026101500420", "20261315 001", "20261332000A", "202610150000", "202613010001"} {
		_, _, err := ParseBookingID(bad)
		assert.ErrorIs(t, err, ErrInvalidBookingID, bad)
		assert.True(t, errors.Is(err, ErrValidation), bad)
	}
}

func TestBookingStatus(t *testing.T) {
	assert.True(t, StatusBooked.IsValid())
	assert.False(t, BookingStatus("pending").IsValid())

	assert.False(t, StatusBooked.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
}

func TestBooking_CancellationWindow(t *testing.T) {
	scheduled := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	b := &Booking{ScheduledAt: scheduled, Status: StatusBooked}

	assert.True(t, b.IsWithinCancellationWindow(scheduled.Add(-2*time.Hour-time.Second), DefaultCancellationWindow))
	assert.False(t, b.IsWithinCancellationWindow(scheduled.Add(-2*time.Hour), DefaultCancellationWindow))
	assert.False(t, b.IsWithinCancellationWindow(scheduled.Add(-2*time.Hour+time.Second), DefaultCancellationWindow))
}

func TestSlot_Capacity(t *testing.T) {
	s := &Slot{MaxCapacity: 3, BookedCount: 1}
	assert.Equal(t, 2, s.AvailableCount())
	assert.False(t, s.IsFull())
	assert.True(t, s.HasBookings())

	s.BookedCount = 3
	assert.Equal(t, 0, s.AvailableCount())
	assert.True(t, s.IsFull())
}

func TestSlot_IsExpired(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	// DATE колонка приходит из драйвера как полночь UTC
	s := &Slot{WorkDate: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)}

	assert.False(t, s.IsExpired(time.Date(2026, 10, 15, 23, 0, 0, 0, loc)))
	assert.False(t, s.IsExpired(time.Date(2026, 10, 14, 8, 0, 0, 0, loc)))
	assert.True(t, s.IsExpired(time.Date(2026, 10, 16, 0, 30, 0, 0, loc)))
}

func TestSlot_Contains(t *testing.T) {
	s := &Slot{
		WorkDate:  time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		StartTime: types.MustTimeString("09:00"),
		EndTime:   types.MustTimeString("12:00"),
	}

	assert.True(t, s.Contains(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)))
	assert.True(t, s.Contains(time.Date(2026, 10, 15, 11, 59, 0, 0, time.UTC)))
	assert.False(t, s.Contains(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)))
	assert.False(t, s.Contains(time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)))
}
