package cancel_booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/service/idallocator"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var workDate = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

// scheduledAt время приёма во всех тестах: 20.10.2026 10:00 UTC
var scheduledAt = workDate.Add(10 * time.Hour)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type nopMetrics struct{}

func (nopMetrics) BookingOutcome(string)           {}
func (nopMetrics) BookingTransition(string)        {}
func (nopMetrics) SequenceAllocated(string, error) {}

type recordingPublisher struct {
	events []events.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event events.BookingEvent) error {
	p.events = append(p.events, event)
	return nil
}

type failingRelease struct{}

func (failingRelease) Release(context.Context, int64) error {
	return errors.New("slot store unavailable")
}

type fixture struct {
	slots     *memory.SlotStore
	bookings  *memory.BookingStore
	publisher *recordingPublisher
	clock     *clock
	slot      *domain.Slot
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()

	f := &fixture{
		slots:     memory.NewSlotStore(),
		bookings:  memory.NewBookingStore(),
		publisher: &recordingPublisher{},
		clock:     &clock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)},
	}

	slot, err := f.slots.Create(context.Background(), &domain.Slot{
		DoctorID:    "d-1",
		WorkDate:    workDate,
		StartTime:   types.MustTimeString("09:00"),
		EndTime:     types.MustTimeString("12:00"),
		MaxCapacity: capacity,
	})
	require.NoError(t, err)
	f.slot = slot

	return f
}

func (f *fixture) book(t *testing.T, patientID string) (string, error) {
	t.Helper()

	allocator := idallocator.NewService(f.counter(), "memory", time.UTC, nopMetrics{}, nopLogger{}).
		WithTimeProvider(f.clock)

	uc := create_booking.NewUseCase(
		f.slots, f.bookings, allocator, nil, f.publisher,
		memory.NewTxManager(), nopMetrics{}, time.UTC, nopLogger{},
	).WithTimeProvider(f.clock)

	resp, err := uc.Execute(context.Background(), &create_booking.Request{
		PatientID:   patientID,
		DoctorID:    "d-1",
		SlotID:      f.slot.ID,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

var sharedCounter = memory.NewSequenceCounter()

func (f *fixture) counter() *memory.SequenceCounter {
	return sharedCounter
}

func (f *fixture) useCase(slotRepo SlotRepository) *UseCase {
	if slotRepo == nil {
		slotRepo = f.slots
	}
	return NewUseCase(f.bookings, slotRepo, f.publisher, memory.NewTxManager(), nopMetrics{}, 2*time.Hour, nopLogger{}).
		WithTimeProvider(f.clock)
}

func (f *fixture) bookedCount(t *testing.T) int {
	t.Helper()

	slot, err := f.slots.GetByID(context.Background(), f.slot.ID)
	require.NoError(t, err)
	return slot.BookedCount
}

func TestUseCase_Execute_Success(t *testing.T) {
	f := newFixture(t, 3)
	id, err := f.book(t, "p-1")
	require.NoError(t, err)
	require.Equal(t, 1, f.bookedCount(t))

	resp, err := f.useCase(nil).Execute(context.Background(), &Request{BookingID: id, PatientID: "p-1", Reason: "  заболел  "})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	require.NotNil(t, resp.CancelReason)
	assert.Equal(t, "заболел", *resp.CancelReason)
	assert.Equal(t, 0, f.bookedCount(t))

	stored, err := f.bookings.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	last := f.publisher.events[len(f.publisher.events)-1]
	assert.Equal(t, events.BookingCancelled, last.Type)
	assert.Equal(t, "заболел", last.Reason)
}

func TestUseCase_Execute_WindowBoundary(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"one second before deadline", scheduledAt.Add(-2*time.Hour - time.Second), nil},
		{"exactly at deadline", scheduledAt.Add(-2 * time.Hour), ErrTooLate},
		{"one second after deadline", scheduledAt.Add(-2*time.Hour + time.Second), ErrTooLate},
		{"after the appointment", scheduledAt.Add(time.Hour), ErrTooLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 3)
			id, err := f.book(t, "p-1")
			require.NoError(t, err)

			f.clock.t = tt.now
			_, err = f.useCase(nil).Execute(context.Background(), &Request{BookingID: id, PatientID: "p-1"})

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, 0, f.bookedCount(t))
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrState)
			assert.Equal(t, 1, f.bookedCount(t), "capacity unchanged")
		})
	}
}

func TestUseCase_Execute_Idempotent(t *testing.T) {
	f := newFixture(t, 3)
	id, err := f.book(t, "p-1")
	require.NoError(t, err)
	_, err = f.book(t, "p-2")
	require.NoError(t, err)

	uc := f.useCase(nil)
	_, err = uc.Execute(context.Background(), &Request{BookingID: id, PatientID: "p-1"})
	require.NoError(t, err)
	require.Equal(t, 1, f.bookedCount(t))

	_, err = uc.Execute(context.Background(), &Request{BookingID: id, PatientID: "p-1"})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 1, f.bookedCount(t), "second cancel must not release again")
}

func TestUseCase_Execute_CompletedCannotBeCancelled(t *testing.T) {
	f := newFixture(t, 3)
	id, err := f.book(t, "p-1")
	require.NoError(t, err)
	require.NoError(t, f.bookings.Complete(context.Background(), id, f.clock.t))

	_, err = f.useCase(nil).Execute(context.Background(), &Request{BookingID: id})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUseCase_Execute_Ownership(t *testing.T) {
	f := newFixture(t, 3)
	id, err := f.book(t, "p-1")
	require.NoError(t, err)

	_, err = f.useCase(nil).Execute(context.Background(), &Request{BookingID: id, PatientID: "p-2"})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, 1, f.bookedCount(t))

	_, err = f.useCase(nil).Execute(context.Background(), &Request{BookingID: id})
	assert.NoError(t, err, "staff call without patient id")
}

func TestUseCase_Execute_NotFound(t *testing.T) {
	f := newFixture(t, 3)

	_, err := f.useCase(nil).Execute(context.Background(), &Request{BookingID: "209901010001"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUseCase_Execute_Validation(t *testing.T) {
	f := newFixture(t, 3)

	_, err := f.useCase(nil).Execute(context.Background(), &Request{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	long := make([]rune, domain.MaxCancelReasonLength+1)
	for i := range long {
		long[i] = 'я'
	}
	_, err = f.useCase(nil).Execute(context.Background(), &Request{BookingID: "202610150001", Reason: string(long)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUseCase_Execute_ReleaseFailureReopensBooking(t *testing.T) {
	f := newFixture(t, 3)
	id, err := f.book(t, "p-1")
	require.NoError(t, err)

	_, err = f.useCase(failingRelease{}).Execute(context.Background(), &Request{BookingID: id, PatientID: "p-1"})
	assert.ErrorIs(t, err, ErrInternal)

	stored, err := f.bookings.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBooked, stored.Status)
	assert.Nil(t, stored.CancelledAt)
	assert.Equal(t, 1, f.bookedCount(t))
}

func TestSingleSeatScenario(t *testing.T) {
	f := newFixture(t, 1)

	idA, err := f.book(t, "patient-a")
	require.NoError(t, err)
	assert.Equal(t, 1, f.bookedCount(t))

	_, err = f.book(t, "patient-b")
	assert.ErrorIs(t, err, create_booking.ErrSlotFull)

	_, err = f.useCase(nil).Execute(context.Background(), &Request{BookingID: idA, PatientID: "patient-a"})
	require.NoError(t, err)
	assert.Equal(t, 0, f.bookedCount(t))

	_, err = f.book(t, "patient-b")
	require.NoError(t, err)
	assert.Equal(t, 1, f.bookedCount(t))
}
