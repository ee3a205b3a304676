package bookings

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
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

var day = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type countingMetrics struct{ transitions []string }

func (m *countingMetrics) BookingTransition(t string) { m.transitions = append(m.transitions, t) }

type recordingPublisher struct {
	events []events.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.BookingEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func seed(t *testing.T, store *memory.BookingStore, id, patientID, doctorID string, slotID int64, at time.Time) {
	t.Helper()

	_, err := store.Create(context.Background(), &domain.Booking{
		ID:          id,
		PatientID:   patientID,
		DoctorID:    doctorID,
		SlotID:      slotID,
		ScheduledAt: at,
		Status:      domain.StatusBooked,
	})
	require.NoError(t, err)
}

func newService(store *memory.BookingStore, publisher EventPublisher, m MetricsRecorder) *Service {
	return NewService(store, publisher, memory.NewTxManager(), m, nopLogger{}).
		WithTimeProvider(fixedTime{t: day.Add(11 * time.Hour)})
}

func TestService_GetByID(t *testing.T) {
	store := memory.NewBookingStore()
	seed(t, store, "202610150001", "p-1", "d-1", 1, day.Add(9*time.Hour))
	svc := newService(store, &recordingPublisher{}, &countingMetrics{})

	resp, err := svc.GetByID(context.Background(), "202610150001", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", resp.PatientID)
	assert.Equal(t, "booked", resp.Status)

	_, err = svc.GetByID(context.Background(), "202610150001", "p-2")
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetByID(context.Background(), "202610150001", "")
	assert.NoError(t, err)

	_, err = svc.GetByID(context.Background(), "202610150099", "")
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_GetPatientBookings(t *testing.T) {
	store := memory.NewBookingStore()
	seed(t, store, "202610150001", "p-1", "d-1", 1, day.Add(9*time.Hour))
	seed(t, store, "202610150002", "p-1", "d-1", 2, day.Add(24*time.Hour))
	seed(t, store, "202610150003", "p-2", "d-1", 1, day.Add(9*time.Hour))
	require.NoError(t, store.Cancel(context.Background(), "202610150001", "", day))

	svc := newService(store, &recordingPublisher{}, &countingMetrics{})

	all, err := svc.GetPatientBookings(context.Background(), &models.GetPatientBookingsRequest{PatientID: "p-1"})
	require.NoError(t, err)
	require.Len(t, all.Bookings, 2)
	assert.Equal(t, "202610150002", all.Bookings[0].ID, "latest first")

	cancelled, err := svc.GetPatientBookings(context.Background(), &models.GetPatientBookingsRequest{
		PatientID: "p-1",
		Status:    ptr.Ptr("cancelled"),
	})
	require.NoError(t, err)
	require.Len(t, cancelled.Bookings, 1)
	assert.NotNil(t, cancelled.Bookings[0].CancelledAt)

	_, err = svc.GetPatientBookings(context.Background(), &models.GetPatientBookingsRequest{
		PatientID: "p-1",
		Status:    ptr.Ptr("pending"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_GetDoctorBookings(t *testing.T) {
	store := memory.NewBookingStore()
	seed(t, store, "202610150001", "p-1", "d-1", 1, day.Add(9*time.Hour))
	seed(t, store, "202610150002", "p-2", "d-1", 2, day.Add(33*time.Hour))
	seed(t, store, "202610150003", "p-3", "d-2", 3, day.Add(9*time.Hour))

	svc := newService(store, &recordingPublisher{}, &countingMetrics{})

	resp, err := svc.GetDoctorBookings(context.Background(), &models.GetDoctorBookingsRequest{
		DoctorID:  "d-1",
		StartDate: &day,
		EndDate:   &day,
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, "202610150001", resp.Bookings[0].ID)

	before := day.AddDate(0, 0, -1)
	_, err = svc.GetDoctorBookings(context.Background(), &models.GetDoctorBookingsRequest{
		DoctorID:  "d-1",
		StartDate: &day,
		EndDate:   &before,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.GetDoctorBookings(context.Background(), &models.GetDoctorBookingsRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Complete(t *testing.T) {
	store := memory.NewBookingStore()
	seed(t, store, "202610150001", "p-1", "d-1", 1, day.Add(9*time.Hour))
	seed(t, store, "202610150002", "p-2", "d-1", 1, day.Add(9*time.Hour))
	require.NoError(t, store.Cancel(context.Background(), "202610150002", "", day))

	m := &countingMetrics{}
	publisher := &recordingPublisher{}
	svc := newService(store, publisher, m)

	resp, err := svc.Complete(context.Background(), "202610150001")
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.CompletedAt)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, events.BookingCompleted, publisher.events[0].Type)
	assert.Equal(t, []string{"completed"}, m.transitions)

	_, err = svc.Complete(context.Background(), "202610150001")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Complete(context.Background(), "202610150002")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, err, domain.ErrState)

	_, err = svc.Complete(context.Background(), "202610150099")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_Complete_PublishFailureIgnored(t *testing.T) {
	store := memory.NewBookingStore()
	seed(t, store, "202610150001", "p-1", "d-1", 1, day.Add(9*time.Hour))

	svc := newService(store, &recordingPublisher{err: errors.New("broker down")}, &countingMetrics{})

	_, err := svc.Complete(context.Background(), "202610150001")
	assert.NoError(t, err)
}
