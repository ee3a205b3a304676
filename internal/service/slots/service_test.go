package slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-AppointmentService/internal/service/slots/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newService() (*Service, *memory.SlotStore, *memory.BookingStore) {
	slotStore := memory.NewSlotStore()
	bookingStore := memory.NewBookingStore()

	svc := NewService(slotStore, bookingStore, memory.NewTxManager(), time.UTC, nopLogger{}).
		WithTimeProvider(fixedTime{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)})

	return svc, slotStore, bookingStore
}

func validRequest() *models.CreateSlotRequest {
	return &models.CreateSlotRequest{
		DoctorID:  "d-1",
		WorkDate:  "2026-10-20",
		StartTime: "09:00",
		EndTime:   "12:00",
	}
}

func TestService_Create(t *testing.T) {
	svc, _, _ := newService()

	resp, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMaxCapacity, resp.MaxCapacity)
	assert.Equal(t, domain.DefaultMaxCapacity, resp.AvailableCount)
	assert.Equal(t, "2026-10-20", resp.WorkDate)
	assert.Equal(t, "09:00", resp.StartTime)

	_, err = svc.Create(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotAlreadyExists)
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.CreateSlotRequest)
	}{
		{"missing doctor", func(r *models.CreateSlotRequest) { r.DoctorID = "" }},
		{"bad date", func(r *models.CreateSlotRequest) { r.WorkDate = "20.10.2026" }},
		{"bad time", func(r *models.CreateSlotRequest) { r.StartTime = "25:00" }},
		{"end before start", func(r *models.CreateSlotRequest) { r.EndTime = "08:00" }},
		{"empty range", func(r *models.CreateSlotRequest) { r.EndTime = r.StartTime }},
		{"zero capacity", func(r *models.CreateSlotRequest) { r.MaxCapacity = ptr.Ptr(0) }},
		{"capacity too large", func(r *models.CreateSlotRequest) { r.MaxCapacity = ptr.Ptr(domain.MaxCapacity + 1) }},
		{"past date", func(r *models.CreateSlotRequest) { r.WorkDate = "2026-10-14" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newService()
			req := validRequest()
			tt.mutate(req)

			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestService_UpdateCapacityAndDelete(t *testing.T) {
	svc, slotStore, _ := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateCapacity(ctx, created.ID, &models.UpdateCapacityRequest{MaxCapacity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.MaxCapacity)
	assert.Greater(t, updated.Version, created.Version)

	_, err = svc.UpdateCapacity(ctx, created.ID, &models.UpdateCapacityRequest{MaxCapacity: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = slotStore.Reserve(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.UpdateCapacity(ctx, created.ID, &models.UpdateCapacityRequest{MaxCapacity: 10})
	assert.ErrorIs(t, err, ErrSlotHasBookings)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrSlotHasBookings)

	require.NoError(t, slotStore.Release(ctx, created.ID))
	require.NoError(t, svc.Delete(ctx, created.ID))

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrSlotNotFound)
	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestService_GetByID_ActiveBookings(t *testing.T) {
	svc, slotStore, bookingStore := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	_, err = slotStore.Reserve(ctx, created.ID)
	require.NoError(t, err)
	_, err = bookingStore.Create(ctx, &domain.Booking{
		ID:          "202610150001",
		PatientID:   "p-1",
		DoctorID:    "d-1",
		SlotID:      created.ID,
		ScheduledAt: time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC),
		Status:      domain.StatusBooked,
	})
	require.NoError(t, err)

	resp, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.BookedCount)
	require.NotNil(t, resp.ActiveBookings)
	assert.Equal(t, 1, *resp.ActiveBookings)
}
