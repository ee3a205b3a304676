package get_doctor_bookings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type serviceStub struct {
	got *models.GetDoctorBookingsRequest
	err error
}

func (s *serviceStub) GetDoctorBookings(_ context.Context, req *models.GetDoctorBookingsRequest) (*models.BookingListResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingListResponse{Bookings: []models.BookingResponse{{ID: "202610200001"}}}, nil
}

func serve(stub *serviceStub, target, userID, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = mux.SetURLVars(req, map[string]string{"doctorId": "d-1"})
	ctx := middleware.WithUserID(req.Context(), userID)
	if role != "" {
		ctx = middleware.WithUserRole(ctx, role)
	}

	rec := httptest.NewRecorder()
	NewHandler(stub, nopLogger{}).Handle(rec, req.WithContext(ctx))
	return rec
}

func TestHandler_DoctorSeesOwnAgenda(t *testing.T) {
	stub := &serviceStub{}
	rec := serve(stub, "/api/v1/doctors/d-1/bookings?startDate=2026-10-20&endDate=2026-10-21&status=booked", "d-1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.got)
	assert.Equal(t, "d-1", stub.got.DoctorID)
	require.NotNil(t, stub.got.StartDate)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), *stub.got.StartDate)
	require.NotNil(t, stub.got.Status)
	assert.Equal(t, "booked", *stub.got.Status)
	assert.Contains(t, rec.Body.String(), "202610200001")
}

func TestHandler_Access(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, serve(&serviceStub{}, "/api/v1/doctors/d-1/bookings", "p-1", "").Code)
	assert.Equal(t, http.StatusOK, serve(&serviceStub{}, "/api/v1/doctors/d-1/bookings", "nurse-1", middleware.RoleStaff).Code)
}

func TestHandler_Errors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest,
		serve(&serviceStub{}, "/api/v1/doctors/d-1/bookings?startDate=20.10.2026", "d-1", "").Code)
	assert.Equal(t, http.StatusBadRequest,
		serve(&serviceStub{err: bookings.ErrInvalidInput}, "/api/v1/doctors/d-1/bookings?status=unknown", "d-1", "").Code)
	assert.Equal(t, http.StatusInternalServerError,
		serve(&serviceStub{err: bookings.ErrInternal}, "/api/v1/doctors/d-1/bookings", "d-1", "").Code)
}
