package cancel_booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	cancelBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_booking"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type useCaseStub struct {
	got *cancelBooking.Request
	err error
}

func (s *useCaseStub) Execute(_ context.Context, req *cancelBooking.Request) (*cancelBooking.Response, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &cancelBooking.Response{ID: req.BookingID, Status: "cancelled", CancelledAt: time.Now()}, nil
}

func newRequest(body, role string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/202610150001/cancel", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"bookingId": "202610150001"})
	ctx := middleware.WithUserID(req.Context(), "p-1")
	if role != "" {
		ctx = middleware.WithUserRole(ctx, role)
	}
	return req.WithContext(ctx)
}

func TestHandler_Cancelled(t *testing.T) {
	stub := &useCaseStub{}
	rec := httptest.NewRecorder()
	NewHandler(stub, nopLogger{}).Handle(rec, newRequest(`{"reason":"заболел"}`, ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "202610150001", stub.got.BookingID)
	assert.Equal(t, "p-1", stub.got.PatientID)
	assert.Equal(t, "заболел", stub.got.Reason)
}

func TestHandler_EmptyBody(t *testing.T) {
	stub := &useCaseStub{}
	rec := httptest.NewRecorder()
	NewHandler(stub, nopLogger{}).Handle(rec, newRequest("", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, stub.got.Reason)
}

func TestHandler_StaffCancelsAnyBooking(t *testing.T) {
	stub := &useCaseStub{}
	rec := httptest.NewRecorder()
	NewHandler(stub, nopLogger{}).Handle(rec, newRequest(`{}`, middleware.RoleStaff))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, stub.got.PatientID)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid", cancelBooking.ErrInvalidInput, http.StatusBadRequest},
		{"not found", cancelBooking.ErrBookingNotFound, http.StatusNotFound},
		{"foreign booking", cancelBooking.ErrAccessDenied, http.StatusForbidden},
		{"too late", cancelBooking.ErrTooLate, http.StatusUnprocessableEntity},
		{"already cancelled", cancelBooking.ErrInvalidState, http.StatusConflict},
		{"internal", cancelBooking.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHandler(&useCaseStub{err: tt.err}, nopLogger{}).Handle(rec, newRequest(`{}`, ""))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
