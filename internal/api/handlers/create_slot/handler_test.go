package create_slot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/slots"
	"github.com/m04kA/SMC-AppointmentService/internal/service/slots/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type serviceStub struct {
	got *models.CreateSlotRequest
	err error
}

func (s *serviceStub) Create(_ context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.SlotResponse{ID: 1, DoctorID: req.DoctorID, MaxCapacity: 20, AvailableCount: 20}, nil
}

const validBody = `{"doctorId":"d-1","workDate":"2026-10-20","startTime":"09:00","endTime":"12:00"}`

func serve(stub *serviceStub, body string, staff bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/slots", strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), "admin")
	if staff {
		ctx = middleware.WithUserRole(ctx, middleware.RoleStaff)
	}

	rec := httptest.NewRecorder()
	NewHandler(stub, nopLogger{}).Handle(rec, req.WithContext(ctx))
	return rec
}

func TestHandler_Create(t *testing.T) {
	stub := &serviceStub{}
	rec := serve(stub, validBody, true)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "2026-10-20", stub.got.WorkDate)
	assert.Nil(t, stub.got.MaxCapacity)
}

func TestHandler_Errors(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, serve(&serviceStub{}, validBody, false).Code)
	assert.Equal(t, http.StatusBadRequest, serve(&serviceStub{}, `{"doctor":"d-1"}`, true).Code)
	assert.Equal(t, http.StatusBadRequest, serve(&serviceStub{err: slots.ErrInvalidInput}, validBody, true).Code)
	assert.Equal(t, http.StatusConflict, serve(&serviceStub{err: slots.ErrSlotAlreadyExists}, validBody, true).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(&serviceStub{err: slots.ErrInternal}, validBody, true).Code)
}
