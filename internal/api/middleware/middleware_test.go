package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuth(t *testing.T) {
	var seen string
	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set(HeaderUserID, " patient-7 ")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "patient-7", seen)
}

func TestAuth_StaffRole(t *testing.T) {
	var staff bool
	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		staff = IsStaff(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "nurse-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, staff)

	req.Header.Set(HeaderUserRole, "Staff")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, staff)
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, given)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, given, seen)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2, time.Minute)
	current := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	handler := Auth(limiter.Middleware(http.HandlerFunc(okHandler)))

	call := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set(HeaderUserID, userID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("p-1"))
	assert.Equal(t, http.StatusOK, call("p-1"))
	assert.Equal(t, http.StatusTooManyRequests, call("p-1"))
	assert.Equal(t, http.StatusOK, call("p-2"), "limits are per patient")

	current = current.Add(time.Second)
	assert.Equal(t, http.StatusOK, call("p-1"))

	current = current.Add(2 * time.Minute)
	assert.Equal(t, 2, limiter.Cleanup())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(0, 0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow("p-1"))
	}
}

type httpRecorderStub struct {
	paths    []string
	statuses []int
}

func (s *httpRecorderStub) ObserveHTTP(_ string, path string, status int, _ time.Duration) {
	s.paths = append(s.paths, path)
	s.statuses = append(s.statuses, status)
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	stub := &httpRecorderStub{}

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(stub))
	r.HandleFunc("/api/v1/bookings/{bookingId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/bookings/202610150001", nil))

	assert.Equal(t, []string{"/api/v1/bookings/{bookingId}"}, stub.paths)
	assert.Equal(t, []int{http.StatusNotFound}, stub.statuses)
}
