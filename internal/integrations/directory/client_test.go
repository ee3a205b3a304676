package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newDirectory(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/internal/patients/p-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p-1","full_name":"Анна Смирнова"}`))
	})
	mux.HandleFunc("/internal/doctors/d-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"d-1","full_name":"Олег Иванов","department_id":"dep-3","department_name":"Кардиология"}`))
	})
	mux.HandleFunc("/internal/doctors/d-broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_GetDoctor(t *testing.T) {
	server := newDirectory(t)
	client := NewClient(server.URL, time.Second, nopLogger{})

	doctor, err := client.GetDoctor(context.Background(), "d-1")
	require.NoError(t, err)
	assert.Equal(t, "Кардиология", doctor.DepartmentName)

	_, err = client.GetDoctor(context.Background(), "d-unknown")
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestClient_GetNames(t *testing.T) {
	server := newDirectory(t)
	client := NewClient(server.URL, time.Second, nopLogger{})

	names, err := client.GetNamesWithGracefulDegradation(context.Background(), "p-1", "d-1")
	require.NoError(t, err)
	assert.Equal(t, Names{
		PatientName:    "Анна Смирнова",
		DoctorName:     "Олег Иванов",
		DepartmentName: "Кардиология",
	}, names)
}

func TestClient_GetNames_Degraded(t *testing.T) {
	server := newDirectory(t)
	client := NewClient(server.URL, time.Second, nopLogger{})

	names, err := client.GetNamesWithGracefulDegradation(context.Background(), "p-1", "d-broken")
	assert.ErrorIs(t, err, ErrServiceDegraded)
	assert.Equal(t, "Анна Смирнова", names.PatientName)
	assert.Empty(t, names.DoctorName)
}

func TestClient_Unreachable(t *testing.T) {
	server := newDirectory(t)
	server.Close()
	client := NewClient(server.URL, 100*time.Millisecond, nopLogger{})

	_, err := client.GetPatient(context.Background(), "p-1")
	assert.ErrorIs(t, err, ErrInternal)
}
