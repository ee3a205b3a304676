package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client клиент справочника пациентов и врачей
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента справочника
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetPatient получает пациента по ID
func (c *Client) GetPatient(ctx context.Context, patientID string) (*Patient, error) {
	var patient Patient
	endpoint := fmt.Sprintf("%s/internal/patients/%s", c.baseURL, url.PathEscape(patientID))

	if err := c.get(ctx, endpoint, ErrPatientNotFound, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// GetDoctor получает врача с названием отделения
func (c *Client) GetDoctor(ctx context.Context, doctorID string) (*Doctor, error) {
	var doctor Doctor
	endpoint := fmt.Sprintf("%s/internal/doctors/%s", c.baseURL, url.PathEscape(doctorID))

	if err := c.get(ctx, endpoint, ErrDoctorNotFound, &doctor); err != nil {
		return nil, err
	}
	return &doctor, nil
}

// GetNamesWithGracefulDegradation собирает имена для бронирования
// Любая ошибка справочника не прерывает бронирование: возвращаются найденные имена
// и ErrServiceDegraded, если хотя бы один запрос не удался
func (c *Client) GetNamesWithGracefulDegradation(ctx context.Context, patientID, doctorID string) (Names, error) {
	var (
		names Names
		errs  []error
	)

	patient, err := c.GetPatient(ctx, patientID)
	if err != nil {
		errs = append(errs, err)
	} else {
		names.PatientName = patient.FullName
	}

	doctor, err := c.GetDoctor(ctx, doctorID)
	if err != nil {
		errs = append(errs, err)
	} else {
		names.DoctorName = doctor.FullName
		names.DepartmentName = doctor.DepartmentName
	}

	if len(errs) > 0 {
		joined := errors.Join(errs...)
		c.log.Warn("Directory lookup degraded for patient=%s doctor=%s: %v", patientID, doctorID, joined)
		return names, fmt.Errorf("%w: %v", ErrServiceDegraded, joined)
	}

	return names, nil
}

func (c *Client) get(ctx context.Context, endpoint string, notFound error, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return notFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
