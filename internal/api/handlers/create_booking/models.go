package create_booking

import (
	"time"

	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	DoctorID    string `json:"doctorId"`
	SlotID      int64  `json:"slotId"`
	ScheduledAt string `json:"scheduledAt"` // "2026-10-20T10:00:00+03:00"
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID             string `json:"id"`
	PatientID      string `json:"patientId"`
	DoctorID       string `json:"doctorId"`
	SlotID         int64  `json:"slotId"`
	ScheduledAt    string `json:"scheduledAt"`
	Status         string `json:"status"`
	PatientName    string `json:"patientName,omitempty"`
	DoctorName     string `json:"doctorName,omitempty"`
	DepartmentName string `json:"departmentName,omitempty"`
	CreatedAt      string `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Пациент берётся из заголовка, а не из тела
func (r *CreateBookingRequest) ToUseCaseRequest(patientID string) (*createBooking.Request, error) {
	scheduledAt, err := time.Parse(time.RFC3339, r.ScheduledAt)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		PatientID:   patientID,
		DoctorID:    r.DoctorID,
		SlotID:      r.SlotID,
		ScheduledAt: scheduledAt,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:             resp.ID,
		PatientID:      resp.PatientID,
		DoctorID:       resp.DoctorID,
		SlotID:         resp.SlotID,
		ScheduledAt:    resp.ScheduledAt.Format(time.RFC3339),
		Status:         resp.Status,
		PatientName:    resp.PatientName,
		DoctorName:     resp.DoctorName,
		DepartmentName: resp.DepartmentName,
		CreatedAt:      resp.CreatedAt.Format(time.RFC3339),
	}
}
