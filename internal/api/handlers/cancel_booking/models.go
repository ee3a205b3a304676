package cancel_booking

import (
	"time"

	cancelBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	ID           string  `json:"id"`
	PatientID    string  `json:"patientId"`
	SlotID       int64   `json:"slotId"`
	ScheduledAt  string  `json:"scheduledAt"`
	Status       string  `json:"status"`
	CancelReason *string `json:"cancelReason,omitempty"`
	CancelledAt  string  `json:"cancelledAt"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
// patientID пустой, если отменяет сотрудник клиники
func (r *CancelBookingRequest) ToUseCaseRequest(bookingID, patientID string) *cancelBooking.Request {
	reason := ""
	if r.Reason != nil {
		reason = *r.Reason
	}

	return &cancelBooking.Request{
		BookingID: bookingID,
		PatientID: patientID,
		Reason:    reason,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		ID:           resp.ID,
		PatientID:    resp.PatientID,
		SlotID:       resp.SlotID,
		ScheduledAt:  resp.ScheduledAt.Format(time.RFC3339),
		Status:       resp.Status,
		CancelReason: resp.CancelReason,
		CancelledAt:  resp.CancelledAt.Format(time.RFC3339),
	}
}
