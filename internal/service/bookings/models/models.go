package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidPeriod возвращается, когда конец периода раньше начала
	ErrInvalidPeriod = errors.New("end date is before start date")
)

// Request модели

// GetPatientBookingsRequest запрос на получение бронирований пациента
type GetPatientBookingsRequest struct {
	PatientID string  `json:"patientId"`
	Status    *string `json:"status,omitempty"`
}

// GetDoctorBookingsRequest запрос на получение расписания врача
type GetDoctorBookingsRequest struct {
	DoctorID  string     `json:"doctorId"`
	StartDate *time.Time `json:"startDate,omitempty"` // Начало периода (опционально)
	EndDate   *time.Time `json:"endDate,omitempty"`   // Конец периода включительно (опционально)
	Status    *string    `json:"status,omitempty"`    // Фильтр по статусу (опционально)
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetDoctorBookingsRequest) ToDomainFilter() (domain.DoctorBookingsFilter, error) {
	filter := domain.DoctorBookingsFilter{
		DoctorID:  r.DoctorID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}

	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		return filter, ErrInvalidPeriod
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patientId"`
	DoctorID    string    `json:"doctorId"`
	SlotID      int64     `json:"slotId"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Status      string    `json:"status"`

	// Денормализованные данные
	PatientName    string `json:"patientName,omitempty"`
	DoctorName     string `json:"doctorName,omitempty"`
	DepartmentName string `json:"departmentName,omitempty"`

	CancelReason *string `json:"cancelReason,omitempty"`
	CancelledAt  *string `json:"cancelledAt,omitempty"` // ISO 8601 format
	CompletedAt  *string `json:"completedAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:             b.ID,
		PatientID:      b.PatientID,
		DoctorID:       b.DoctorID,
		SlotID:         b.SlotID,
		ScheduledAt:    b.ScheduledAt,
		Status:         string(b.Status),
		PatientName:    b.PatientName,
		DoctorName:     b.DoctorName,
		DepartmentName: b.DepartmentName,
		CancelReason:   b.CancelReason,
		CancelledAt:    formatOptional(b.CancelledAt),
		CompletedAt:    formatOptional(b.CompletedAt),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}
