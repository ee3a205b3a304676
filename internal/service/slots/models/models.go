package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модели

// CreateSlotRequest запрос на создание слота
type CreateSlotRequest struct {
	DoctorID    string `json:"doctorId"`
	WorkDate    string `json:"workDate"`              // "2026-10-20"
	StartTime   string `json:"startTime"`             // "09:00"
	EndTime     string `json:"endTime"`               // "12:00"
	MaxCapacity *int   `json:"maxCapacity,omitempty"` // По умолчанию 20
}

// UpdateCapacityRequest запрос на изменение вместимости слота
type UpdateCapacityRequest struct {
	MaxCapacity int `json:"maxCapacity"`
}

// Response модели

// SlotResponse ответ с данными слота
type SlotResponse struct {
	ID             int64  `json:"id"`
	DoctorID       string `json:"doctorId"`
	WorkDate       string `json:"workDate"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	MaxCapacity    int    `json:"maxCapacity"`
	BookedCount    int    `json:"bookedCount"`
	AvailableCount int    `json:"availableCount"`
	Version        int64  `json:"version"`

	// ActiveBookings число бронирований в статусе booked, должно совпадать с BookedCount
	ActiveBookings *int `json:"activeBookings,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Методы конвертации

// FromDomainSlot конвертирует domain модель в DTO
func FromDomainSlot(s *domain.Slot) *SlotResponse {
	if s == nil {
		return nil
	}

	return &SlotResponse{
		ID:             s.ID,
		DoctorID:       s.DoctorID,
		WorkDate:       s.WorkDate.Format(domain.DateFormat),
		StartTime:      s.StartTime.String(),
		EndTime:        s.EndTime.String(),
		MaxCapacity:    s.MaxCapacity,
		BookedCount:    s.BookedCount,
		AvailableCount: s.AvailableCount(),
		Version:        s.Version,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// ToDomainSlot разбирает запрос в domain модель
// Ошибки разбора даты и времени возвращаются как есть, их оборачивает сервис
func (r *CreateSlotRequest) ToDomainSlot() (*domain.Slot, error) {
	workDate, err := time.Parse(domain.DateFormat, r.WorkDate)
	if err != nil {
		return nil, err
	}

	start, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	end, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, err
	}

	capacity := domain.DefaultMaxCapacity
	if r.MaxCapacity != nil {
		capacity = *r.MaxCapacity
	}

	return &domain.Slot{
		DoctorID:    r.DoctorID,
		WorkDate:    workDate,
		StartTime:   start,
		EndTime:     end,
		MaxCapacity: capacity,
	}, nil
}
