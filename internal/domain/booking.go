package domain

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusBooked    BookingStatus = "booked"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// IsValid returns true if the status is one of the known statuses
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusBooked, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if no further transition is allowed from the status
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Booking represents a patient's reservation of one unit of a slot's capacity
type Booking struct {
	ID          string // YYYYMMDD + 4-digit daily sequence
	PatientID   string
	DoctorID    string
	SlotID      int64
	ScheduledAt time.Time // minute precision
	Status      BookingStatus

	CancelReason *string
	CancelledAt  *time.Time
	CompletedAt  *time.Time

	// Denormalized data supplied by the directory service
	PatientName    string
	DoctorName     string
	DepartmentName string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still holds capacity of its slot
func (b *Booking) IsActive() bool {
	return b.Status == StatusBooked
}

// CanBeCancelled returns true if the booking status allows cancellation
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusBooked
}

// CanBeCompleted returns true if the booking status allows completion
func (b *Booking) CanBeCompleted() bool {
	return b.Status == StatusBooked
}

// CancellationDeadline returns the last moment (exclusive) when the booking may still be cancelled
func (b *Booking) CancellationDeadline(window time.Duration) time.Time {
	return b.ScheduledAt.Add(-window)
}

// IsWithinCancellationWindow returns true if now is strictly before the cancellation deadline
func (b *Booking) IsWithinCancellationWindow(now time.Time, window time.Duration) bool {
	return now.Before(b.CancellationDeadline(window))
}

// BelongsTo returns true if the booking was made by the patient
func (b *Booking) BelongsTo(patientID string) bool {
	return b.PatientID == patientID
}

// DoctorBookingsFilter фильтр для получения бронирований врача
type DoctorBookingsFilter struct {
	DoctorID  string         // Обязательный параметр
	StartDate *time.Time     // Начало периода (опционально)
	EndDate   *time.Time     // Конец периода включительно (опционально)
	Status    *BookingStatus // Фильтр по статусу (опционально)
}
