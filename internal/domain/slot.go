package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Slot represents a doctor's offered time block with finite booking capacity
type Slot struct {
	ID          int64
	DoctorID    string
	WorkDate    time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString
	MaxCapacity int
	BookedCount int
	Version     int64

	// Denormalized data for listings
	DoctorName     string
	DepartmentName string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailableCount returns the number of units that can still be reserved
func (s *Slot) AvailableCount() int {
	if s.BookedCount >= s.MaxCapacity {
		return 0
	}
	return s.MaxCapacity - s.BookedCount
}

// IsFull returns true if the slot has no capacity left
func (s *Slot) IsFull() bool {
	return s.BookedCount >= s.MaxCapacity
}

// HasBookings returns true if at least one unit of capacity is reserved
func (s *Slot) HasBookings() bool {
	return s.BookedCount > 0
}

// IsExpired returns true if the slot's work date is before the current date in now's location
func (s *Slot) IsExpired(now time.Time) bool {
	return DateOnly(s.WorkDate, now.Location()).Before(DateOnly(now, now.Location()))
}

// StartsAt returns the slot start as a moment in loc
func (s *Slot) StartsAt(loc *time.Location) time.Time {
	return s.StartTime.On(DateOnly(s.WorkDate, loc))
}

// EndsAt returns the slot end as a moment in loc
func (s *Slot) EndsAt(loc *time.Location) time.Time {
	return s.EndTime.On(DateOnly(s.WorkDate, loc))
}

// Contains returns true if t falls on the slot's work date within [StartTime, EndTime)
func (s *Slot) Contains(t time.Time) bool {
	loc := t.Location()
	return !t.Before(s.StartsAt(loc)) && t.Before(s.EndsAt(loc))
}

// DateOnly returns midnight of t's calendar date in loc.
// The calendar date is taken as stored in t, so a DATE column scanned as UTC keeps its day.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SlotFilter фильтр для получения слотов врача
type SlotFilter struct {
	DoctorID      string     // Обязательный параметр
	From          *time.Time // Начальная дата включительно (опционально)
	To            *time.Time // Конечная дата включительно (опционально)
	OnlyAvailable bool       // Только слоты со свободными местами
}
