package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingstorage "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
)

// BookingStore хранилище бронирований в памяти
// Повторяет ограничения схемы: первичный ключ по номеру и одна активная запись пациента на слот
type BookingStore struct {
	mu       sync.RWMutex
	bookings map[string]domain.Booking
	now      func() time.Time
}

// NewBookingStore создает пустое хранилище бронирований
func NewBookingStore() *BookingStore {
	return &BookingStore{
		bookings: make(map[string]domain.Booking),
		now:      time.Now,
	}
}

func (s *BookingStore) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.bookings[booking.ID]; taken {
		return nil, fmt.Errorf("%w: %s", bookingstorage.ErrBookingIDTaken, booking.ID)
	}
	if booking.Status == domain.StatusBooked && s.existsBookedLocked(booking.PatientID, booking.SlotID) {
		return nil, bookingstorage.ErrDuplicateBooking
	}

	booking.CreatedAt = s.now()
	booking.UpdatedAt = booking.CreatedAt
	s.bookings[booking.ID] = *booking

	return booking, nil
}

func (s *BookingStore) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, bookingstorage.ErrBookingNotFound
	}
	return &booking, nil
}

func (s *BookingStore) ExistsBooked(_ context.Context, patientID string, slotID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.existsBookedLocked(patientID, slotID), nil
}

func (s *BookingStore) GetByPatientID(_ context.Context, patientID string, status *domain.BookingStatus) ([]*domain.Booking, error) {
	result := s.filter(func(b domain.Booking) bool {
		return b.PatientID == patientID && (status == nil || b.Status == *status)
	})

	sort.Slice(result, func(i, j int) bool {
		return result[i].ScheduledAt.After(result[j].ScheduledAt)
	})
	return result, nil
}

func (s *BookingStore) GetByDoctorWithFilter(_ context.Context, filter domain.DoctorBookingsFilter) ([]*domain.Booking, error) {
	result := s.filter(func(b domain.Booking) bool {
		if b.DoctorID != filter.DoctorID {
			return false
		}
		if filter.StartDate != nil && b.ScheduledAt.Before(*filter.StartDate) {
			return false
		}
		if filter.EndDate != nil && !b.ScheduledAt.Before(filter.EndDate.AddDate(0, 0, 1)) {
			return false
		}
		return filter.Status == nil || b.Status == *filter.Status
	})

	sort.Slice(result, func(i, j int) bool {
		return result[i].ScheduledAt.Before(result[j].ScheduledAt)
	})
	return result, nil
}

func (s *BookingStore) CountBookedBySlot(_ context.Context, slotID int64) (int, error) {
	return len(s.filter(func(b domain.Booking) bool {
		return b.SlotID == slotID && b.Status == domain.StatusBooked
	})), nil
}

// MaxSequence возвращает наибольший выданный порядковый номер за день
func (s *BookingStore) MaxSequence(_ context.Context, day string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	maxSeq := 0
	for id := range s.bookings {
		if !strings.HasPrefix(id, day) {
			continue
		}
		if _, seq, err := domain.ParseBookingID(id); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq, nil
}

func (s *BookingStore) Cancel(_ context.Context, id string, reason string, at time.Time) error {
	return s.transition(id, domain.StatusBooked, func(b *domain.Booking) {
		b.Status = domain.StatusCancelled
		b.CancelledAt = &at
		if reason != "" {
			b.CancelReason = &reason
		}
	})
}

func (s *BookingStore) Reopen(_ context.Context, id string) error {
	return s.transition(id, domain.StatusCancelled, func(b *domain.Booking) {
		b.Status = domain.StatusBooked
		b.CancelReason = nil
		b.CancelledAt = nil
	})
}

func (s *BookingStore) Complete(_ context.Context, id string, at time.Time) error {
	return s.transition(id, domain.StatusBooked, func(b *domain.Booking) {
		b.Status = domain.StatusCompleted
		b.CompletedAt = &at
	})
}

func (s *BookingStore) transition(id string, from domain.BookingStatus, apply func(*domain.Booking)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return bookingstorage.ErrBookingNotFound
	}
	if booking.Status != from {
		return bookingstorage.ErrStatusConflict
	}

	apply(&booking)
	booking.UpdatedAt = s.now()
	s.bookings[id] = booking

	return nil
}

func (s *BookingStore) existsBookedLocked(patientID string, slotID int64) bool {
	for _, b := range s.bookings {
		if b.PatientID == patientID && b.SlotID == slotID && b.Status == domain.StatusBooked {
			return true
		}
	}
	return false
}

func (s *BookingStore) filter(match func(domain.Booking) bool) []*domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if match(b) {
			b := b
			result = append(result, &b)
		}
	}
	return result
}
