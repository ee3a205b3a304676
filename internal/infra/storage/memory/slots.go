package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	slotstorage "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// SlotStore хранилище слотов в памяти с той же семантикой, что и PostgreSQL репозиторий
//
// Reserve повторяет протокол условной записи: чтение и запись берут мьютекс
// раздельно, между ними другой писатель может сдвинуть версию.
type SlotStore struct {
	mu     sync.RWMutex
	slots  map[int64]domain.Slot
	nextID int64
	now    func() time.Time
}

// NewSlotStore создает пустое хранилище слотов
func NewSlotStore() *SlotStore {
	return &SlotStore{
		slots: make(map[int64]domain.Slot),
		now:   time.Now,
	}
}

// Create добавляет слот с нулевым счётчиком бронирований
func (s *SlotStore) Create(_ context.Context, slot *domain.Slot) (*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.slots {
		if existing.DoctorID == slot.DoctorID &&
			sameDay(existing.WorkDate, slot.WorkDate) &&
			existing.StartTime == slot.StartTime {
			return nil, slotstorage.ErrDuplicateSlot
		}
	}

	s.nextID++
	created := *slot
	created.ID = s.nextID
	created.BookedCount = 0
	created.Version = 0
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt

	s.slots[created.ID] = created

	result := created
	return &result, nil
}

// GetByID возвращает копию слота
func (s *SlotStore) GetByID(_ context.Context, id int64) (*domain.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, slotstorage.ErrSlotNotFound
	}
	return &slot, nil
}

// ListByDoctor возвращает слоты врача по дате и времени начала
func (s *SlotStore) ListByDoctor(_ context.Context, filter domain.SlotFilter) ([]*domain.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Slot, 0)
	for _, slot := range s.slots {
		if slot.DoctorID != filter.DoctorID {
			continue
		}
		if filter.From != nil && slot.WorkDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && slot.WorkDate.After(*filter.To) {
			continue
		}
		if filter.OnlyAvailable && slot.IsFull() {
			continue
		}
		slot := slot
		result = append(result, &slot)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].WorkDate.Equal(result[j].WorkDate) {
			return result[i].WorkDate.Before(result[j].WorkDate)
		}
		return result[i].StartTime.IsBefore(result[j].StartTime)
	})

	return result, nil
}

// ExistsAt проверяет, есть ли у врача слот с указанным началом в дату
func (s *SlotStore) ExistsAt(_ context.Context, doctorID string, workDate time.Time, start types.TimeString) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, slot := range s.slots {
		if slot.DoctorID == doctorID && sameDay(slot.WorkDate, workDate) && slot.StartTime == start {
			return true, nil
		}
	}
	return false, nil
}

// Reserve занимает место: чтение версии, затем условная запись по версии
func (s *SlotStore) Reserve(ctx context.Context, id int64) (*domain.Slot, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsFull() {
		return nil, slotstorage.ErrSlotFull
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	latest, ok := s.slots[id]
	switch {
	case !ok:
		return nil, slotstorage.ErrSlotNotFound
	case latest.IsFull():
		return nil, slotstorage.ErrSlotFull
	case latest.Version != current.Version:
		return nil, slotstorage.ErrVersionConflict
	}

	latest.BookedCount++
	latest.Version++
	latest.UpdatedAt = s.now()
	s.slots[id] = latest

	return &latest, nil
}

// Release освобождает место без сверки версии
func (s *SlotStore) Release(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return slotstorage.ErrSlotNotFound
	}
	if slot.BookedCount == 0 {
		return slotstorage.ErrNothingToRelease
	}

	slot.BookedCount--
	slot.Version++
	slot.UpdatedAt = s.now()
	s.slots[id] = slot

	return nil
}

// UpdateCapacity меняет вместимость, пока в слоте нет бронирований
func (s *SlotStore) UpdateCapacity(_ context.Context, id int64, maxCapacity int) (*domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, slotstorage.ErrSlotNotFound
	}
	if slot.HasBookings() {
		return nil, slotstorage.ErrSlotHasBookings
	}

	slot.MaxCapacity = maxCapacity
	slot.Version++
	slot.UpdatedAt = s.now()
	s.slots[id] = slot

	return &slot, nil
}

// Delete удаляет слот, пока в нём нет бронирований
func (s *SlotStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return slotstorage.ErrSlotNotFound
	}
	if slot.HasBookings() {
		return slotstorage.ErrSlotHasBookings
	}

	delete(s.slots, id)
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
