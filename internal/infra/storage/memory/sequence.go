package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// SequenceCounter дневной счётчик номеров бронирований в памяти
type SequenceCounter struct {
	mu   sync.Mutex
	last map[string]int
}

func NewSequenceCounter() *SequenceCounter {
	return &SequenceCounter{last: make(map[string]int)}
}

// Next выдаёт следующий порядковый номер за день (day в формате YYYYMMDD)
func (c *SequenceCounter) Next(_ context.Context, day string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last[day]++
	return c.last[day], nil
}

// DeleteBefore удаляет счётчики дней раньше указанной даты
func (c *SequenceCounter) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := domain.DayKey(before)
	var deleted int64
	for day := range c.last {
		if day < cutoff {
			delete(c.last, day)
			deleted++
		}
	}
	return deleted, nil
}
