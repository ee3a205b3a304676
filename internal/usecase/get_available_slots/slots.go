package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// selectBookable отбирает слоты, в которые ещё можно записаться
// Полные и прошедшие слоты пропускаются; сегодняшний слот доступен, пока не закончился
func selectBookable(slots []*domain.Slot, now time.Time) []Slot {
	result := make([]Slot, 0, len(slots))

	for _, slot := range slots {
		if slot.IsFull() || slot.IsExpired(now) {
			continue
		}

		if !slot.EndsAt(now.Location()).After(now) {
			continue
		}

		result = append(result, Slot{
			ID:             slot.ID,
			WorkDate:       slot.WorkDate,
			StartTime:      slot.StartTime,
			EndTime:        slot.EndTime,
			AvailableSpots: slot.AvailableCount(),
			TotalSpots:     slot.MaxCapacity,
		})
	}

	return result
}
