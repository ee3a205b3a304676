package slot

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = fmt.Errorf("slot.repository: slot not found: %w", domain.ErrNotFound)

	// ErrSlotFull возвращается, когда все места в слоте заняты
	ErrSlotFull = fmt.Errorf("slot.repository: slot is full: %w", domain.ErrCapacity)

	// ErrVersionConflict возвращается, когда версия слота изменилась между чтением и условной записью
	ErrVersionConflict = fmt.Errorf("slot.repository: slot version changed concurrently: %w", domain.ErrConflict)

	// ErrNothingToRelease возвращается, когда освобождать нечего (booked_count = 0)
	ErrNothingToRelease = errors.New("slot.repository: slot has no reserved capacity to release")

	// ErrSlotHasBookings возвращается при попытке изменить или удалить слот с бронированиями
	ErrSlotHasBookings = fmt.Errorf("slot.repository: slot already has bookings: %w", domain.ErrState)

	// ErrDuplicateSlot возвращается, когда у врача уже есть слот с тем же началом
	ErrDuplicateSlot = errors.New("slot.repository: duplicate slot for doctor, date and start time")

	// ErrInvalidSlot возвращается, когда данные слота нарушают ограничения таблицы
	ErrInvalidSlot = fmt.Errorf("slot.repository: slot violates table constraints: %w", domain.ErrValidation)

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
