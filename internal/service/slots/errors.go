package slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = fmt.Errorf("slots: slot not found: %w", domain.ErrNotFound)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("slots: invalid input data: %w", domain.ErrValidation)

	// ErrSlotAlreadyExists возвращается, когда у врача уже есть слот с тем же началом в эту дату
	ErrSlotAlreadyExists = errors.New("slots: slot already exists")

	// ErrSlotHasBookings возвращается при изменении или удалении слота с бронированиями
	ErrSlotHasBookings = fmt.Errorf("slots: slot already has bookings: %w", domain.ErrState)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("slots: internal error")
)
