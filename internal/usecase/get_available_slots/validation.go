package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.DoctorID == "" || len(req.DoctorID) > domain.MaxIDLength {
		return fmt.Errorf("%w: doctorID is required", ErrInvalidInput)
	}

	if req.Days < 0 || req.Days > domain.MaxAvailableSlotsDays {
		return fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidInput, domain.MaxAvailableSlotsDays)
	}

	return nil
}

// validateDate проверяет, что начальная дата не в прошлом
func validateDate(from time.Time, today time.Time) error {
	if from.Before(today) {
		return fmt.Errorf("%w: %s", ErrInvalidDate, from.Format(domain.DateFormat))
	}
	return nil
}
