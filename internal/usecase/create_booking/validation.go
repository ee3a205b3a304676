package create_booking

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные запроса до обращения к хранилищу
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	if req.PatientID == "" || len(req.PatientID) > domain.MaxIDLength {
		return fmt.Errorf("%w: patientID is required", ErrInvalidInput)
	}

	if req.DoctorID == "" || len(req.DoctorID) > domain.MaxIDLength {
		return fmt.Errorf("%w: doctorID is required", ErrInvalidInput)
	}

	if req.SlotID <= 0 {
		return fmt.Errorf("%w: slotID must be positive", ErrInvalidInput)
	}

	if req.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduledAt is required", ErrInvalidInput)
	}

	return nil
}

// validateSlot проверяет, что время приёма и врач соответствуют слоту
func validateSlot(slot *domain.Slot, req *Request) error {
	if slot.DoctorID != req.DoctorID {
		return fmt.Errorf("%w: slot %d belongs to another doctor", ErrInvalidInput, slot.ID)
	}

	if !slot.Contains(req.ScheduledAt) {
		return fmt.Errorf("%w: scheduledAt %s is outside slot %s %s-%s",
			ErrInvalidInput,
			req.ScheduledAt.Format(domain.DateTimeFormat),
			slot.WorkDate.Format(domain.DateFormat),
			slot.StartTime,
			slot.EndTime,
		)
	}

	return nil
}
