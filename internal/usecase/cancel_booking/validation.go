package cancel_booking

import (
	"fmt"
	"unicode/utf8"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	if req.BookingID == "" || len(req.BookingID) > domain.MaxIDLength {
		return fmt.Errorf("%w: bookingID is required", ErrInvalidInput)
	}

	if utf8.RuneCountInString(req.Reason) > domain.MaxCancelReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxCancelReasonLength)
	}

	return nil
}
