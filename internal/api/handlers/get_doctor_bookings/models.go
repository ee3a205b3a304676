package get_doctor_bookings

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// Даты в формате YYYY-MM-DD, обе границы включительно
func ToServiceRequest(doctorID, startDateStr, endDateStr, statusStr string) (*models.GetDoctorBookingsRequest, error) {
	req := &models.GetDoctorBookingsRequest{DoctorID: doctorID}

	if startDateStr != "" {
		startDate, err := time.Parse(domain.DateFormat, startDateStr)
		if err != nil {
			return nil, err
		}
		req.StartDate = &startDate
	}

	if endDateStr != "" {
		endDate, err := time.Parse(domain.DateFormat, endDateStr)
		if err != nil {
			return nil, err
		}
		req.EndDate = &endDate
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	return req, nil
}
