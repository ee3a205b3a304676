package get_available_slots

import (
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	DoctorID string          `json:"doctorId"`
	From     string          `json:"from"`
	To       string          `json:"to"`
	Slots    []AvailableSlot `json:"slots"`
}

// AvailableSlot модель слота со свободными местами
type AvailableSlot struct {
	ID             int64  `json:"id"`
	WorkDate       string `json:"workDate"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	AvailableSpots int    `json:"availableSpots"`
	TotalSpots     int    `json:"totalSpots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			ID:             slot.ID,
			WorkDate:       slot.WorkDate.Format(domain.DateFormat),
			StartTime:      slot.StartTime.String(),
			EndTime:        slot.EndTime.String(),
			AvailableSpots: slot.AvailableSpots,
			TotalSpots:     slot.TotalSpots,
		}
	}

	return &AvailableSlotsResponse{
		DoctorID: resp.DoctorID,
		From:     resp.From.Format(domain.DateFormat),
		To:       resp.To.Format(domain.DateFormat),
		Slots:    slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
// Пустые from и days оставляют значения по умолчанию
func ToUseCaseRequest(doctorID, fromStr, daysStr string) (*getAvailableSlots.Request, error) {
	req := &getAvailableSlots.Request{DoctorID: doctorID}

	if fromStr != "" {
		from, err := time.Parse(domain.DateFormat, fromStr)
		if err != nil {
			return nil, err
		}
		req.From = from
	}

	if daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return nil, err
		}
		req.Days = days
	}

	return req, nil
}
