package update_slot_capacity

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/slots/models"
)

type SlotService interface {
	UpdateCapacity(ctx context.Context, id int64, req *models.UpdateCapacityRequest) (*models.SlotResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
