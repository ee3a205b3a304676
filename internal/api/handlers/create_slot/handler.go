package create_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/slots"
	"github.com/m04kA/SMC-AppointmentService/internal/service/slots/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "некорректные данные слота"
	msgAlreadyExists      = "у врача уже есть слот с этим временем начала"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsStaff(r.Context()) {
		h.logger.Warn("POST /slots - Not a staff member")
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	var req models.CreateSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("POST /slots - Invalid data: doctor_id=%s, error=%v", req.DoctorID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, slots.ErrSlotAlreadyExists):
			h.logger.Warn("POST /slots - Slot already exists: doctor_id=%s, date=%s, start=%s",
				req.DoctorID, req.WorkDate, req.StartTime)
			handlers.RespondConflict(w, msgAlreadyExists)

		default:
			h.logger.Error("POST /slots - Failed to create slot: doctor_id=%s, error=%v", req.DoctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /slots - Slot created successfully: slot_id=%d, doctor_id=%s", result.ID, result.DoctorID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
