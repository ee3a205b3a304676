package update_slot_capacity

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/slots"
	"github.com/m04kA/SMC-AppointmentService/internal/service/slots/models"
)

const (
	msgInvalidSlotID      = "некорректный ID слота"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "слот не найден"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "вместимость слота должна быть от 1 до 500"
	msgHasBookings        = "нельзя изменить вместимость слота с активными бронированиями"
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

// Handle PUT /api/v1/slots/{slotId}/capacity
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsStaff(r.Context()) {
		h.logger.Warn("PUT /slots/{id}/capacity - Not a staff member")
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	slotID, err := strconv.ParseInt(mux.Vars(r)["slotId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /slots/{id}/capacity - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	var req models.UpdateCapacityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /slots/{id}/capacity - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateCapacity(r.Context(), slotID, &req)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrSlotNotFound):
			h.logger.Warn("PUT /slots/{id}/capacity - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, slots.ErrInvalidInput):
			h.logger.Warn("PUT /slots/{id}/capacity - Invalid data: slot_id=%d, error=%v", slotID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		case errors.Is(err, slots.ErrSlotHasBookings):
			h.logger.Warn("PUT /slots/{id}/capacity - Slot has bookings: slot_id=%d", slotID)
			handlers.RespondConflict(w, msgHasBookings)

		default:
			h.logger.Error("PUT /slots/{id}/capacity - Failed to update slot: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /slots/{id}/capacity - Slot updated successfully: slot_id=%d, capacity=%d",
		slotID, result.MaxCapacity)
	handlers.RespondJSON(w, http.StatusOK, result)
}
