package get_doctor_bookings

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidParams = "некорректные параметры запроса"
	msgForbidden     = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/doctors/{doctorId}/bookings
// Query params: startDate, endDate, status (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID := mux.Vars(r)["doctorId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /doctors/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Расписание видят сотрудники клиники и сам врач
	if userID != doctorID && !middleware.IsStaff(r.Context()) {
		h.logger.Warn("GET /doctors/{id}/bookings - Access denied: doctor_id=%s, user_id=%s", doctorID, userID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	query := r.URL.Query()
	serviceReq, err := ToServiceRequest(doctorID, query.Get("startDate"), query.Get("endDate"), query.Get("status"))
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.GetDoctorBookings(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /doctors/{id}/bookings - Invalid parameters: doctor_id=%s: %v", doctorID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /doctors/{id}/bookings - Failed to get bookings: doctor_id=%s, error=%v",
				doctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /doctors/{id}/bookings - Bookings retrieved successfully: doctor_id=%s, count=%d",
		doctorID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result.Bookings)
}
