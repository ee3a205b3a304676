package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

// Service сервис для работы с бронированиями: чтение и завершение приёма
type Service struct {
	bookingRepo  BookingRepository
	publisher    EventPublisher
	txManager    TransactionManager
	metrics      MetricsRecorder
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	publisher EventPublisher,
	txManager TransactionManager,
	metrics MetricsRecorder,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		publisher:    publisher,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID
// Если patientID задан, пациент может видеть только своё бронирование.
// Пустой patientID означает запрос сотрудника клиники
func (s *Service) GetByID(ctx context.Context, id string, patientID string) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for patient=%s", id, patientID)

	if id == "" || len(id) > domain.MaxIDLength {
		return nil, fmt.Errorf("%w: bookingID is required", ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%s not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if patientID != "" && !booking.BelongsTo(patientID) {
		s.logger.Warn("GetByID: access denied for patient=%s to booking id=%s", patientID, id)
		return nil, ErrAccessDenied
	}

	s.logger.Info("GetByID: successfully fetched booking id=%s", id)
	return models.FromDomainBooking(booking), nil
}

// GetPatientBookings получает историю бронирований пациента
// Опционально фильтрует по статусу
func (s *Service) GetPatientBookings(ctx context.Context, req *models.GetPatientBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetPatientBookings: fetching bookings for patient=%s, status=%v", req.PatientID, req.Status)

	if req.PatientID == "" {
		return nil, fmt.Errorf("%w: patientID is required", ErrInvalidInput)
	}

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetPatientBookings: invalid status=%s for patient=%s", *req.Status, req.PatientID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByPatientID(ctx, req.PatientID, domainStatus)
	if err != nil {
		s.logger.Error("GetPatientBookings: repository error for patient=%s: %v", req.PatientID, err)
		return nil, fmt.Errorf("%w: GetPatientBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetPatientBookings: successfully fetched %d bookings for patient=%s", len(bookings), req.PatientID)
	return models.FromDomainBookingList(bookings), nil
}

// GetDoctorBookings получает расписание врача с фильтрацией по периоду и статусу
//
// Примеры использования:
// - Все бронирования врача: GetDoctorBookings(ctx, &GetDoctorBookingsRequest{DoctorID: "d-1"})
// - Бронирования на дату: StartDate и EndDate указывают на одну дату
// - Только активные: Status = "booked"
func (s *Service) GetDoctorBookings(ctx context.Context, req *models.GetDoctorBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetDoctorBookings: fetching bookings for doctor=%s", req.DoctorID)
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	s.logger.Info(logMsg)

	if req.DoctorID == "" {
		return nil, fmt.Errorf("%w: doctorID is required", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetDoctorBookings: invalid filter for doctor=%s: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.GetByDoctorWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetDoctorBookings: repository error for doctor=%s: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: GetDoctorBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetDoctorBookings: successfully fetched %d bookings for doctor=%s", len(bookings), req.DoctorID)
	return models.FromDomainBookingList(bookings), nil
}

// Complete отмечает приём состоявшимся
// Переход booked -> completed выполняется условной записью, место в слоте не возвращается
func (s *Service) Complete(ctx context.Context, id string) (*models.BookingResponse, error) {
	s.logger.Info("Complete: completing booking id=%s", id)

	if id == "" || len(id) > domain.MaxIDLength {
		return nil, fmt.Errorf("%w: bookingID is required", ErrInvalidInput)
	}

	now := s.timeProvider.Now()
	var result *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				s.logger.Warn("Complete: booking id=%s not found", id)
				return ErrBookingNotFound
			}
			s.logger.Error("Complete: repository error for booking id=%s: %v", id, err)
			return fmt.Errorf("%w: Complete - repository error: %v", ErrInternal, err)
		}

		if !booking.CanBeCompleted() {
			s.logger.Warn("Complete: booking id=%s cannot be completed, status=%s", id, booking.Status)
			return ErrInvalidState
		}

		if err := s.bookingRepo.Complete(txCtx, id, now); err != nil {
			switch {
			case errors.Is(err, bookingRepo.ErrStatusConflict):
				s.logger.Warn("Complete: booking id=%s changed status concurrently", id)
				return ErrInvalidState
			case errors.Is(err, bookingRepo.ErrBookingNotFound):
				return ErrBookingNotFound
			default:
				s.logger.Error("Complete: repository error for booking id=%s: %v", id, err)
				return fmt.Errorf("%w: Complete - repository error: %v", ErrInternal, err)
			}
		}

		booking.Status = domain.StatusCompleted
		booking.CompletedAt = &now
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.BookingTransition(metrics.TransitionCompleted)
	s.publish(ctx, result, now)

	s.logger.Info("Complete: successfully completed booking id=%s", id)
	return models.FromDomainBooking(result), nil
}

func (s *Service) publish(ctx context.Context, booking *domain.Booking, now time.Time) {
	err := s.publisher.Publish(ctx, events.BookingEvent{
		Type:        events.BookingCompleted,
		BookingID:   booking.ID,
		PatientID:   booking.PatientID,
		DoctorID:    booking.DoctorID,
		SlotID:      booking.SlotID,
		ScheduledAt: booking.ScheduledAt,
		Status:      string(booking.Status),
		OccurredAt:  now,
	})
	if err != nil {
		s.logger.Warn("Complete: failed to publish event for booking id=%s: %v", booking.ID, err)
	}
}
