package cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

// UseCase use case отмены бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	publisher    EventPublisher
	txManager    TransactionManager
	metrics      MetricsRecorder
	timeProvider TimeProvider
	window       time.Duration
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// window окно отмены до начала приёма, 0 означает значение по умолчанию (2 часа)
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	publisher EventPublisher,
	txManager TransactionManager,
	metrics MetricsRecorder,
	window time.Duration,
	logger Logger,
) *UseCase {
	if window <= 0 {
		window = domain.DefaultCancellationWindow
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		publisher:    publisher,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		window:       window,
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute отменяет бронирование и возвращает место в слот
//
// Отмена возможна строго раньше ScheduledAt - window. Смена статуса и возврат
// места выполняются в одной транзакции; если место вернуть не удалось,
// статус откатывается обратно в booked.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}

	reason := strings.TrimSpace(req.Reason)
	uc.logger.Info("CancelBooking: booking=%s, patient=%s", req.BookingID, req.PatientID)

	now := uc.timeProvider.Now()
	var result *domain.Booking

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("CancelBooking: booking id=%s not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("CancelBooking: failed to get booking id=%s: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		if err := uc.checkPreconditions(booking, req.PatientID, now); err != nil {
			return err
		}

		if err := uc.bookingRepo.Cancel(txCtx, booking.ID, reason, now); err != nil {
			return uc.mapTransitionError(booking.ID, err)
		}

		if err := uc.slotRepo.Release(txCtx, booking.SlotID); err != nil {
			uc.logger.Error("CancelBooking: failed to release slot=%d for booking id=%s: %v", booking.SlotID, booking.ID, err)
			uc.reopen(txCtx, booking.ID)
			return fmt.Errorf("%w: failed to release slot: %v", ErrInternal, err)
		}

		booking.Status = domain.StatusCancelled
		booking.CancelledAt = &now
		if reason != "" {
			booking.CancelReason = &reason
		}
		result = booking
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.metrics.BookingTransition(metrics.TransitionCancelled)
	uc.logger.Info("CancelBooking: booking id=%s cancelled, slot=%d released", result.ID, result.SlotID)

	uc.publish(ctx, result, now)

	return &Response{
		ID:           result.ID,
		PatientID:    result.PatientID,
		SlotID:       result.SlotID,
		ScheduledAt:  result.ScheduledAt,
		Status:       string(result.Status),
		CancelReason: result.CancelReason,
		CancelledAt:  now,
	}, nil
}

// checkPreconditions проверяет владельца, статус и окно отмены
func (uc *UseCase) checkPreconditions(booking *domain.Booking, patientID string, now time.Time) error {
	if patientID != "" && !booking.BelongsTo(patientID) {
		uc.logger.Warn("CancelBooking: patient=%s is not the owner of booking id=%s", patientID, booking.ID)
		return ErrAccessDenied
	}

	if !booking.CanBeCancelled() {
		uc.logger.Warn("CancelBooking: booking id=%s has status %s", booking.ID, booking.Status)
		return ErrInvalidState
	}

	if !booking.IsWithinCancellationWindow(now, uc.window) {
		uc.logger.Warn("CancelBooking: booking id=%s too late, deadline %s",
			booking.ID, booking.CancellationDeadline(uc.window).Format(time.RFC3339))
		return ErrTooLate
	}

	return nil
}

func (uc *UseCase) mapTransitionError(id string, err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrStatusConflict):
		uc.logger.Warn("CancelBooking: booking id=%s changed status concurrently", id)
		return ErrInvalidState
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		return ErrBookingNotFound
	default:
		uc.logger.Error("CancelBooking: failed to cancel booking id=%s: %v", id, err)
		return fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
	}
}

// reopen возвращает бронирование в booked, если место не удалось освободить
func (uc *UseCase) reopen(ctx context.Context, id string) {
	if err := uc.bookingRepo.Reopen(ctx, id); err != nil {
		uc.logger.Warn("CancelBooking: compensating reopen for booking id=%s failed: %v", id, err)
	}
}

func (uc *UseCase) publish(ctx context.Context, booking *domain.Booking, now time.Time) {
	event := events.BookingEvent{
		Type:        events.BookingCancelled,
		BookingID:   booking.ID,
		PatientID:   booking.PatientID,
		DoctorID:    booking.DoctorID,
		SlotID:      booking.SlotID,
		ScheduledAt: booking.ScheduledAt,
		Status:      string(booking.Status),
		OccurredAt:  now,
	}
	if booking.CancelReason != nil {
		event.Reason = *booking.CancelReason
	}

	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("CancelBooking: failed to publish event for booking id=%s: %v", booking.ID, err)
	}
}
