package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

// UseCase use case создания бронирования
type UseCase struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	idAllocator  IDAllocator
	directory    DirectoryClient
	publisher    EventPublisher
	txManager    TransactionManager
	metrics      MetricsRecorder
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// directory может быть nil: тогда бронирование сохраняется без имён
func NewUseCase(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	idAllocator IDAllocator,
	directory DirectoryClient,
	publisher EventPublisher,
	txManager TransactionManager,
	metrics MetricsRecorder,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		idAllocator:  idAllocator,
		directory:    directory,
		publisher:    publisher,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		location:     location,
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования
//
// Место в слоте занимается условной записью по версии. Выдача номера и сохранение
// бронирования идут в той же транзакции; если они не удались после Reserve,
// место освобождается до возврата ошибки. Конфликт версий не повторяется.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		uc.metrics.BookingOutcome(metrics.OutcomeInvalid)
		return nil, err
	}

	req.ScheduledAt = req.ScheduledAt.In(uc.location).Truncate(time.Minute)
	uc.logger.Info("CreateBooking: patient=%s, doctor=%s, slot=%d, at=%s",
		req.PatientID, req.DoctorID, req.SlotID, req.ScheduledAt.Format(domain.DateTimeFormat))

	now := uc.timeProvider.Now().In(uc.location)

	result, err := uc.book(ctx, req, now)
	uc.metrics.BookingOutcome(outcomeOf(err))
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%s for slot=%d", result.ID, result.SlotID)

	uc.publish(ctx, result, now)

	return &Response{
		ID:             result.ID,
		PatientID:      result.PatientID,
		DoctorID:       result.DoctorID,
		SlotID:         result.SlotID,
		ScheduledAt:    result.ScheduledAt,
		Status:         string(result.Status),
		PatientName:    result.PatientName,
		DoctorName:     result.DoctorName,
		DepartmentName: result.DepartmentName,
		CreatedAt:      result.CreatedAt,
	}, nil
}

func (uc *UseCase) book(ctx context.Context, req *Request, now time.Time) (*domain.Booking, error) {
	// 2. Получаем слот
	slot, err := uc.slotRepo.GetByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			uc.logger.Warn("CreateBooking: slot id=%d not found", req.SlotID)
			return nil, ErrSlotNotFound
		}
		uc.logger.Error("CreateBooking: failed to get slot id=%d: %v", req.SlotID, err)
		return nil, fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}

	// 3. Проверяем срок и соответствие слота запросу
	if slot.IsExpired(now) {
		uc.logger.Warn("CreateBooking: slot id=%d expired (work date %s)", slot.ID, slot.WorkDate.Format(domain.DateFormat))
		return nil, ErrSlotExpired
	}

	if err := validateSlot(slot, req); err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}

	// 4. Пациент уже записан в этот слот
	exists, err := uc.bookingRepo.ExistsBooked(ctx, req.PatientID, slot.ID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to check existing booking: %v", err)
		return nil, fmt.Errorf("%w: failed to check existing booking: %v", ErrInternal, err)
	}
	if exists {
		uc.logger.Warn("CreateBooking: patient=%s already holds slot=%d", req.PatientID, slot.ID)
		return nil, ErrDuplicateBooking
	}

	// 5. Имена из справочника до транзакции, недоступность справочника не мешает записи
	names := uc.lookupNames(ctx, req)

	var created *domain.Booking

	// 6. Место, номер и запись в одной транзакции
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		reserved, err := uc.slotRepo.Reserve(txCtx, slot.ID)
		if err != nil {
			return uc.mapReserveError(slot.ID, err)
		}

		uc.logger.Info("CreateBooking: reserved slot=%d, %d/%d taken, version=%d",
			slot.ID, reserved.BookedCount, reserved.MaxCapacity, reserved.Version)

		booking, err := uc.persist(txCtx, req, names)
		if err != nil {
			uc.compensate(txCtx, slot.ID)
			return err
		}

		created = booking
		return nil
	})

	if err != nil {
		return nil, err
	}

	return created, nil
}

// persist выдаёт номер и сохраняет бронирование
func (uc *UseCase) persist(ctx context.Context, req *Request, names directory.Names) (*domain.Booking, error) {
	id, err := uc.idAllocator.NextID(ctx)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to allocate booking id: %v", err)
		return nil, fmt.Errorf("%w: failed to allocate booking id: %v", ErrInternal, err)
	}

	booking := &domain.Booking{
		ID:             id,
		PatientID:      req.PatientID,
		DoctorID:       req.DoctorID,
		SlotID:         req.SlotID,
		ScheduledAt:    req.ScheduledAt,
		Status:         domain.StatusBooked,
		PatientName:    names.PatientName,
		DoctorName:     names.DoctorName,
		DepartmentName: names.DepartmentName,
	}

	created, err := uc.bookingRepo.Create(ctx, booking)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrDuplicateBooking) {
			uc.logger.Warn("CreateBooking: concurrent duplicate for patient=%s slot=%d", req.PatientID, req.SlotID)
			return nil, ErrDuplicateBooking
		}
		uc.logger.Error("CreateBooking: failed to create booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
	}

	return created, nil
}

// compensate возвращает место, занятое Reserve, если запись бронирования не удалась
func (uc *UseCase) compensate(ctx context.Context, slotID int64) {
	if err := uc.slotRepo.Release(ctx, slotID); err != nil {
		// В PostgreSQL транзакция всё равно откатится вместе с Reserve
		uc.logger.Warn("CreateBooking: compensating release for slot=%d failed: %v", slotID, err)
		return
	}
	uc.logger.Info("CreateBooking: released slot=%d after failed booking", slotID)
}

func (uc *UseCase) mapReserveError(slotID int64, err error) error {
	switch {
	case errors.Is(err, slotRepo.ErrSlotFull):
		uc.logger.Warn("CreateBooking: slot=%d is full", slotID)
		return ErrSlotFull
	case errors.Is(err, slotRepo.ErrVersionConflict):
		uc.logger.Warn("CreateBooking: version conflict on slot=%d", slotID)
		return ErrConflict
	case errors.Is(err, slotRepo.ErrSlotNotFound):
		uc.logger.Warn("CreateBooking: slot=%d disappeared before reserve", slotID)
		return ErrSlotNotFound
	default:
		uc.logger.Error("CreateBooking: failed to reserve slot=%d: %v", slotID, err)
		return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
	}
}

func (uc *UseCase) lookupNames(ctx context.Context, req *Request) directory.Names {
	if uc.directory == nil {
		return directory.Names{}
	}

	names, err := uc.directory.GetNamesWithGracefulDegradation(ctx, req.PatientID, req.DoctorID)
	if err != nil {
		uc.logger.Warn("CreateBooking: continuing without directory names: %v", err)
	}
	return names
}

func (uc *UseCase) publish(ctx context.Context, booking *domain.Booking, now time.Time) {
	err := uc.publisher.Publish(ctx, events.BookingEvent{
		Type:        events.BookingCreated,
		BookingID:   booking.ID,
		PatientID:   booking.PatientID,
		DoctorID:    booking.DoctorID,
		SlotID:      booking.SlotID,
		ScheduledAt: booking.ScheduledAt,
		Status:      string(booking.Status),
		OccurredAt:  now,
	})
	if err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for booking id=%s: %v", booking.ID, err)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeReserved
	case errors.Is(err, ErrSlotFull):
		return metrics.OutcomeFull
	case errors.Is(err, ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrDuplicateBooking):
		return metrics.OutcomeDuplicate
	case errors.Is(err, ErrSlotExpired):
		return metrics.OutcomeExpired
	case errors.Is(err, ErrSlotNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
