package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	slotRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AppointmentService/internal/service/slots/models"
)

// Service сервис управления расписанием врачей (слотами)
type Service struct {
	slotRepo       SlotRepository
	bookingCounter BookingCounter
	txManager      TransactionManager
	timeProvider   TimeProvider
	location       *time.Location
	logger         Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(
	slotRepo SlotRepository,
	bookingCounter BookingCounter,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		slotRepo:       slotRepo,
		bookingCounter: bookingCounter,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		location:       location,
		logger:         logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Create создает новый слот
// У врача не может быть двух слотов с одинаковым началом в одну дату
func (s *Service) Create(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("Create: creating slot for doctor=%s, date=%s, %s-%s",
		req.DoctorID, req.WorkDate, req.StartTime, req.EndTime)

	// 1. Разбираем и валидируем входные данные
	slot, err := req.ToDomainSlot()
	if err != nil {
		s.logger.Warn("Create: invalid slot data: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.validateSlot(slot); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверка дубликата и вставка в одной сериализуемой транзакции
	var created *domain.Slot
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		exists, err := s.slotRepo.ExistsAt(txCtx, slot.DoctorID, slot.WorkDate, slot.StartTime)
		if err != nil {
			return fmt.Errorf("%w: Create - failed to check existing slot: %v", ErrInternal, err)
		}
		if exists {
			return ErrSlotAlreadyExists
		}

		created, err = s.slotRepo.Create(txCtx, slot)
		return err
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrSlotAlreadyExists), errors.Is(err, slotRepo.ErrDuplicateSlot):
			s.logger.Warn("Create: doctor=%s already has a slot at %s %s", req.DoctorID, req.WorkDate, req.StartTime)
			return nil, ErrSlotAlreadyExists
		case errors.Is(err, slotRepo.ErrInvalidSlot):
			s.logger.Warn("Create: slot rejected by storage: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		case errors.Is(err, ErrInternal):
			s.logger.Error("Create: %v", err)
			return nil, err
		default:
			s.logger.Error("Create: repository error: %v", err)
			return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}
	}

	s.logger.Info("Create: successfully created slot id=%d", created.ID)
	return models.FromDomainSlot(created), nil
}

// GetByID получает слот по ID вместе с числом активных бронирований
func (s *Service) GetByID(ctx context.Context, id int64) (*models.SlotResponse, error) {
	s.logger.Info("GetByID: fetching slot id=%d", id)

	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("GetByID", id, err)
	}

	active, err := s.bookingCounter.CountBookedBySlot(ctx, id)
	if err != nil {
		s.logger.Error("GetByID: failed to count bookings for slot id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - failed to count bookings: %v", ErrInternal, err)
	}

	if active != slot.BookedCount {
		s.logger.Warn("GetByID: slot id=%d booked_count=%d differs from active bookings=%d", id, slot.BookedCount, active)
	}

	resp := models.FromDomainSlot(slot)
	resp.ActiveBookings = &active
	return resp, nil
}

// UpdateCapacity меняет вместимость слота, пока в нём нет бронирований
func (s *Service) UpdateCapacity(ctx context.Context, id int64, req *models.UpdateCapacityRequest) (*models.SlotResponse, error) {
	s.logger.Info("UpdateCapacity: slot id=%d, maxCapacity=%d", id, req.MaxCapacity)

	if err := validateCapacity(req.MaxCapacity); err != nil {
		s.logger.Warn("UpdateCapacity: validation failed: %v", err)
		return nil, err
	}

	slot, err := s.slotRepo.UpdateCapacity(ctx, id, req.MaxCapacity)
	if err != nil {
		return nil, s.mapRepoError("UpdateCapacity", id, err)
	}

	s.logger.Info("UpdateCapacity: slot id=%d now has capacity %d, version=%d", id, slot.MaxCapacity, slot.Version)
	return models.FromDomainSlot(slot), nil
}

// Delete удаляет слот, пока в нём нет бронирований
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.logger.Info("Delete: deleting slot id=%d", id)

	if err := s.slotRepo.Delete(ctx, id); err != nil {
		return s.mapRepoError("Delete", id, err)
	}

	s.logger.Info("Delete: successfully deleted slot id=%d", id)
	return nil
}

// Вспомогательные методы

func (s *Service) mapRepoError(op string, id int64, err error) error {
	switch {
	case errors.Is(err, slotRepo.ErrSlotNotFound):
		s.logger.Warn("%s: slot id=%d not found", op, id)
		return ErrSlotNotFound
	case errors.Is(err, slotRepo.ErrSlotHasBookings):
		s.logger.Warn("%s: slot id=%d already has bookings", op, id)
		return ErrSlotHasBookings
	default:
		s.logger.Error("%s: repository error for slot id=%d: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

// validateSlot валидирует параметры слота
func (s *Service) validateSlot(slot *domain.Slot) error {
	if slot.DoctorID == "" || len(slot.DoctorID) > domain.MaxIDLength {
		return fmt.Errorf("%w: doctorId is required", ErrInvalidInput)
	}

	if !slot.StartTime.IsBefore(slot.EndTime) {
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}

	if err := validateCapacity(slot.MaxCapacity); err != nil {
		return err
	}

	now := s.timeProvider.Now().In(s.location)
	if slot.IsExpired(now) {
		return fmt.Errorf("%w: workDate is in the past", ErrInvalidInput)
	}

	return nil
}

func validateCapacity(capacity int) error {
	if capacity < domain.MinCapacity || capacity > domain.MaxCapacity {
		return fmt.Errorf("%w: maxCapacity must be between %d and %d", ErrInvalidInput, domain.MinCapacity, domain.MaxCapacity)
	}
	return nil
}
