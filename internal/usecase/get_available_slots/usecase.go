package get_available_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// UseCase use case для получения доступных слотов врача
type UseCase struct {
	slotRepo     SlotRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		slotRepo:     slotRepo,
		txManager:    txManager,
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

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Период в часовом поясе клиники
	now := uc.timeProvider.Now().In(uc.location)
	today := domain.DateOnly(now, uc.location)

	from := today
	if !req.From.IsZero() {
		from = domain.DateOnly(req.From, uc.location)
	}
	if err := validateDate(from, today); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	days := req.Days
	if days == 0 {
		days = domain.DefaultAvailableSlotsDays
	}
	to := from.AddDate(0, 0, days-1)

	uc.logger.Info("GetAvailableSlots: doctor=%s, period=%s to %s",
		req.DoctorID, from.Format(domain.DateFormat), to.Format(domain.DateFormat))

	// 3. Получаем слоты со свободными местами
	var slots []*domain.Slot
	err := uc.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		slots, err = uc.slotRepo.ListByDoctor(txCtx, domain.SlotFilter{
			DoctorID:      req.DoctorID,
			From:          &from,
			To:            &to,
			OnlyAvailable: true,
		})
		return err
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list slots for doctor=%s: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to list slots: %v", ErrInternal, err)
	}

	// 4. Убираем то, что уже прошло
	bookable := selectBookable(slots, now)

	uc.logger.Info("GetAvailableSlots: %d of %d slots bookable for doctor=%s", len(bookable), len(slots), req.DoctorID)

	return &Response{
		DoctorID: req.DoctorID,
		From:     from,
		To:       to,
		Slots:    bookable,
	}, nil
}
