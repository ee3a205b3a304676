package idallocator

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Service выдаёт номера бронирований вида YYYYMMDD + NNNN
//
// День берётся в часовом поясе клиники. Уникальность номера обеспечивает
// атомарность счётчика, первичный ключ bookings страхует от ошибок сидирования.
// Пропуски в нумерации допустимы (откат транзакции, счётчик в Redis).
type Service struct {
	counter      Counter
	backend      string
	location     *time.Location
	timeProvider TimeProvider
	metrics      MetricsRecorder
	logger       Logger
}

// NewService создает сервис выдачи номеров. backend используется только как метка метрик
func NewService(counter Counter, backend string, location *time.Location, metrics MetricsRecorder, logger Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		counter:      counter,
		backend:      backend,
		location:     location,
		timeProvider: &RealTimeProvider{},
		metrics:      metrics,
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// NextID выдаёт следующий номер за текущий день
// Внутри транзакции PostgreSQL счётчик двигается вместе с ней и откатывается при ошибке
func (s *Service) NextID(ctx context.Context) (string, error) {
	day := s.timeProvider.Now().In(s.location)
	dayKey := domain.DayKey(day)

	seq, err := s.counter.Next(ctx, dayKey)
	if err != nil {
		s.metrics.SequenceAllocated(s.backend, err)
		s.logger.Error("NextID: counter failed for day=%s: %v", dayKey, err)
		return "", fmt.Errorf("%w: day=%s: %v", ErrAllocate, dayKey, err)
	}

	id, err := domain.FormatBookingID(day, seq)
	s.metrics.SequenceAllocated(s.backend, err)
	if err != nil {
		s.logger.Error("NextID: day=%s sequence=%d out of range: %v", dayKey, seq, err)
		return "", err
	}

	s.logger.Debug("NextID: allocated id=%s", id)
	return id, nil
}
