package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout ограничение на один запуск задачи
const jobTimeout = time.Minute

// Scheduler периодические служебные задачи сервиса
type Scheduler struct {
	cron         *cron.Cron
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger
}

// NewScheduler создаёт планировщик, расписания считаются в часовом поясе клиники
func NewScheduler(location *time.Location, logger Logger) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	return &Scheduler{
		cron:         cron.New(cron.WithLocation(location)),
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Scheduler) WithTimeProvider(tp TimeProvider) *Scheduler {
	s.timeProvider = tp
	return s
}

// AddSequenceCleanup удаляет счётчики номеров старше retentionDays дней
func (s *Scheduler) AddSequenceCleanup(spec string, cleaner SequenceCleaner, retentionDays int) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if _, err := s.CleanupSequences(ctx, cleaner, retentionDays); err != nil {
			s.logger.Error("Cron Job: sequence cleanup failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sequence cleanup %q: %w", spec, err)
	}
	return nil
}

// AddRateLimitCleanup вытесняет ключи ограничителя, простаивающие дольше его TTL
func (s *Scheduler) AddRateLimitCleanup(spec string, limiter LimiterCleaner) error {
	_, err := s.cron.AddFunc(spec, func() {
		if removed := limiter.Cleanup(); removed > 0 {
			s.logger.Info("Cron Job: evicted %d idle rate limiter keys", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule rate limiter cleanup %q: %w", spec, err)
	}
	return nil
}

// CleanupSequences удаляет счётчики дней раньше чем today-retentionDays
// Сегодняшний счётчик не трогается при любом retentionDays
func (s *Scheduler) CleanupSequences(ctx context.Context, cleaner SequenceCleaner, retentionDays int) (int64, error) {
	if retentionDays < 1 {
		retentionDays = 1
	}

	now := s.timeProvider.Now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	before := today.AddDate(0, 0, -retentionDays+1)

	deleted, err := cleaner.DeleteBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to delete sequences before %s: %w", before.Format("2006-01-02"), err)
	}

	s.logger.Info("Cron Job: deleted %d booking sequence counters before %s", deleted, before.Format("2006-01-02"))
	return deleted, nil
}

// Start запускает планировщик в отдельной горутине
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик и возвращает контекст, который закрывается
// после завершения уже запущенных задач
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
