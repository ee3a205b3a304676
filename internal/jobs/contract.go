package jobs

import (
	"context"
	"time"
)

// SequenceCleaner хранилище счётчиков номеров по дням
type SequenceCleaner interface {
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// LimiterCleaner ограничитель частоты запросов с вытеснением простаивающих ключей
type LimiterCleaner interface {
	Cleanup() int
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
