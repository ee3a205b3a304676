package idallocator

import (
	"context"
	"time"
)

// Counter атомарный дневной счётчик (PostgreSQL, Redis или память)
type Counter interface {
	Next(ctx context.Context, day string) (int, error)
}

// MetricsRecorder учёт выдачи номеров
type MetricsRecorder interface {
	SequenceAllocated(backend string, err error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Debug(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
