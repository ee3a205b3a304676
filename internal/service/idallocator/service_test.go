package idallocator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Error(string, ...interface{}) {}

type nopMetrics struct{}

func (nopMetrics) SequenceAllocated(string, error) {}

type failingCounter struct{ seq int }

func (c failingCounter) Next(context.Context, string) (int, error) {
	if c.seq == 0 {
		return 0, errors.New("counter unavailable")
	}
	return c.seq, nil
}

func newService(counter Counter, now time.Time, loc *time.Location) *Service {
	return NewService(counter, "memory", loc, nopMetrics{}, nopLogger{}).
		WithTimeProvider(fixedTime{t: now})
}

func TestService_NextID_Format(t *testing.T) {
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	svc := newService(memory.NewSequenceCounter(), now, time.UTC)

	first, err := svc.NextID(context.Background())
	require.NoError(t, err)
	second, err := svc.NextID(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "202610150001", first)
	assert.Equal(t, "202610150002", second)
}

func TestService_NextID_UsesClinicTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	// 22:30 UTC 14 октября это уже 15 октября в UTC+3
	now := time.Date(2026, 10, 14, 22, 30, 0, 0, time.UTC)
	svc := newService(memory.NewSequenceCounter(), now, loc)

	id, err := svc.NextID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "202610150001", id)
}

func TestService_NextID_ConcurrentIDsAreUnique(t *testing.T) {
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	svc := newService(memory.NewSequenceCounter(), now, time.UTC)

	const workers = 100
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]struct{}, workers)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := svc.NextID(context.Background())
			assert.NoError(t, err)

			mu.Lock()
			ids[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, workers)
}

func TestService_NextID_CounterFailure(t *testing.T) {
	svc := newService(failingCounter{}, time.Now(), time.UTC)

	_, err := svc.NextID(context.Background())
	assert.ErrorIs(t, err, ErrAllocate)
}

func TestService_NextID_SequenceExhausted(t *testing.T) {
	svc := newService(failingCounter{seq: domain.MaxDailySequence + 1}, time.Now(), time.UTC)

	_, err := svc.NextID(context.Background())
	assert.ErrorIs(t, err, domain.ErrSequenceExhausted)
}
