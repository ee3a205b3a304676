package sequence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seederStub struct {
	max int
	err error
}

func (s seederStub) MaxSequence(context.Context, string) (int, error) {
	return s.max, s.err
}

func newCounter(t *testing.T, seeder Seeder, opts ...Option) (*Counter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewCounter(rdb, seeder, opts...), mr
}

func TestCounter_StartsFromOne(t *testing.T) {
	counter, _ := newCounter(t, nil)
	ctx := context.Background()

	first, err := counter.Next(ctx, "20261015")
	require.NoError(t, err)
	second, err := counter.Next(ctx, "20261015")
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestCounter_SeedsFromHighestIssued(t *testing.T) {
	counter, _ := newCounter(t, seederStub{max: 17})

	seq, err := counter.Next(context.Background(), "20261015")
	require.NoError(t, err)
	assert.Equal(t, 18, seq)
}

func TestCounter_DaysAreIndependent(t *testing.T) {
	counter, _ := newCounter(t, nil)
	ctx := context.Background()

	_, err := counter.Next(ctx, "20261015")
	require.NoError(t, err)

	seq, err := counter.Next(ctx, "20261016")
	require.NoError(t, err)
	assert.Equal(t, 1, seq)
}

func TestCounter_KeyExpires(t *testing.T) {
	counter, mr := newCounter(t, nil, WithPrefix("test:seq:"), WithTTL(time.Hour))

	_, err := counter.Next(context.Background(), "20261015")
	require.NoError(t, err)

	assert.True(t, mr.Exists("test:seq:20261015"))
	assert.Equal(t, time.Hour, mr.TTL("test:seq:20261015"))
}

func TestCounter_SeedFailure(t *testing.T) {
	counter, _ := newCounter(t, seederStub{err: errors.New("db down")})

	_, err := counter.Next(context.Background(), "20261015")
	assert.ErrorIs(t, err, ErrSeed)
}

func TestCounter_ConcurrentCallsAreUnique(t *testing.T) {
	counter, _ := newCounter(t, nil)
	ctx := context.Background()

	const workers = 50
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int]struct{}, workers)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := counter.Next(ctx, "20261015")
			assert.NoError(t, err)

			mu.Lock()
			seen[seq] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers)
}
