package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockIsExclusive(t *testing.T) {
	l := NewMemory()
	ctx := context.Background()

	token, ok, err := l.TryLock(ctx, "order:1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = l.TryLock(ctx, "order:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = l.TryLock(ctx, "order:2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "different keys do not block each other")

	require.NoError(t, l.Release(ctx, "order:1", token))
	_, ok, err = l.TryLock(ctx, "order:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLockExpires(t *testing.T) {
	l := NewMemory()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	stale, ok, err := l.TryLock(ctx, "order:1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	fresh, ok, err := l.TryLock(ctx, "order:1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// eski sahibin Release'i yeni kilidi bozmamalı
	assert.ErrorIs(t, l.Release(ctx, "order:1", stale), ErrNotHeld)
	_, ok, err = l.TryLock(ctx, "order:1", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, "order:1", fresh))
}

func TestMemoryLockValidation(t *testing.T) {
	l := NewMemory()
	ctx := context.Background()

	_, _, err := l.TryLock(ctx, "", time.Second)
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, _, err = l.TryLock(ctx, "order:1", 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)

	assert.NoError(t, l.Release(ctx, "", ""))
}

func TestMemoryLockConcurrentAcquire(t *testing.T) {
	l := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, err := l.TryLock(ctx, "order:7", time.Minute); err == nil && ok {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, acquired)
}

func TestRedisLockRequiresClient(t *testing.T) {
	var l *Redis
	_, _, err := l.TryLock(context.Background(), "order:1", time.Second)
	assert.Error(t, err)
	assert.NoError(t, l.Release(context.Background(), "order:1", "token"))
}
