package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseLocker(t *testing.T, locker Locker) {
	t.Helper()
	var (
		active  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "same")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen)
}

func TestKeyedMutexSerialisesSameKey(t *testing.T) {
	exerciseLocker(t, NewKeyedMutex())
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()
	unlockA, err := km.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	unlockB, err := km.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestKeyedMutexHonoursContext(t *testing.T) {
	km := NewKeyedMutex()
	unlock, err := km.Lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = km.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()
	km.mu.Lock()
	assert.Empty(t, km.locks)
	km.mu.Unlock()
}

func TestRedisLockerSerialisesSameKey(t *testing.T) {
	_, client := newTestRedis(t)
	exerciseLocker(t, NewRedisLocker(client, time.Minute))
}

func TestRedisLockerTimesOutWhileHeld(t *testing.T) {
	mr, client := newTestRedis(t)
	locker := NewRedisLocker(client, time.Minute)

	unlock, err := locker.Lock(context.Background(), "held")
	require.NoError(t, err)
	assert.True(t, mr.Exists("session-lock:held"))

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "held")
	assert.ErrorIs(t, err, ErrSessionLocked)

	unlock()
	assert.False(t, mr.Exists("session-lock:held"))
}

func TestRedisLockerOnlyReleasesOwnToken(t *testing.T) {
	mr, client := newTestRedis(t)
	locker := NewRedisLocker(client, time.Minute)

	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)

	// Simulate expiry followed by another holder taking the key.
	require.NoError(t, mr.Set("session-lock:k", "someone-else"))
	unlock()

	val, err := mr.Get("session-lock:k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
}
