package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetOrLoad_DeduplicatesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "certs", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "google-certs", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "certs" {
				errCh <- errors.New("unexpected loaded value")
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, calls.Load())
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	var calls atomic.Int32
	loader := func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("upstream down")
		}
		return 7, nil
	}

	_, err := store.GetOrLoad(context.Background(), "k", loader)
	require.Error(t, err)

	v, err := store.GetOrLoad(context.Background(), "k", loader)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.EqualValues(t, 2, calls.Load())
}

func TestStore_ExpiresEntries(t *testing.T) {
	store := NewStore[string](time.Minute)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "k", "v")
	_, ok := store.Get(context.Background(), "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = store.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestStore_SetWithTTLOverridesDefault(t *testing.T) {
	store := NewStore[string](0)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.SetWithTTL(context.Background(), "short", "v", time.Second)
	store.Set(context.Background(), "forever", "v")

	now = now.Add(time.Hour)
	_, ok := store.Get(context.Background(), "short")
	assert.False(t, ok)
	_, ok = store.Get(context.Background(), "forever")
	assert.True(t, ok)
}

func TestStore_DeletePrefix(t *testing.T) {
	store := NewStore[int](time.Minute)
	ctx := context.Background()
	store.Set(ctx, "club:1", 1)
	store.Set(ctx, "club:2", 2)
	store.Set(ctx, "player:1", 3)

	store.DeletePrefix(ctx, "club:")

	_, ok := store.Get(ctx, "club:1")
	assert.False(t, ok)
	_, ok = store.Get(ctx, "player:1")
	assert.True(t, ok)
}
