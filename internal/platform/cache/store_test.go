package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
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
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_EntriesExpireWithInjectedClock(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 13, 17, 0, 0, 0, time.UTC)
	store := NewStoreWithNow(15*time.Second, func() time.Time { return now })
	ctx := context.Background()

	store.Set(ctx, "event:401547439", "live")
	if _, ok := store.Get(ctx, "event:401547439"); !ok {
		t.Fatal("expected fresh entry to be served")
	}

	now = now.Add(14 * time.Second)
	if _, ok := store.Get(ctx, "event:401547439"); !ok {
		t.Fatal("expected entry to survive within ttl")
	}

	now = now.Add(2 * time.Second)
	if _, ok := store.Get(ctx, "event:401547439"); ok {
		t.Fatal("expected entry to expire after ttl")
	}
}

func TestStore_Purge(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "a", 1)
	store.Set(ctx, "b", 2)
	store.Purge(ctx)

	if _, ok := store.Get(ctx, "a"); ok {
		t.Fatal("expected a to be purged")
	}
	if _, ok := store.Get(ctx, "b"); ok {
		t.Fatal("expected b to be purged")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "teams:all", 1)
	store.Set(ctx, "teams:by_abbr:KC", 2)
	store.Set(ctx, "weeks:by_id:9", 3)

	store.DeletePrefix(ctx, "teams:")

	if _, ok := store.Get(ctx, "teams:all"); ok {
		t.Fatal("expected teams:all to be evicted")
	}
	if _, ok := store.Get(ctx, "teams:by_abbr:KC"); ok {
		t.Fatal("expected teams:by_abbr:KC to be evicted")
	}
	if _, ok := store.Get(ctx, "weeks:by_id:9"); !ok {
		t.Fatal("expected weeks:by_id:9 to survive")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
