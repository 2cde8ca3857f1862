package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSetGetExpiry(t *testing.T) {
	c := New()
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	c.Set("k", 42, time.Second)
	if v, ok := c.Get("k"); !ok || v.(int) != 42 {
		t.Fatalf("expected 42, got %v %v", v, ok)
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, len=%d", c.Len())
	}

	c.Set("zero", 1, 0)
	if _, ok := c.Get("zero"); ok {
		t.Error("ttl 0 should not store")
	}
}

func TestDeletePurgePrune(t *testing.T) {
	c := New()
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	c.Set("a", 1, time.Second)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)

	c.Delete("c")
	if _, ok := c.Get("c"); ok {
		t.Error("expected c deleted")
	}

	now = now.Add(10 * time.Second)
	if n := c.Prune(); n != 1 {
		t.Errorf("expected 1 pruned, got %d", n)
	}

	c.Purge()
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}

func TestGetOrSetComputesOnce(t *testing.T) {
	c := New()
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context) (uint64, error) {
		calls.Add(1)
		<-release
		return 950_000, nil
	}

	var wg sync.WaitGroup
	results := make([]uint64, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, err := GetOrSet(ctx, c, "quote", time.Minute, compute)
			if err != nil {
				t.Errorf("GetOrSet failed: %v", err)
			}
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 computation, got %d", n)
	}
	for i, v := range results {
		if v != 950_000 {
			t.Errorf("result %d: expected 950000, got %d", i, v)
		}
	}

	v, hit, err := GetOrSet(ctx, c, "quote", time.Minute, compute)
	if err != nil || !hit || v != 950_000 {
		t.Errorf("expected cache hit, got %d %v %v", v, hit, err)
	}
}

func TestGetOrSetDoesNotCacheErrors(t *testing.T) {
	c := New()
	ctx := context.Background()
	boom := errors.New("boom")

	_, _, err := GetOrSet(ctx, c, "k", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	v, hit, err := GetOrSet(ctx, c, "k", time.Minute, func(context.Context) (int, error) {
		return 7, nil
	})
	if err != nil || hit || v != 7 {
		t.Errorf("expected fresh computation, got %d %v %v", v, hit, err)
	}
}

func TestGetOrSetHonorsContext(t *testing.T) {
	c := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, _, err := GetOrSet(ctx, c, "slow", time.Minute, func(context.Context) (int, error) {
		time.Sleep(200 * time.Millisecond)
		return 1, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestSetPrunesExpiredEntries(t *testing.T) {
	c := New()
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	for i := 0; i < 10*pruneEvery; i++ {
		c.Set(fmt.Sprintf("quote|V|%d", i), i, time.Second)
		now = now.Add(time.Second)
	}
	if n := c.Len(); n > pruneEvery {
		t.Errorf("expected at most %d entries, got %d", pruneEvery, n)
	}
}

func TestGetOrSetSharedFillOutlivesCanceledCaller(t *testing.T) {
	c := New()
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	compute := func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 42, nil
	}

	ctx1, cancel1 := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, _, err := GetOrSet(ctx1, c, "quote", time.Minute, compute)
		first <- err
	}()
	<-started

	type result struct {
		v   int
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, _, err := GetOrSet(context.Background(), c, "quote", time.Minute, compute)
		second <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel1()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Errorf("expected the canceled caller to stop, got %v", err)
	}
	close(release)

	res := <-second
	if res.err != nil || res.v != 42 {
		t.Fatalf("expected 42 for the waiting caller, got %d %v", res.v, res.err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 computation, got %d", n)
	}
	if v, ok := c.Get("quote"); !ok || v.(int) != 42 {
		t.Errorf("expected the shared fill to be cached, got %v %v", v, ok)
	}
}
