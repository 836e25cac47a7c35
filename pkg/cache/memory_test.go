package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type cachedSeries struct {
	Ticker string    `json:"ticker"`
	Closes []float64 `json:"closes"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	in := cachedSeries{Ticker: "AAPL", Closes: []float64{100, 101, 102}}
	if err := mc.Set(ctx, "candles:AAPL:14", in, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out cachedSeries
	if err := mc.Get(ctx, "candles:AAPL:14", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Ticker != "AAPL" || len(out.Closes) != 3 || out.Closes[2] != 102 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var out cachedSeries
	err := mc.Get(context.Background(), "candles:MSFT:14", &out)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiration(t *testing.T) {
	mc := NewMemoryCache(WithMemoryCleanup(time.Hour))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(25 * time.Millisecond)

	var out string
	if err := mc.Get(ctx, "k", &out); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "a", 1, time.Minute); err != nil {
		t.Fatalf("set a: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if err := mc.Set(ctx, "b", 2, time.Minute); err != nil {
		t.Fatalf("set b: %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	// Touch a so b becomes the least recently used entry.
	var n int
	if err := mc.Get(ctx, "a", &n); err != nil {
		t.Fatalf("get a: %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	if err := mc.Set(ctx, "c", 3, time.Minute); err != nil {
		t.Fatalf("set c: %v", err)
	}

	if err := mc.Get(ctx, "b", &n); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected b evicted, got %v", err)
	}
	if err := mc.Get(ctx, "a", &n); err != nil || n != 1 {
		t.Fatalf("expected a retained, got n=%d err=%v", n, err)
	}
	if err := mc.Get(ctx, "c", &n); err != nil || n != 3 {
		t.Fatalf("expected c present, got n=%d err=%v", n, err)
	}
}
