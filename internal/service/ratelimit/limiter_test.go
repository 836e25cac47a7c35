package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowDrainsBucket(t *testing.T) {
	l := New()

	for i := 0; i < 3; i++ {
		if !l.Allow("vendor", 3, 0.001) {
			t.Fatalf("request %d: expected token available", i)
		}
	}
	if l.Allow("vendor", 3, 0.001) {
		t.Fatal("expected bucket drained")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()

	for i := 0; i < 2; i++ {
		l.Allow("a", 2, 0.001)
	}
	if l.Allow("a", 2, 0.001) {
		t.Fatal("key a should be drained")
	}
	if !l.Allow("b", 2, 0.001) {
		t.Fatal("key b should be untouched")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New()

	if !l.Allow("vendor", 1, 100) {
		t.Fatal("first token should be available")
	}
	if l.Allow("vendor", 1, 100) {
		t.Fatal("bucket should be empty immediately after drain")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.Allow("vendor", 1, 100) {
		t.Fatal("bucket should have refilled")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	l := New()
	l.Allow("vendor", 1, 0.001)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "vendor", 1, 0.001); err == nil {
		t.Fatal("expected context deadline error")
	}
}
