package quotes

import (
	"testing"
	"time"
)

func newBookOnlyStream(staleness time.Duration) *Stream {
	return NewStream(Config{Staleness: staleness}, nil)
}

func TestApplyUpdatesBook(t *testing.T) {
	s := newBookOnlyStream(time.Minute)
	s.apply([]byte(`{"type":"trade","data":[{"s":"AAPL","p":187.5,"t":1700000000000},{"s":"MSFT","p":402.1,"t":1700000000000}]}`))

	if p, ok := s.LastPrice("AAPL"); !ok || p != 187.5 {
		t.Fatalf("AAPL = %v %v", p, ok)
	}
	if p, ok := s.LastPrice("MSFT"); !ok || p != 402.1 {
		t.Fatalf("MSFT = %v %v", p, ok)
	}
	if _, ok := s.LastPrice("TSLA"); ok {
		t.Fatal("expected no price for unseen ticker")
	}
}

func TestApplyIgnoresNonTradeFrames(t *testing.T) {
	s := newBookOnlyStream(time.Minute)
	s.apply([]byte(`{"type":"ping"}`))
	s.apply([]byte(`not json`))
	s.apply([]byte(`{"type":"trade","data":[{"s":"","p":10},{"s":"AAPL","p":0}]}`))

	if _, ok := s.LastPrice("AAPL"); ok {
		t.Fatal("zero-price trade should not enter the book")
	}
}

func TestLastPriceStaleness(t *testing.T) {
	s := newBookOnlyStream(time.Nanosecond)
	s.apply([]byte(`{"type":"trade","data":[{"s":"AAPL","p":187.5}]}`))
	time.Sleep(time.Millisecond)

	if _, ok := s.LastPrice("AAPL"); ok {
		t.Fatal("expected stale quote to be rejected")
	}
}
