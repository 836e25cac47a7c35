package util

import (
	"reflect"
	"testing"
)

func TestNormalizeTickers(t *testing.T) {
	got := NormalizeTickers([]string{" aapl", "MSFT ", "AAPL", "", "msft", "nvda"})
	want := []string{"AAPL", "MSFT", "NVDA"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNormalizeTickersEmpty(t *testing.T) {
	if got := NormalizeTickers(nil); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}
