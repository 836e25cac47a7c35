package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	c := &Config{Environment: "production"}
	c.Screen.Universe = []string{"AAPL"}
	c.MarketData.BaseURL = "https://example.com/api/v1"
	return c
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsNegativeWindows(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"anomaly lookback", func(c *Config) { c.Screen.AnomalyLookback = -5 }, "anomaly_lookback"},
		{"stage1 lookback days", func(c *Config) { c.Screen.Stage1LookbackDays = -14 }, "stage1_lookback_days"},
		{"stage2 lookback days", func(c *Config) { c.Screen.Stage2LookbackDays = -180 }, "stage2_lookback_days"},
		{"news lookback days", func(c *Config) { c.Screen.NewsLookbackDays = -7 }, "news_lookback_days"},
		{"concurrency", func(c *Config) { c.Screen.Concurrency = -1 }, "concurrency"},
		{"z threshold", func(c *Config) { c.Screen.ZThreshold = -2.0 }, "z_threshold"},
		{"score threshold", func(c *Config) { c.Screen.ScoreThreshold = -2.0 }, "score_threshold"},
		{"max signals", func(c *Config) { c.Screen.MaxSignalsPerRun = -10 }, "max_signals_per_run"},
	}

	for _, tc := range cases {
		c := validConfig()
		tc.mutate(c)
		err := c.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error, got nil", tc.name)
		}
		if !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestValidateRejectsOutOfRangeMacroWeight(t *testing.T) {
	c := validConfig()
	w := 3.5
	c.Macro.Weight = &w
	if err := c.Validate(); err == nil {
		t.Fatal("expected validation error for macro.weight outside [-2, 2]")
	}
}
