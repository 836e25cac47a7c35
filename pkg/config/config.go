package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"QuantSift/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		DisableCORS     bool          `yaml:"disable_cors"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Screen struct {
		Universe           []string      `yaml:"universe"`
		AnomalyLookback    int           `yaml:"anomaly_lookback"`
		ZThreshold         float64       `yaml:"z_threshold"`
		ScoreThreshold     float64       `yaml:"score_threshold"`
		MaxSignalsPerRun   int           `yaml:"max_signals_per_run"`
		Stage1LookbackDays int           `yaml:"stage1_lookback_days"`
		Stage2LookbackDays int           `yaml:"stage2_lookback_days"`
		NewsLookbackDays   int           `yaml:"news_lookback_days"`
		Concurrency        int           `yaml:"concurrency"`
		Interval           time.Duration `yaml:"interval"`
		DryRun             bool          `yaml:"dry_run"`
	} `yaml:"screen"`
	MarketData struct {
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		RequestsPerSec float64 `yaml:"requests_per_sec"`
		Burst          float64 `yaml:"burst"`
	} `yaml:"market_data"`
	Macro struct {
		URL    string   `yaml:"url"`
		APIKey string   `yaml:"api_key"`
		Weight *float64 `yaml:"weight"`
	} `yaml:"macro"`
	News struct {
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		RequestsPerSec float64 `yaml:"requests_per_sec"`
	} `yaml:"news"`
	Fundamentals struct {
		ProfileBaseURL  string `yaml:"profile_base_url"`
		ProfileAPIKey   string `yaml:"profile_api_key"`
		OverviewBaseURL string `yaml:"overview_base_url"`
		OverviewAPIKey  string `yaml:"overview_api_key"`
	} `yaml:"fundamentals"`
	Quotes struct {
		WebSocketURL   string        `yaml:"websocket_url"`
		APIKey         string        `yaml:"api_key"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		Staleness      time.Duration `yaml:"staleness"`
	} `yaml:"quotes"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			BatchTimeout time.Duration `yaml:"batch_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled   bool   `yaml:"enabled"`
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"redis"`
	Queue struct {
		Enabled    bool          `yaml:"enabled"`
		Workers    int           `yaml:"workers"`
		RetryLimit int           `yaml:"retry_limit"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"queue"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("MARKET_DATA_API_KEY"); v != "" {
		c.MarketData.APIKey = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		c.News.APIKey = v
	}
	if v := os.Getenv("QUOTES_API_KEY"); v != "" {
		c.Quotes.APIKey = v
	}
	if v := os.Getenv("UNIVERSE"); v != "" {
		c.Screen.Universe = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("DRY_RUN"); v != "" {
		dry, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parse DRY_RUN: %w", err)
		}
		c.Screen.DryRun = dry
	}

	c.Screen.Universe = util.NormalizeTickers(c.Screen.Universe)
	if len(c.Screen.Universe) == 0 {
		return nil, fmt.Errorf("screen.universe is empty after normalization")
	}

	return c, nil
}

// Validate checks if the configuration is valid. Errors here are fatal at
// startup: a scan must never run with silently defaulted thresholds that
// the operator believes they set.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Screen.Universe) == 0 {
		return fmt.Errorf("screen.universe cannot be empty")
	}
	if c.MarketData.BaseURL == "" {
		return fmt.Errorf("market_data.base_url is required")
	}
	if c.Screen.ZThreshold < 0 {
		return fmt.Errorf("screen.z_threshold must be >= 0, got %v", c.Screen.ZThreshold)
	}
	if c.Screen.ScoreThreshold < 0 {
		return fmt.Errorf("screen.score_threshold must be >= 0, got %v", c.Screen.ScoreThreshold)
	}
	if c.Screen.MaxSignalsPerRun < 0 {
		return fmt.Errorf("screen.max_signals_per_run must be >= 0, got %d", c.Screen.MaxSignalsPerRun)
	}
	if c.Screen.AnomalyLookback < 0 {
		return fmt.Errorf("screen.anomaly_lookback must be >= 0, got %d", c.Screen.AnomalyLookback)
	}
	if c.Screen.Stage1LookbackDays < 0 {
		return fmt.Errorf("screen.stage1_lookback_days must be >= 0, got %d", c.Screen.Stage1LookbackDays)
	}
	if c.Screen.Stage2LookbackDays < 0 {
		return fmt.Errorf("screen.stage2_lookback_days must be >= 0, got %d", c.Screen.Stage2LookbackDays)
	}
	if c.Screen.NewsLookbackDays < 0 {
		return fmt.Errorf("screen.news_lookback_days must be >= 0, got %d", c.Screen.NewsLookbackDays)
	}
	if c.Screen.Concurrency < 0 {
		return fmt.Errorf("screen.concurrency must be >= 0, got %d", c.Screen.Concurrency)
	}
	if c.Macro.Weight != nil && (*c.Macro.Weight < -2 || *c.Macro.Weight > 2) {
		return fmt.Errorf("macro.weight must be within [-2, 2], got %v", *c.Macro.Weight)
	}
	return nil
}
