package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Kafka      KafkaConfig      `yaml:"kafka"`
	Redis      RedisConfig      `yaml:"redis"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	GeoIP      GeoIPConfig      `yaml:"geoip"`
	LLM        LLMConfig        `yaml:"llm"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Insights   InsightsConfig   `yaml:"insights"`
	Worker     WorkerConfig     `yaml:"worker"`
	HTTP       HTTPConfig       `yaml:"http"`
}

type InsightsConfig struct {
	RageClick   RageClickConfig   `yaml:"rage_click"`
	DeadClick   DeadClickConfig   `yaml:"dead_click"`
	MouseShake  MouseShakeConfig  `yaml:"mouse_shake"`
	ErrorClick  ErrorClickConfig  `yaml:"error_click"`
	UTurn       UTurnConfig       `yaml:"u_turn"`
	SlowRequest SlowRequestConfig `yaml:"slow_request"`
}

type RageClickConfig struct {
	Enabled      bool  `yaml:"enabled"`
	MinClicks    int   `yaml:"min_clicks"`
	TimeWindowMs int64 `yaml:"time_window_ms"`
}

type DeadClickConfig struct {
	Enabled             bool  `yaml:"enabled"`
	ObservationWindowMs int64 `yaml:"observation_window_ms"`
	// Focus and blur count as a response to the click.
	CountFocusBlur bool `yaml:"count_focus_blur"`
}

type MouseShakeConfig struct {
	Enabled       bool    `yaml:"enabled"`
	MinPositions  int     `yaml:"min_positions"`
	TimeoutMs     int64   `yaml:"timeout_ms"`
	SharpAngleDeg float64 `yaml:"sharp_angle_deg"`
	MinSharpTurns int     `yaml:"min_sharp_turns"`
}

type ErrorClickConfig struct {
	Enabled       bool  `yaml:"enabled"`
	ErrorWindowMs int64 `yaml:"error_window_ms"`
}

type UTurnConfig struct {
	Enabled       bool  `yaml:"enabled"`
	MaxTimeAwayMs int64 `yaml:"max_time_away_ms"`
}

type SlowRequestConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ThresholdMs float64 `yaml:"threshold_ms"`
}

type KafkaConfig struct {
	Enabled       bool              `yaml:"enabled"`
	Brokers       []string          `yaml:"brokers"`
	Topics        map[string]string `yaml:"topics"`
	ConsumerGroup string            `yaml:"consumer_group"`
}

type ClickHouseConfig struct {
	Addr         string `yaml:"addr"`
	Database     string `yaml:"database"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	RecordingTTL time.Duration `yaml:"recording_ttl"`
}

type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"max_conns"`
}

type GeoIPConfig struct {
	DBPath string `yaml:"db_path"`
}

type LLMConfig struct {
	APIKey          string        `yaml:"api_key"`
	Model           string        `yaml:"model"`
	EmbeddingModel  string        `yaml:"embedding_model"`
	Timeout         time.Duration `yaml:"timeout"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout"`
}

type SummarizerConfig struct {
	MaxPromptChars int          `yaml:"max_prompt_chars"`
	Downsample     bool         `yaml:"downsample"`
	Prompts        PromptConfig `yaml:"prompts"`
}

// PromptPair is the system and user prompt of one completion call.
type PromptPair struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type PromptConfig struct {
	Session PromptPair `yaml:"session"`
	Chunk   PromptPair `yaml:"chunk"`
	Final   PromptPair `yaml:"final"`
	Multi   PromptPair `yaml:"multi"`
}

type WorkerConfig struct {
	CheckInterval       time.Duration `yaml:"check_interval"`
	InactivityThreshold time.Duration `yaml:"inactivity_threshold"`
	Concurrency         int           `yaml:"concurrency"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a configuration with every detector enabled and all
// thresholds at their defaults.
func Default() Config {
	var cfg Config
	cfg.Insights = DefaultInsights()
	applyDefaults(&cfg)
	return cfg
}

// DefaultInsights returns the behavior detector settings used when no
// configuration file is given.
func DefaultInsights() InsightsConfig {
	cfg := InsightsConfig{
		RageClick:   RageClickConfig{Enabled: true},
		DeadClick:   DeadClickConfig{Enabled: true, CountFocusBlur: true},
		MouseShake:  MouseShakeConfig{Enabled: true},
		ErrorClick:  ErrorClickConfig{Enabled: true},
		UTurn:       UTurnConfig{Enabled: true},
		SlowRequest: SlowRequestConfig{Enabled: true},
	}
	applyInsightsDefaults(&cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	// Keys missing from the file keep their Default() value.
	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Kafka.ConsumerGroup == "" {
		cfg.Kafka.ConsumerGroup = "session-summarizer"
	}
	if cfg.Kafka.Topics == nil {
		cfg.Kafka.Topics = map[string]string{}
	}
	if cfg.Kafka.Topics["session_ended"] == "" {
		cfg.Kafka.Topics["session_ended"] = "sessions.ended"
	}
	if cfg.Kafka.Topics["session_summarized"] == "" {
		cfg.Kafka.Topics["session_summarized"] = "sessions.summarized"
	}
	if cfg.ClickHouse.MaxOpenConns == 0 {
		cfg.ClickHouse.MaxOpenConns = 10
	}
	if cfg.ClickHouse.MaxIdleConns == 0 {
		cfg.ClickHouse.MaxIdleConns = 5
	}
	if cfg.Redis.RecordingTTL == 0 {
		cfg.Redis.RecordingTTL = 24 * time.Hour
	}
	if cfg.Postgres.MaxConns == 0 {
		cfg.Postgres.MaxConns = 10
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gemini-2.0-flash"
	}
	if cfg.LLM.EmbeddingModel == "" {
		cfg.LLM.EmbeddingModel = "text-embedding-004"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 2 * time.Minute
	}
	if cfg.LLM.BreakerFailures == 0 {
		cfg.LLM.BreakerFailures = 5
	}
	if cfg.LLM.BreakerTimeout == 0 {
		cfg.LLM.BreakerTimeout = 30 * time.Second
	}

	// 100k tokens at roughly 4 characters per token
	if cfg.Summarizer.MaxPromptChars == 0 {
		cfg.Summarizer.MaxPromptChars = 400000
	}
	applyPromptDefaults(&cfg.Summarizer.Prompts)

	if cfg.Worker.CheckInterval == 0 {
		cfg.Worker.CheckInterval = 30 * time.Second
	}
	if cfg.Worker.InactivityThreshold == 0 {
		cfg.Worker.InactivityThreshold = time.Minute
	}
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = 4
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8090"
	}

	applyInsightsDefaults(&cfg.Insights)
}

func applyInsightsDefaults(cfg *InsightsConfig) {
	if cfg.RageClick.MinClicks == 0 {
		cfg.RageClick.MinClicks = 5
	}
	if cfg.RageClick.TimeWindowMs == 0 {
		cfg.RageClick.TimeWindowMs = 1000
	}
	if cfg.DeadClick.ObservationWindowMs == 0 {
		cfg.DeadClick.ObservationWindowMs = 1000
	}
	if cfg.MouseShake.MinPositions == 0 {
		cfg.MouseShake.MinPositions = 8
	}
	if cfg.MouseShake.TimeoutMs == 0 {
		cfg.MouseShake.TimeoutMs = 5000
	}
	if cfg.MouseShake.SharpAngleDeg == 0 {
		cfg.MouseShake.SharpAngleDeg = 140
	}
	if cfg.MouseShake.MinSharpTurns == 0 {
		cfg.MouseShake.MinSharpTurns = 3
	}
	if cfg.ErrorClick.ErrorWindowMs == 0 {
		cfg.ErrorClick.ErrorWindowMs = 1000
	}
	if cfg.UTurn.MaxTimeAwayMs == 0 {
		cfg.UTurn.MaxTimeAwayMs = 10000
	}
	if cfg.SlowRequest.ThresholdMs == 0 {
		cfg.SlowRequest.ThresholdMs = 3000
	}
}
