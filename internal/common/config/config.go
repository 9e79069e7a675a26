package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig               `mapstructure:"app"`
	LLM     LLMConfig               `mapstructure:"llm"`
	Search  SearchConfig            `mapstructure:"search"`
	Quota   QuotaConfig             `mapstructure:"quota"`
	Camunda CamundaConfig           `mapstructure:"camunda"`
	Workers map[string]WorkerConfig `mapstructure:"workers"`
	Metrics MetricsConfig           `mapstructure:"metrics"`
	Logging LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// Supported text-generation backends.
const (
	BackendOllama = "ollama"
	BackendGroq   = "groq"
)

// LLMConfig selects and configures the text-generation backend.
type LLMConfig struct {
	Backend     string       `mapstructure:"backend"`
	Timeout     int          `mapstructure:"timeout"` // milliseconds
	Temperature float64      `mapstructure:"temperature"`
	Ollama      OllamaConfig `mapstructure:"ollama"`
	Groq        GroqConfig   `mapstructure:"groq"`
}

type OllamaConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type GroqConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// SearchConfig configures the web-search backend.
type SearchConfig struct {
	Tavily TavilyConfig `mapstructure:"tavily"`
}

type TavilyConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// Supported request-counter backends.
const (
	QuotaBackendFile  = "file"
	QuotaBackendRedis = "redis"
)

// QuotaConfig configures the shared request counter used by the CLI.
type QuotaConfig struct {
	Enabled     bool        `mapstructure:"enabled"`
	Backend     string      `mapstructure:"backend"`
	Path        string      `mapstructure:"path"`
	Key         string      `mapstructure:"key"`
	MaxRequests int64       `mapstructure:"max_requests"`
	Redis       RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// LLMTimeout returns the generation timeout as a duration.
func (c *Config) LLMTimeout() time.Duration {
	return GetDuration(c.LLM.Timeout)
}

// SearchTimeout returns the web-search timeout as a duration.
func (c *Config) SearchTimeout() time.Duration {
	return GetDuration(c.Search.Tavily.Timeout)
}
