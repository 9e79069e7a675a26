package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile reads a single config file, without the environment merge.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	// LLM_BACKEND overrides llm.backend, SEARCH_TAVILY_API_KEY overrides search.tavily.api_key.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env", // tests in test/e2e/
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			// Load never overwrites variables already set in the environment.
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideEmptyConfig fills credentials and endpoints from the conventional
// variable names used by the hosted services.
func overrideEmptyConfig(cfg *Config) {
	if val := os.Getenv("LLM_BACKEND"); val != "" {
		cfg.LLM.Backend = val
	}

	if cfg.LLM.Groq.APIKey == "" {
		cfg.LLM.Groq.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.Search.Tavily.APIKey == "" {
		cfg.Search.Tavily.APIKey = os.Getenv("TAVILY_API_KEY")
	}

	if val := os.Getenv("OLLAMA_BASE_URL"); val != "" {
		cfg.LLM.Ollama.BaseURL = val
	}
	if val := os.Getenv("OLLAMA_MODEL"); val != "" {
		cfg.LLM.Ollama.Model = val
	}

	if val := os.Getenv("REDIS_ADDRESS"); val != "" {
		cfg.Quota.Redis.Address = val
	}
	if val := os.Getenv("ZEEBE_ADDRESS"); val != "" && cfg.Camunda.BrokerAddress == "" {
		cfg.Camunda.BrokerAddress = val
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "adverse-media-agent"
	}

	// LLM defaults
	if cfg.LLM.Backend == "" {
		cfg.LLM.Backend = BackendOllama
	}
	cfg.LLM.Backend = strings.ToLower(strings.TrimSpace(cfg.LLM.Backend))
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 120000
	}
	if cfg.LLM.Ollama.BaseURL == "" {
		cfg.LLM.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.LLM.Ollama.Model == "" {
		cfg.LLM.Ollama.Model = "llama3.2"
	}
	if cfg.LLM.Groq.BaseURL == "" {
		cfg.LLM.Groq.BaseURL = "https://api.groq.com/openai"
	}
	if cfg.LLM.Groq.Model == "" {
		cfg.LLM.Groq.Model = "llama-3.3-70b-versatile"
	}

	// Search defaults
	if cfg.Search.Tavily.BaseURL == "" {
		cfg.Search.Tavily.BaseURL = "https://api.tavily.com"
	}
	if cfg.Search.Tavily.Timeout == 0 {
		cfg.Search.Tavily.Timeout = 30000
	}

	// Quota defaults
	if cfg.Quota.Backend == "" {
		cfg.Quota.Backend = QuotaBackendFile
	}
	if cfg.Quota.Path == "" {
		cfg.Quota.Path = "api_usage.json"
	}
	if cfg.Quota.Key == "" {
		cfg.Quota.Key = "adverse-media:api-usage"
	}
	if cfg.Quota.MaxRequests == 0 {
		cfg.Quota.MaxRequests = 50
	}

	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":8080"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 120000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig checks shape only. Missing credentials are reported by the
// agent constructor so that commands which never call a backend still run.
func validateConfig(cfg *Config) error {
	switch cfg.LLM.Backend {
	case BackendOllama, BackendGroq:
	default:
		return fmt.Errorf("llm.backend must be %q or %q, got %q", BackendOllama, BackendGroq, cfg.LLM.Backend)
	}

	switch cfg.Quota.Backend {
	case QuotaBackendFile:
	case QuotaBackendRedis:
		if cfg.Quota.Enabled && cfg.Quota.Redis.Address == "" {
			return fmt.Errorf("quota.redis.address is required when quota.backend is redis")
		}
	default:
		return fmt.Errorf("quota.backend must be %q or %q, got %q", QuotaBackendFile, QuotaBackendRedis, cfg.Quota.Backend)
	}

	if cfg.Quota.MaxRequests < 0 {
		return fmt.Errorf("quota.max_requests must not be negative")
	}
	return nil
}

// ValidateForWorkers checks the settings only the worker manager needs.
func (c *Config) ValidateForWorkers() error {
	if c.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	return nil
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       120000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
