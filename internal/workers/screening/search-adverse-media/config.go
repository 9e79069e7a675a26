package searchadversemedia

import (
	"fmt"
	"time"

	"adverse-media-agent/internal/common/config"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       time.Minute,
	}
}

// FromAppConfig reads the worker's section of the application config.
func FromAppConfig(cfg *config.Config) *Config {
	out := DefaultConfig()
	if cfg == nil {
		return out
	}
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	out.Enabled = wcfg.Enabled
	if wcfg.MaxJobsActive > 0 {
		out.MaxJobsActive = wcfg.MaxJobsActive
	}
	if wcfg.Timeout > 0 {
		out.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return out
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	return nil
}
