// internal/workers/recommendation/get-suggestions/config.go
package getsuggestions

import (
	"time"

	"course-workers/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	PublishTimeout time.Duration
}

// LoadConfig derives handler settings from the worker's configuration.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:        config.GetDuration(wcfg.Timeout),
		PublishTimeout: 2 * time.Second,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return cfg
}
