// internal/workers/recommendation/generate-timeline/config.go
package generatetimeline

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 150 * time.Second,
	}
}

// WithTimeoutMillis overrides Timeout when ms is positive.
func (c *Config) WithTimeoutMillis(ms int) *Config {
	if ms > 0 {
		c.Timeout = time.Duration(ms) * time.Millisecond
	}
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
