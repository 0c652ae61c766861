// internal/workers/recommendation/load-cached-recommendation/config.go
package loadcachedrecommendation

import "time"

type Config struct {
	Timeout time.Duration
	// FailOnMiss throws CACHE_NOT_FOUND instead of completing with found=false.
	FailOnMiss bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

// WithTimeoutMillis overrides Timeout when ms is positive.
func (c *Config) WithTimeoutMillis(ms int) *Config {
	if ms > 0 {
		c.Timeout = time.Duration(ms) * time.Millisecond
	}
	return c
}
