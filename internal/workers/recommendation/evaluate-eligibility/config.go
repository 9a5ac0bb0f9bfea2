// internal/workers/recommendation/evaluate-eligibility/config.go
package evaluateeligibility

import "time"

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}
