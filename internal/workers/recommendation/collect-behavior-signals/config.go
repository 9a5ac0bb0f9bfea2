// internal/workers/recommendation/collect-behavior-signals/config.go
package collectbehaviorsignals

import (
	"time"

	"grant-workers/internal/recommendation/behavior"
)

type Config struct {
	Timeout time.Duration
	Window  time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
		Window:  behavior.DefaultWindow,
	}
}
