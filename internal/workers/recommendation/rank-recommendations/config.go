// internal/workers/recommendation/rank-recommendations/config.go
package rankrecommendations

import (
	"time"

	"grant-workers/internal/common/config"
)

type Config struct {
	Timeout         time.Duration
	SlowThreshold   time.Duration
	CandidateLimit  int
	CandidateSource string
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		SlowThreshold:   500 * time.Millisecond,
		CandidateLimit:  200,
		CandidateSource: config.CandidateSourcePostgres,
	}
}

// ConfigFromApp builds the worker config from the application config.
func ConfigFromApp(cfg *config.Config) *Config {
	c := DefaultConfig()
	if w, ok := cfg.Workers[TaskType]; ok && w.Timeout > 0 {
		c.Timeout = config.GetDuration(w.Timeout)
	}
	c.SlowThreshold = config.GetDuration(cfg.Recommendation.SlowThreshold)
	if cfg.Recommendation.CandidateLimit > 0 {
		c.CandidateLimit = cfg.Recommendation.CandidateLimit
	}
	if cfg.Recommendation.CandidateSource != "" {
		c.CandidateSource = cfg.Recommendation.CandidateSource
	}
	return c
}
