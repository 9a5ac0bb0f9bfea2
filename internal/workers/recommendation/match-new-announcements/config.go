// internal/workers/recommendation/match-new-announcements/config.go
package matchnewannouncements

import (
	"time"

	"grant-workers/internal/common/config"
)

type Config struct {
	Timeout         time.Duration
	Lookback        time.Duration
	Limit           int
	MinScore        int
	CandidateLimit  int
	CandidateSource string
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		Lookback:        24 * time.Hour,
		Limit:           5,
		MinScore:        70,
		CandidateLimit:  200,
		CandidateSource: config.CandidateSourcePostgres,
	}
}

func ConfigFromApp(cfg *config.Config) *Config {
	c := DefaultConfig()
	if w, ok := cfg.Workers[TaskType]; ok && w.Timeout > 0 {
		c.Timeout = config.GetDuration(w.Timeout)
	}
	if cfg.Digest.LookbackHours > 0 {
		c.Lookback = time.Duration(cfg.Digest.LookbackHours) * time.Hour
	}
	if cfg.Digest.Limit > 0 {
		c.Limit = cfg.Digest.Limit
	}
	if cfg.Digest.MinScore != nil {
		c.MinScore = *cfg.Digest.MinScore
	}
	if cfg.Recommendation.CandidateLimit > 0 {
		c.CandidateLimit = cfg.Recommendation.CandidateLimit
	}
	if cfg.Recommendation.CandidateSource != "" {
		c.CandidateSource = cfg.Recommendation.CandidateSource
	}
	return c
}
