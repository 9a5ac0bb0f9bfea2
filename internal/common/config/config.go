// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App            AppConfig               `mapstructure:"app"`
	Camunda        CamundaConfig           `mapstructure:"camunda"`
	Database       DatabaseConfig          `mapstructure:"database"`
	Workers        map[string]WorkerConfig `mapstructure:"workers"`
	Logging        LoggingConfig           `mapstructure:"logging"`
	Recommendation RecommendationConfig    `mapstructure:"recommendation"`
	Digest         DigestConfig            `mapstructure:"digest"`
	Events         EventsConfig            `mapstructure:"events"`
	Metrics        MetricsConfig           `mapstructure:"metrics"`
	Registry       RegistryConfig          `mapstructure:"registry"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Candidate sources for the ranking worker.
const (
	CandidateSourcePostgres      = "postgres"
	CandidateSourceElasticsearch = "elasticsearch"
)

// RecommendationConfig tunes the scoring pipeline.
type RecommendationConfig struct {
	MinScore           *int   `mapstructure:"min_score" validate:"omitempty,gte=0,lte=135"` // nil uses 50, 0 keeps all
	Limit              int    `mapstructure:"limit" validate:"gte=1,lte=100"`
	CandidateLimit     int    `mapstructure:"candidate_limit" validate:"gte=1,lte=5000"`
	CandidateSource    string `mapstructure:"candidate_source" validate:"oneof=postgres elasticsearch"`
	Parallelism        int    `mapstructure:"parallelism" validate:"gte=0,lte=256"`
	BehaviorWindowDays int    `mapstructure:"behavior_window_days" validate:"gte=1,lte=365"`
	CompanyCacheTTL    int    `mapstructure:"company_cache_ttl" validate:"gte=0"` // seconds
	TaxonomyPath       string `mapstructure:"taxonomy_path"`
	SlowThreshold      int    `mapstructure:"slow_threshold" validate:"gte=0"` // milliseconds
}

// BehaviorWindow returns the lookback for behavior collection.
func (r RecommendationConfig) BehaviorWindow() time.Duration {
	return time.Duration(r.BehaviorWindowDays) * 24 * time.Hour
}

// DigestConfig holds settings for the new-announcement matching job.
type DigestConfig struct {
	LookbackHours int  `mapstructure:"lookback_hours" validate:"gte=1,lte=720"`
	Limit         int  `mapstructure:"limit" validate:"gte=1,lte=50"`
	MinScore      *int `mapstructure:"min_score" validate:"omitempty,gte=0,lte=135"` // nil uses 70
}

// EventsConfig holds the SNS settings for recommendation events.
type EventsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic_arn" validate:"required_if=Enabled true"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// RegistryConfig points at the activity registry used for input validation.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}
