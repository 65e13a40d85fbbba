package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// opentelemetry traces export
	TracingEnabled bool `toml:"tracing_enabled"`

	// postgres; the password normally comes in via POSTGRES_PASSWORD
	PostgresHost     string `toml:"postgres_host"`
	PostgresPort     string `toml:"postgres_port"`
	PostgresUser     string `toml:"postgres_user"`
	PostgresPassword string `toml:"postgres_password"`
	PostgresDBName   string `toml:"postgres_db_name"`
	PostgresMaxConns int32  `toml:"postgres_max_conns"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// maintenance jobs; cron expressions use the standard 5-field format
	ExpireGoalsSchedule        string `toml:"expire_goals_schedule"`
	UpdateGoalProgressSchedule string `toml:"update_goal_progress_schedule"`
	CleanupJobLogsSchedule     string `toml:"cleanup_job_logs_schedule"`
	JobLogRetentionDays        int    `toml:"job_log_retention_days"`

	// admin surface
	JobTriggerRateLimitAllowedPerMin int `toml:"job_trigger_rate_limit_allowed_per_min"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(path, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := tomlConfig.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env %s missing", env)
	}

	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ExpireGoalsSchedule == "" {
		c.ExpireGoalsSchedule = "0 2 * * *" // daily at 02:00
	}
	if c.UpdateGoalProgressSchedule == "" {
		c.UpdateGoalProgressSchedule = "0 */6 * * *" // every 6 hours
	}
	if c.CleanupJobLogsSchedule == "" {
		c.CleanupJobLogsSchedule = "0 3 * * 0" // weekly, sunday 03:00
	}
	if c.JobLogRetentionDays <= 0 {
		c.JobLogRetentionDays = 90
	}
	if c.JobTriggerRateLimitAllowedPerMin <= 0 {
		c.JobTriggerRateLimitAllowedPerMin = 10
	}
}
