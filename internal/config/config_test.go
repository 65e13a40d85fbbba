package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
environment = "development"
host = "localhost"
port = 8080
log_level = "trace"
log_to_stdout = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "fitsphere"

[production]
environment = "production"
host = "0.0.0.0"
port = 9000
log_level = "info"
logs_path = "/var/log/fitsphere/service"
postgres_host = "db"
postgres_port = "5432"
postgres_user = "fitsphere"
postgres_db_name = "fitsphere"
postgres_max_conns = 10
expire_goals_schedule = "30 1 * * *"
job_log_retention_days = 30
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigContent), 0o600))
	return path
}

func TestLoad_Development_Defaults(t *testing.T) {
	cfg, err := Load("development", writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "trace", cfg.LogLevel)

	// schedule defaults kick in when not set
	assert.Equal(t, "0 2 * * *", cfg.ExpireGoalsSchedule)
	assert.Equal(t, "0 */6 * * *", cfg.UpdateGoalProgressSchedule)
	assert.Equal(t, "0 3 * * 0", cfg.CleanupJobLogsSchedule)
	assert.Equal(t, 90, cfg.JobLogRetentionDays)
	assert.Equal(t, 10, cfg.JobTriggerRateLimitAllowedPerMin)
}

func TestLoad_Production_Overrides(t *testing.T) {
	cfg, err := Load("prod", writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "fitsphere", cfg.PostgresUser)
	assert.Equal(t, int32(10), cfg.PostgresMaxConns)
	assert.Equal(t, "30 1 * * *", cfg.ExpireGoalsSchedule)
	assert.Equal(t, 30, cfg.JobLogRetentionDays)
}

func TestLoad_UnknownEnv(t *testing.T) {
	_, err := Load("staging", writeTestConfig(t))
	require.Error(t, err)
}
