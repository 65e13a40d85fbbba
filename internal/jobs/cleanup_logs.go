package jobs

import (
	"context"
	"fmt"
	"time"
)

type auditCleaner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// CleanupJobLogsJob deletes job execution logs older than the retention
// period.
type CleanupJobLogsJob struct {
	audit     auditCleaner
	retention time.Duration
}

func NewCleanupJobLogsJob(audit auditCleaner, retention time.Duration) *CleanupJobLogsJob {
	return &CleanupJobLogsJob{
		audit:     audit,
		retention: retention,
	}
}

func (j *CleanupJobLogsJob) Run(ctx context.Context) (int, string, error) {
	cutoff := time.Now().Add(-j.retention)
	deleted, err := j.audit.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return deleted, "", fmt.Errorf("delete old job logs: %w", err)
	}

	return deleted, fmt.Sprintf("deleted %d job log entries older than %s", deleted, cutoff.Format(time.RFC3339)), nil
}
