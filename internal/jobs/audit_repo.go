package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/fitsphere/fitsphere/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// deleteBatchSize bounds a single cleanup DELETE so the sweep never holds a
// long lock over the whole log table.
const deleteBatchSize = 500

type AuditRepo struct {
	db *pgxpool.Pool
}

func NewAuditRepo(db *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Append(ctx context.Context, result Result) (_ *Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "jobsauditrepo.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx,
		`INSERT INTO job_log
			(job_name, status, start_time, end_time, duration_ms, items_processed, message, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		result.JobName, result.Status, result.StartTime, result.EndTime,
		result.Duration.Milliseconds(), result.ItemsProcessed, result.Message, result.Error,
		time.Now(),
	).Scan(&result.ID)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *AuditRepo) Recent(ctx context.Context, limit int) (_ []Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "jobsauditrepo.recent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT `+jobLogColumns+` FROM job_log ORDER BY start_time DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}

	return rows2results(rows)
}

func (r *AuditRepo) ForJob(ctx context.Context, jobName string, limit int) (_ []Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "jobsauditrepo.forJob")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT `+jobLogColumns+` FROM job_log WHERE job_name = $1 ORDER BY start_time DESC LIMIT $2`,
		jobName, limit,
	)
	if err != nil {
		return nil, err
	}

	return rows2results(rows)
}

// DeleteOlderThan removes log entries started before the cutoff, in batches.
// Returns the total number of deleted rows.
func (r *AuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "jobsauditrepo.deleteOlderThan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	total := 0
	for {
		tag, err := r.db.Exec(ctx,
			`DELETE FROM job_log WHERE id IN (
				SELECT id FROM job_log WHERE start_time < $1 LIMIT $2
			)`,
			cutoff, deleteBatchSize,
		)
		if err != nil {
			return total, err
		}

		deleted := int(tag.RowsAffected())
		total += deleted
		if deleted < deleteBatchSize {
			return total, nil
		}
	}
}

const jobLogColumns = `id, job_name, status, start_time, end_time, duration_ms, items_processed, message, error`

func rows2results(rows pgx.Rows) ([]Result, error) {
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			res        Result
			durationMs int64
		)
		if err := rows.Scan(
			&res.ID, &res.JobName, &res.Status, &res.StartTime, &res.EndTime,
			&durationMs, &res.ItemsProcessed, &res.Message, &res.Error,
		); err != nil {
			return nil, fmt.Errorf("scan job log row: %w", err)
		}
		res.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
