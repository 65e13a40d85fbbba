package bodymetrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/fitsphere/fitsphere/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMetricNotFound = errors.New("body metric not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Add(ctx context.Context, metric BodyMetric) (_ *BodyMetric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "bodymetricsrepo.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx,
		`INSERT INTO body_metric
			(id, user_id, weight_kilos, body_fat_percent, measured_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		metric.ID, metric.UserID, metric.WeightKilos, metric.BodyFatPercent,
		metric.MeasuredAt, metric.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &metric, nil
}

// FindRecent returns the user's measurements ordered most recent first.
func (r *Repo) FindRecent(ctx context.Context, userID string, limit int) (_ []BodyMetric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "bodymetricsrepo.findRecent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, weight_kilos, body_fat_percent, measured_at, created_at
		FROM body_metric
		WHERE user_id = $1
		ORDER BY measured_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}

	return rows2metrics(rows)
}

func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "bodymetricsrepo.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM body_metric WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMetricNotFound
	}

	return nil
}

func rows2metrics(rows pgx.Rows) ([]BodyMetric, error) {
	defer rows.Close()

	var metrics []BodyMetric
	for rows.Next() {
		var m BodyMetric
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.WeightKilos, &m.BodyFatPercent, &m.MeasuredAt, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan body metric row: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return metrics, nil
}
