package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/fitsphere/fitsphere/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRecordNotFound = errors.New("personal record not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Find(ctx context.Context, userID, exerciseID string) (_ *PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recordsrepo.find")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT `+recordColumns+` FROM personal_record WHERE user_id = $1 AND exercise_id = $2`,
		userID, exerciseID,
	)
	if err != nil {
		return nil, err
	}

	found, err := rows2records(rows)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrRecordNotFound
	}

	return &found[0], nil
}

func (r *Repo) ListForUser(ctx context.Context, userID string) (_ []PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recordsrepo.listForUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT `+recordColumns+` FROM personal_record WHERE user_id = $1 ORDER BY exercise_name`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	return rows2records(rows)
}

// Upsert inserts the record, or replaces the stored one for the same
// (user, exercise) pair. The superseding decision is made by the caller.
func (r *Repo) Upsert(ctx context.Context, rec PersonalRecord) (_ *PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recordsrepo.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx,
		`INSERT INTO personal_record
			(id, user_id, exercise_id, exercise_name, kilos, reps, achieved_at, source_completion_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, exercise_id) DO UPDATE SET
			exercise_name = EXCLUDED.exercise_name,
			kilos = EXCLUDED.kilos,
			reps = EXCLUDED.reps,
			achieved_at = EXCLUDED.achieved_at,
			source_completion_id = EXCLUDED.source_completion_id,
			updated_at = EXCLUDED.updated_at`,
		rec.ID, rec.UserID, rec.ExerciseID, rec.ExerciseName, rec.Kilos, rec.Reps,
		rec.AchievedAt, rec.SourceCompletionID, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

const recordColumns = `id, user_id, exercise_id, exercise_name, kilos, reps, achieved_at, source_completion_id, created_at, updated_at`

func rows2records(rows pgx.Rows) ([]PersonalRecord, error) {
	defer rows.Close()

	var recs []PersonalRecord
	for rows.Next() {
		var rec PersonalRecord
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.ExerciseID, &rec.ExerciseName, &rec.Kilos, &rec.Reps,
			&rec.AchievedAt, &rec.SourceCompletionID, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan personal record row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}
