package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fitsphere/fitsphere/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrCompletionNotFound = errors.New("workout completion not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Add(ctx context.Context, completion Completion) (_ *Completion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsrepo.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exercisesJson, err := json.Marshal(completion.Exercises)
	if err != nil {
		return nil, fmt.Errorf("marshal completion exercises: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO workout_completion
			(id, user_id, completed_at, duration_minutes, exercises, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		completion.ID, completion.UserID, completion.CompletedAt,
		completion.DurationMinutes, exercisesJson, completion.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &completion, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *Completion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsrepo.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT `+completionColumns+` FROM workout_completion WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, err
	}

	found, err := rows2completions(rows)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrCompletionNotFound
	}

	return &found[0], nil
}

func (r *Repo) ListInWindow(ctx context.Context, userID string, from, to time.Time) (_ []Completion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsrepo.listInWindow")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT `+completionColumns+`
		FROM workout_completion
		WHERE user_id = $1 AND completed_at >= $2 AND completed_at <= $3
		ORDER BY completed_at DESC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}

	return rows2completions(rows)
}

// CountInWindow counts the user's completions inside a trailing window,
// feeding the workout frequency progress.
func (r *Repo) CountInWindow(ctx context.Context, userID string, from, to time.Time) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workoutsrepo.countInWindow")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*)
		FROM workout_completion
		WHERE user_id = $1 AND completed_at >= $2 AND completed_at <= $3`,
		userID, from, to,
	).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

const completionColumns = `id, user_id, completed_at, duration_minutes, exercises, created_at`

func rows2completions(rows pgx.Rows) ([]Completion, error) {
	defer rows.Close()

	var completions []Completion
	for rows.Next() {
		var (
			c             Completion
			exercisesJson []byte
		)
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.CompletedAt, &c.DurationMinutes, &exercisesJson, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan workout completion row: %w", err)
		}
		if len(exercisesJson) > 0 {
			if err := json.Unmarshal(exercisesJson, &c.Exercises); err != nil {
				return nil, fmt.Errorf("unmarshal completion exercises: %w", err)
			}
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return completions, nil
}
