package goals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fitsphere/fitsphere/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrGoalNotFound = errors.New("goal not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Add(ctx context.Context, goal Goal) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goalsrepo.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	targetJson, err := json.Marshal(goal.Target)
	if err != nil {
		return nil, fmt.Errorf("marshal goal target: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO fitness_goal
			(id, user_id, type, title, description, target, start_value, current_value, current_progress, start_date, deadline, completed_at, status, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		goal.ID, goal.UserID, goal.Type, goal.Title, goal.Description, targetJson,
		goal.StartValue, goal.CurrentValue, goal.CurrentProgress,
		goal.StartDate, goal.Deadline, goal.CompletedAt, goal.Status, goal.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &goal, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goalsrepo.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT `+goalColumns+` FROM fitness_goal WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, err
	}

	found, err := rows2goals(rows)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrGoalNotFound
	}

	return &found[0], nil
}

func (r *Repo) ListForUser(ctx context.Context, userID string) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goalsrepo.listForUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT `+goalColumns+` FROM fitness_goal WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	return rows2goals(rows)
}

// FindActive returns every active goal, across all users. Used by the
// maintenance sweeps.
func (r *Repo) FindActive(ctx context.Context) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goalsrepo.findActive")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT `+goalColumns+` FROM fitness_goal WHERE status = $1 ORDER BY created_at`,
		StatusActive,
	)
	if err != nil {
		return nil, err
	}

	return rows2goals(rows)
}

func (r *Repo) FindActiveForUser(ctx context.Context, userID string) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goalsrepo.findActiveForUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx,
		`SELECT `+goalColumns+` FROM fitness_goal WHERE user_id = $1 AND status = $2 ORDER BY created_at`,
		userID, StatusActive,
	)
	if err != nil {
		return nil, err
	}

	return rows2goals(rows)
}

// Update persists the mutable part of a goal: progress fields, status and
// completion timestamp. Identity and target never change after creation.
func (r *Repo) Update(ctx context.Context, goal *Goal) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goalsrepo.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx,
		`UPDATE fitness_goal SET
			title = $2, description = $3,
			start_value = $4, current_value = $5, current_progress = $6,
			deadline = $7, completed_at = $8, status = $9
		WHERE id = $1`,
		goal.ID, goal.Title, goal.Description,
		goal.StartValue, goal.CurrentValue, goal.CurrentProgress,
		goal.Deadline, goal.CompletedAt, goal.Status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}

	return nil
}

// UpdateProgress writes only the progress fields; nil values keep whatever
// is stored.
func (r *Repo) UpdateProgress(ctx context.Context, id string, update ProgressUpdate) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goalsrepo.updateProgress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx,
		`UPDATE fitness_goal SET
			current_value = COALESCE($2, current_value),
			current_progress = COALESCE($3, current_progress)
		WHERE id = $1`,
		id, update.CurrentValue, update.CurrentProgress,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goalsrepo.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM fitness_goal WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}

	return nil
}

const goalColumns = `id, user_id, type, title, description, target, start_value, current_value, current_progress, start_date, deadline, completed_at, status, created_at`

func rows2goals(rows pgx.Rows) ([]Goal, error) {
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var (
			goal       Goal
			targetJson []byte
		)
		if err := rows.Scan(
			&goal.ID, &goal.UserID, &goal.Type, &goal.Title, &goal.Description, &targetJson,
			&goal.StartValue, &goal.CurrentValue, &goal.CurrentProgress,
			&goal.StartDate, &goal.Deadline, &goal.CompletedAt, &goal.Status, &goal.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan goal row: %w", err)
		}
		if len(targetJson) > 0 {
			if err := json.Unmarshal(targetJson, &goal.Target); err != nil {
				return nil, fmt.Errorf("unmarshal goal target: %w", err)
			}
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return goals, nil
}
