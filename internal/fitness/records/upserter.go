package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fitsphere/fitsphere/internal/metrics"
	"github.com/fitsphere/fitsphere/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const cacheExpireSeconds = 10 * 60

type recordsRepo interface {
	Find(ctx context.Context, userID, exerciseID string) (*PersonalRecord, error)
	Upsert(ctx context.Context, rec PersonalRecord) (*PersonalRecord, error)
	ListForUser(ctx context.Context, userID string) ([]PersonalRecord, error)
}

// UpsertResult tells the caller what happened to the record. IsNew is true
// only when no record existed for the exercise before; an improvement of an
// existing record is reported with Improved alone.
type UpsertResult struct {
	Record   *PersonalRecord `json:"record"`
	IsNew    bool            `json:"isNew"`
	Improved bool            `json:"improved"`
}

// Upserter maintains the one-record-per-exercise invariant and keeps a small
// read-through cache in front of the repo, record lookups happen on every
// workout completion and every strength goal refresh.
type Upserter struct {
	repo           recordsRepo
	cache          *freecache.Cache
	metricsManager *metrics.Manager
}

func NewUpserter(repo recordsRepo, cache *freecache.Cache, metricsManager *metrics.Manager) *Upserter {
	return &Upserter{
		repo:           repo,
		cache:          cache,
		metricsManager: metricsManager,
	}
}

// Find returns the user's record for an exercise, ErrRecordNotFound when
// none exists. Cache misses fall through to the repo.
func (u *Upserter) Find(ctx context.Context, userID, exerciseID string) (_ *PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recordsupserter.find")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	key := cacheKey(userID, exerciseID)
	if cached, cerr := u.cache.Get(key); cerr == nil {
		var rec PersonalRecord
		if jerr := json.Unmarshal(cached, &rec); jerr == nil {
			return &rec, nil
		}
		u.cache.Del(key)
	}

	rec, err := u.repo.Find(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}

	u.cacheSet(key, rec)

	return rec, nil
}

func (u *Upserter) ListForUser(ctx context.Context, userID string) ([]PersonalRecord, error) {
	return u.repo.ListForUser(ctx, userID)
}

// Upsert applies a record candidate. A candidate that does not supersede the
// stored record leaves it untouched and reports neither IsNew nor Improved.
func (u *Upserter) Upsert(ctx context.Context, userID string, candidate Candidate) (_ *UpsertResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recordsupserter.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if candidate.Kilos <= 0 || candidate.Reps <= 0 {
		return nil, fmt.Errorf("invalid record candidate: %.2f kg x %d", candidate.Kilos, candidate.Reps)
	}

	existing, err := u.repo.Find(ctx, userID, candidate.ExerciseID)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return nil, fmt.Errorf("find existing record: %w", err)
	}

	if existing != nil && !candidate.Supersedes(existing) {
		return &UpsertResult{Record: existing}, nil
	}

	now := time.Now()
	rec := PersonalRecord{
		ID:                 uuid.NewString(),
		UserID:             userID,
		ExerciseID:         candidate.ExerciseID,
		ExerciseName:       candidate.ExerciseName,
		Kilos:              candidate.Kilos,
		Reps:               candidate.Reps,
		AchievedAt:         candidate.AchievedAt,
		SourceCompletionID: candidate.SourceCompletionID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if existing != nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	}

	stored, err := u.repo.Upsert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("upsert record: %w", err)
	}

	u.cacheSet(cacheKey(userID, candidate.ExerciseID), stored)
	u.metricsManager.CounterPersonalRecords.Inc()

	log.Debugf(
		"personal record for user %s, exercise %s: %.2f kg x %d",
		userID, candidate.ExerciseID, stored.Kilos, stored.Reps,
	)

	return &UpsertResult{
		Record:   stored,
		IsNew:    existing == nil,
		Improved: existing != nil,
	}, nil
}

func (u *Upserter) cacheSet(key []byte, rec *PersonalRecord) {
	recJson, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := u.cache.Set(key, recJson, cacheExpireSeconds); err != nil {
		log.Tracef("personal records cache set: %s", err)
	}
}

func cacheKey(userID, exerciseID string) []byte {
	return []byte(userID + "|" + exerciseID)
}
