package bodymetrics

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/fitsphere/fitsphere/internal/auth"
	"github.com/fitsphere/fitsphere/pkg"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const defaultRecentLimit = 30

//go:generate mockgen -source=handler.go -destination=handler_mocks_test.go -package=bodymetrics

type metricsRepo interface {
	Add(ctx context.Context, metric BodyMetric) (*BodyMetric, error)
	FindRecent(ctx context.Context, userID string, limit int) ([]BodyMetric, error)
}

type goalRefresher interface {
	RefreshUserGoals(ctx context.Context, userID string) error
}

type Handler struct {
	repo      metricsRepo
	refresher goalRefresher
}

func NewHandler(repo metricsRepo, refresher goalRefresher) *Handler {
	return &Handler{
		repo:      repo,
		refresher: refresher,
	}
}

type addMetricRequest struct {
	WeightKilos    *float64 `json:"weightKilos"`
	BodyFatPercent *float64 `json:"bodyFatPercent"`
	MeasuredAt     string   `json:"measuredAt"`
}

// HandleAdd stores a measurement and refreshes the caller's goals with it
// right away, so a weight goal reacts to a new scale entry without waiting
// for the recurring sweep.
func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.CallerFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req addMetricRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("add body metric, decode request: %s", err)
		http.Error(w, "invalid body metric", http.StatusBadRequest)
		return
	}

	if req.WeightKilos == nil && req.BodyFatPercent == nil {
		http.Error(w, "body metric needs a weight or a body fat value", http.StatusBadRequest)
		return
	}

	now := time.Now()
	metric := BodyMetric{
		ID:             uuid.NewString(),
		UserID:         caller.UserID,
		WeightKilos:    req.WeightKilos,
		BodyFatPercent: req.BodyFatPercent,
		MeasuredAt:     now,
		CreatedAt:      now,
	}
	if req.MeasuredAt != "" {
		measuredAt, err := time.Parse(time.RFC3339, req.MeasuredAt)
		if err != nil {
			http.Error(w, "invalid measuredAt", http.StatusBadRequest)
			return
		}
		metric.MeasuredAt = measuredAt
	}

	added, err := handler.repo.Add(r.Context(), metric)
	if err != nil {
		log.Errorf("add body metric for user %s: %s", caller.UserID, err)
		http.Error(w, "failed to add body metric", http.StatusInternalServerError)
		return
	}

	if err := handler.refresher.RefreshUserGoals(r.Context(), caller.UserID); err != nil {
		log.Errorf("body metric %s: refresh goals for user %s: %s", added.ID, caller.UserID, err)
	}

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("marshal body metric: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.CallerFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	limit := defaultRecentLimit
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	metrics, err := handler.repo.FindRecent(r.Context(), caller.UserID, limit)
	if err != nil {
		log.Errorf("list body metrics for user %s: %s", caller.UserID, err)
		http.Error(w, "failed to list body metrics", http.StatusInternalServerError)
		return
	}
	if metrics == nil {
		metrics = []BodyMetric{}
	}

	metricsJson, err := json.Marshal(metrics)
	if err != nil {
		log.Errorf("marshal body metrics: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, metricsJson, http.StatusOK)
}
