package workouts

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fitsphere/fitsphere/internal/auth"
	"github.com/fitsphere/fitsphere/pkg"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type completeWorkoutRequest struct {
	CompletedAt     string              `json:"completedAt"`
	DurationMinutes int                 `json:"durationMinutes"`
	Exercises       []CompletedExercise `json:"exercises"`
}

func (handler *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.CallerFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req completeWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("complete workout, decode request: %s", err)
		http.Error(w, "invalid workout completion", http.StatusBadRequest)
		return
	}

	for _, exercise := range req.Exercises {
		if exercise.ExerciseID == "" {
			http.Error(w, "exercise id missing", http.StatusBadRequest)
			return
		}
		if len(exercise.Reps) != len(exercise.Kilos) {
			http.Error(w, "exercise reps and kilos length mismatch", http.StatusBadRequest)
			return
		}
	}

	completion := Completion{
		UserID:          caller.UserID,
		DurationMinutes: req.DurationMinutes,
		Exercises:       req.Exercises,
	}
	if req.CompletedAt != "" {
		completedAt, err := time.Parse(time.RFC3339, req.CompletedAt)
		if err != nil {
			http.Error(w, "invalid completedAt", http.StatusBadRequest)
			return
		}
		completion.CompletedAt = completedAt
	}

	result, err := handler.service.CompleteWorkout(r.Context(), completion)
	if err != nil {
		log.Errorf("complete workout for user %s: %s", caller.UserID, err)
		http.Error(w, "failed to store workout completion", http.StatusInternalServerError)
		return
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("marshal workout completion result: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultJson, http.StatusCreated)
}

// HandleList returns the caller's completions in the requested window,
// defaulting to the trailing 30 days.
func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.CallerFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now
	if rawFrom := r.URL.Query().Get("from"); rawFrom != "" {
		parsed, err := time.Parse(time.RFC3339, rawFrom)
		if err != nil {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		from = parsed
	}
	if rawTo := r.URL.Query().Get("to"); rawTo != "" {
		parsed, err := time.Parse(time.RFC3339, rawTo)
		if err != nil {
			http.Error(w, "invalid to", http.StatusBadRequest)
			return
		}
		to = parsed
	}

	completions, err := handler.service.ListInWindow(r.Context(), caller.UserID, from, to)
	if err != nil {
		log.Errorf("list workout completions for user %s: %s", caller.UserID, err)
		http.Error(w, "failed to list workout completions", http.StatusInternalServerError)
		return
	}
	if completions == nil {
		completions = []Completion{}
	}

	completionsJson, err := json.Marshal(completions)
	if err != nil {
		log.Errorf("marshal workout completions: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, completionsJson, http.StatusOK)
}
