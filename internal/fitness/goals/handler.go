package goals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fitsphere/fitsphere/internal/auth"
	"github.com/fitsphere/fitsphere/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type goalsStore interface {
	Add(ctx context.Context, goal Goal) (*Goal, error)
	Get(ctx context.Context, id string) (*Goal, error)
	ListForUser(ctx context.Context, userID string) ([]Goal, error)
	Update(ctx context.Context, goal *Goal) error
	Delete(ctx context.Context, id string) error
}

type goalRefresher interface {
	RefreshGoal(ctx context.Context, goal *Goal) (bool, error)
}

type Handler struct {
	repo      goalsStore
	refresher goalRefresher
}

func NewHandler(repo goalsStore, refresher goalRefresher) *Handler {
	return &Handler{
		repo:      repo,
		refresher: refresher,
	}
}

type addGoalRequest struct {
	Type        Type     `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Target      Target   `json:"target"`
	StartValue  *float64 `json:"startValue"`
	Deadline    string   `json:"deadline"`
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.CallerFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req addGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("add goal, decode request: %s", err)
		http.Error(w, "invalid goal", http.StatusBadRequest)
		return
	}

	deadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		http.Error(w, "invalid deadline", http.StatusBadRequest)
		return
	}

	now := time.Now()
	goal := Goal{
		ID:          uuid.NewString(),
		UserID:      caller.UserID,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Target:      req.Target,
		StartValue:  req.StartValue,
		// until the first refresh, the current value is the starting one
		CurrentValue: req.StartValue,
		StartDate:    now,
		Deadline:     deadline,
		Status:       StatusActive,
		CreatedAt:    now,
	}

	if err := validateNewGoal(goal); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.repo.Add(r.Context(), goal)
	if err != nil {
		log.Errorf("add goal for user %s: %s", caller.UserID, err)
		http.Error(w, "failed to add goal", http.StatusInternalServerError)
		return
	}

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("marshal added goal: %s", err)
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

	goals, err := handler.repo.ListForUser(r.Context(), caller.UserID)
	if err != nil {
		log.Errorf("list goals for user %s: %s", caller.UserID, err)
		http.Error(w, "failed to list goals", http.StatusInternalServerError)
		return
	}
	if goals == nil {
		goals = []Goal{}
	}

	goalsJson, err := json.Marshal(goals)
	if err != nil {
		log.Errorf("marshal goals: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, goalsJson, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	goal, ok := handler.ownedGoal(w, r)
	if !ok {
		return
	}

	goalJson, err := json.Marshal(goal)
	if err != nil {
		log.Errorf("marshal goal: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, goalJson, http.StatusOK)
}

type updateGoalRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	StartValue      *float64 `json:"startValue"`
	CurrentValue    *float64 `json:"currentValue"`
	CurrentProgress *float64 `json:"currentProgress"`
	Deadline        *string  `json:"deadline"`
}

// HandleUpdate applies owner edits to a goal: title, description, values,
// progress and deadline. Absent fields keep their stored value; type, target
// and status never change here. Manual progress edits are how custom goals
// get their progress at all.
func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	goal, ok := handler.ownedGoal(w, r)
	if !ok {
		return
	}

	if goal.IsTerminal() {
		http.Error(w, "goal is final", http.StatusConflict)
		return
	}

	var req updateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("update goal %s, decode request: %s", goal.ID, err)
		http.Error(w, "invalid goal update", http.StatusBadRequest)
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			http.Error(w, "goal title missing", http.StatusBadRequest)
			return
		}
		goal.Title = *req.Title
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	if req.StartValue != nil {
		goal.StartValue = req.StartValue
	}
	if req.CurrentValue != nil {
		goal.CurrentValue = req.CurrentValue
	}
	if req.CurrentProgress != nil {
		progress := clampPercent(*req.CurrentProgress)
		goal.CurrentProgress = &progress
	}
	if req.Deadline != nil {
		deadline, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			http.Error(w, "invalid deadline", http.StatusBadRequest)
			return
		}
		goal.Deadline = deadline
	}

	if err := handler.repo.Update(r.Context(), goal); err != nil {
		log.Errorf("update goal %s: %s", goal.ID, err)
		http.Error(w, "failed to update goal", http.StatusInternalServerError)
		return
	}

	goalJson, err := json.Marshal(goal)
	if err != nil {
		log.Errorf("marshal goal: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, goalJson, http.StatusOK)
}

// HandleComplete marks a goal completed. Completing an already-completed
// goal succeeds without touching the stored completion timestamp.
func (handler *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	handler.handleTransition(w, r, StatusCompleted)
}

func (handler *Handler) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	handler.handleTransition(w, r, StatusAbandoned)
}

func (handler *Handler) handleTransition(w http.ResponseWriter, r *http.Request, to Status) {
	goal, ok := handler.ownedGoal(w, r)
	if !ok {
		return
	}

	alreadyThere := goal.Status == to
	if err := Transition(goal, to, time.Now()); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	if !alreadyThere {
		if err := handler.repo.Update(r.Context(), goal); err != nil {
			log.Errorf("store goal %s transition to %s: %s", goal.ID, to, err)
			http.Error(w, "failed to update goal", http.StatusInternalServerError)
			return
		}
	}

	goalJson, err := json.Marshal(goal)
	if err != nil {
		log.Errorf("marshal goal: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, goalJson, http.StatusOK)
}

// HandleRefresh recomputes the goal's progress on demand and returns the
// fresh state.
func (handler *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	goal, ok := handler.ownedGoal(w, r)
	if !ok {
		return
	}

	if _, err := handler.refresher.RefreshGoal(r.Context(), goal); err != nil {
		log.Errorf("refresh goal %s: %s", goal.ID, err)
		http.Error(w, "failed to refresh goal", http.StatusInternalServerError)
		return
	}

	goalJson, err := json.Marshal(goal)
	if err != nil {
		log.Errorf("marshal goal: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, goalJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	goal, ok := handler.ownedGoal(w, r)
	if !ok {
		return
	}

	if err := handler.repo.Delete(r.Context(), goal.ID); err != nil {
		log.Errorf("delete goal %s: %s", goal.ID, err)
		http.Error(w, "failed to delete goal", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, []byte(`{"deleted":true}`), http.StatusOK)
}

// ownedGoal loads the goal from the path and enforces ownership. Goals of
// other users look like missing ones on purpose.
func (handler *Handler) ownedGoal(w http.ResponseWriter, r *http.Request) (*Goal, bool) {
	caller, err := auth.CallerFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	goalID := mux.Vars(r)["id"]
	if goalID == "" {
		http.Error(w, "goal id missing", http.StatusBadRequest)
		return nil, false
	}

	goal, err := handler.repo.Get(r.Context(), goalID)
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			http.Error(w, "goal not found", http.StatusNotFound)
			return nil, false
		}
		log.Errorf("get goal %s: %s", goalID, err)
		http.Error(w, "error", http.StatusInternalServerError)
		return nil, false
	}

	if goal.UserID != caller.UserID && !caller.IsAdmin() {
		http.Error(w, "goal not found", http.StatusNotFound)
		return nil, false
	}

	return goal, true
}

func validateNewGoal(goal Goal) error {
	if goal.Title == "" {
		return errors.New("goal title missing")
	}

	switch goal.Type {
	case TypeWeight:
		if goal.Target.Weight == nil {
			return errors.New("weight goal needs a target weight")
		}
	case TypeBodyFat:
		if goal.Target.BodyFat == nil {
			return errors.New("body fat goal needs a target percentage")
		}
	case TypeStrength:
		target := goal.Target.Strength
		if target == nil || target.ExerciseID == "" || target.Kilos <= 0 || target.Reps <= 0 {
			return errors.New("strength goal needs an exercise, weight and reps")
		}
	case TypeWorkoutFrequency:
		target := goal.Target.Frequency
		if target == nil || (target.PerWeek == nil && target.PerMonth == nil) {
			return errors.New("frequency goal needs a weekly or monthly target")
		}
		if target.PerWeek != nil && target.PerMonth != nil {
			return errors.New("frequency goal needs exactly one of weekly or monthly target")
		}
	case TypeCustom:
		// no computed progress, nothing to check
	default:
		return errors.New("unknown goal type")
	}

	return nil
}
