package records

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fitsphere/fitsphere/internal/auth"
	"github.com/fitsphere/fitsphere/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	upserter *Upserter
}

func NewHandler(upserter *Upserter) *Handler {
	return &Handler{upserter: upserter}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.CallerFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	recs, err := handler.upserter.ListForUser(r.Context(), caller.UserID)
	if err != nil {
		log.Errorf("list records for user %s: %s", caller.UserID, err)
		http.Error(w, "failed to list personal records", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []PersonalRecord{}
	}

	recsJson, err := json.Marshal(recs)
	if err != nil {
		log.Errorf("marshal records: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, recsJson, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.CallerFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	exerciseID := mux.Vars(r)["exerciseId"]
	if exerciseID == "" {
		http.Error(w, "exercise id missing", http.StatusBadRequest)
		return
	}

	rec, err := handler.upserter.Find(r.Context(), caller.UserID, exerciseID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			http.Error(w, "personal record not found", http.StatusNotFound)
			return
		}
		log.Errorf("get record for user %s, exercise %s: %s", caller.UserID, exerciseID, err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	recJson, err := json.Marshal(rec)
	if err != nil {
		log.Errorf("marshal record: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, recJson, http.StatusOK)
}
