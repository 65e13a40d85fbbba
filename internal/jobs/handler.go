package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fitsphere/fitsphere/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const defaultLogsLimit = 50

type jobScheduler interface {
	JobConfigs() []JobConfig
	ExecuteJob(ctx context.Context, name string) Result
	StartJob(name string) bool
	StopJob(name string) bool
}

type auditLogReader interface {
	Recent(ctx context.Context, limit int) ([]Result, error)
	ForJob(ctx context.Context, jobName string, limit int) ([]Result, error)
}

// Handler is the admin surface over the job scheduler and its audit log.
type Handler struct {
	scheduler jobScheduler
	audit     auditLogReader
}

func NewHandler(scheduler jobScheduler, audit auditLogReader) *Handler {
	return &Handler{
		scheduler: scheduler,
		audit:     audit,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	configsJson, err := json.Marshal(handler.scheduler.JobConfigs())
	if err != nil {
		log.Errorf("marshal job configs: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, configsJson, http.StatusOK)
}

// HandleTrigger runs a job synchronously and returns its result. The HTTP
// status is 200 even for a failed run, the result carries the outcome.
func (handler *Handler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	jobName := mux.Vars(r)["name"]
	if jobName == "" {
		http.Error(w, "job name missing", http.StatusBadRequest)
		return
	}

	result := handler.scheduler.ExecuteJob(r.Context(), jobName)

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("marshal job result: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultJson, http.StatusOK)
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	jobName := mux.Vars(r)["name"]
	if jobName == "" {
		http.Error(w, "job name missing", http.StatusBadRequest)
		return
	}

	started := handler.scheduler.StartJob(jobName)
	pkg.WriteResponseBytes(
		w, pkg.ContentType.JSON,
		[]byte(`{"started":`+strconv.FormatBool(started)+`}`),
		http.StatusOK,
	)
}

func (handler *Handler) HandleStop(w http.ResponseWriter, r *http.Request) {
	jobName := mux.Vars(r)["name"]
	if jobName == "" {
		http.Error(w, "job name missing", http.StatusBadRequest)
		return
	}

	stopped := handler.scheduler.StopJob(jobName)
	pkg.WriteResponseBytes(
		w, pkg.ContentType.JSON,
		[]byte(`{"stopped":`+strconv.FormatBool(stopped)+`}`),
		http.StatusOK,
	)
}

func (handler *Handler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := logsLimit(w, r)
	if !ok {
		return
	}

	var (
		results []Result
		err     error
	)
	if jobName := mux.Vars(r)["name"]; jobName != "" {
		results, err = handler.audit.ForJob(r.Context(), jobName, limit)
	} else {
		results, err = handler.audit.Recent(r.Context(), limit)
	}
	if err != nil {
		log.Errorf("list job logs: %s", err)
		http.Error(w, "failed to list job logs", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []Result{}
	}

	resultsJson, err := json.Marshal(results)
	if err != nil {
		log.Errorf("marshal job logs: %s", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultsJson, http.StatusOK)
}

func logsLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	rawLimit := r.URL.Query().Get("limit")
	if rawLimit == "" {
		return defaultLogsLimit, true
	}

	limit, err := strconv.Atoi(rawLimit)
	if err != nil || limit <= 0 {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return 0, false
	}
	return limit, true
}
