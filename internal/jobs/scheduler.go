package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fitsphere/fitsphere/internal/metrics"
	"github.com/fitsphere/fitsphere/internal/telemetry/tracing"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type auditLog interface {
	Append(ctx context.Context, result Result) (*Result, error)
}

// JobConfig is the externally visible state of one job: its definition plus
// whether a recurring trigger is currently installed, and when it fires next.
type JobConfig struct {
	Definition
	Scheduled bool       `json:"scheduled"`
	NextRun   *time.Time `json:"nextRun,omitempty"`
}

// Scheduler owns the registered maintenance jobs and their recurring cron
// triggers. Executions are not mutually excluded, a manual trigger can run
// next to a scheduled one; the runners are written to tolerate that.
type Scheduler struct {
	cron           *cron.Cron
	defs           []Definition
	runners        map[string]Runner
	audit          auditLog
	metricsManager *metrics.Manager

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewScheduler(
	defs []Definition,
	runners map[string]Runner,
	audit auditLog,
	metricsManager *metrics.Manager,
) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		defs:           defs,
		runners:        runners,
		audit:          audit,
		metricsManager: metricsManager,
		entries:        make(map[string]cron.EntryID),
	}
}

// StartAll installs the recurring trigger for every enabled job and starts
// the cron loop. Jobs that already have a trigger are left alone.
func (s *Scheduler) StartAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, def := range s.defs {
		if !def.Enabled {
			continue
		}
		if _, scheduled := s.entries[def.Name]; scheduled {
			continue
		}
		if err := s.scheduleLocked(def); err != nil {
			log.Errorf("schedule job %s: %s", def.Name, err)
		}
	}

	s.cron.Start()
	log.Debugf("job scheduler started, %d jobs scheduled", len(s.entries))
}

// StopAll removes every recurring trigger and stops the cron loop. Runs
// already in flight are not interrupted.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, entryID := range s.entries {
		s.cron.Remove(entryID)
		delete(s.entries, name)
	}
	s.metricsManager.GaugeScheduledJobs.Set(0)

	s.cron.Stop()
	log.Debug("job scheduler stopped")
}

// StartJob installs the recurring trigger for one job. Returns false when
// the job is unknown or already scheduled.
func (s *Scheduler) StartJob(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.definition(name)
	if !ok {
		return false
	}
	if _, scheduled := s.entries[name]; scheduled {
		return false
	}

	if err := s.scheduleLocked(def); err != nil {
		log.Errorf("schedule job %s: %s", name, err)
		return false
	}

	s.cron.Start()
	return true
}

// StopJob removes the recurring trigger of one job. Returns false when no
// trigger was installed.
func (s *Scheduler) StopJob(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, scheduled := s.entries[name]
	if !scheduled {
		return false
	}

	s.cron.Remove(entryID)
	delete(s.entries, name)
	s.metricsManager.GaugeScheduledJobs.Set(float64(len(s.entries)))
	return true
}

// ExecuteJob runs a job immediately and records exactly one audit entry,
// whatever the outcome. An unknown job name is reported as a failed result,
// not an error.
func (s *Scheduler) ExecuteJob(ctx context.Context, name string) Result {
	ctx, span := tracing.GlobalTracer.Start(ctx, "jobsscheduler.executeJob")
	defer span.End()

	result := Result{
		JobName:   name,
		Status:    StatusRunning,
		StartTime: time.Now(),
	}

	runner, ok := s.runners[name]
	if !ok {
		result.Status = StatusFailure
		result.Error = fmt.Sprintf("unknown job: %s", name)
	} else {
		log.Debugf("job %s starting", name)
		itemsProcessed, message, err := runner.Run(ctx)
		if err != nil {
			result.Status = StatusFailure
			result.Error = err.Error()
		} else {
			result.Status = StatusSuccess
			result.Message = message
			result.ItemsProcessed = itemsProcessed
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	s.metricsManager.CounterJobRuns.WithLabelValues(name, string(result.Status)).Inc()
	s.metricsManager.HistJobDuration.WithLabelValues(name).Observe(result.Duration.Seconds())

	if _, err := s.audit.Append(ctx, result); err != nil {
		log.Errorf("job %s: append audit log: %s", name, err)
	}

	if result.Status == StatusFailure {
		log.Errorf("job %s failed after %s: %s", name, result.Duration, result.Error)
	} else {
		log.Debugf("job %s done in %s: %s", name, result.Duration, result.Message)
	}

	return result
}

// JobConfigs returns the state of every registered job.
func (s *Scheduler) JobConfigs() []JobConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs := make([]JobConfig, 0, len(s.defs))
	for _, def := range s.defs {
		config := JobConfig{Definition: def}
		if entryID, scheduled := s.entries[def.Name]; scheduled {
			config.Scheduled = true
			if next := s.cron.Entry(entryID).Next; !next.IsZero() {
				nextRun := next
				config.NextRun = &nextRun
			}
		}
		configs = append(configs, config)
	}

	return configs
}

func (s *Scheduler) scheduleLocked(def Definition) error {
	name := def.Name
	entryID, err := s.cron.AddFunc(def.Schedule, func() {
		s.ExecuteJob(context.Background(), name)
	})
	if err != nil {
		return fmt.Errorf("add cron entry for %s [%s]: %w", name, def.Schedule, err)
	}

	s.entries[name] = entryID
	s.metricsManager.GaugeScheduledJobs.Set(float64(len(s.entries)))
	return nil
}

func (s *Scheduler) definition(name string) (Definition, bool) {
	for _, def := range s.defs {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}
