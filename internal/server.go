package internal

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/fitsphere/fitsphere/internal/config"
	"github.com/fitsphere/fitsphere/internal/db"
	"github.com/fitsphere/fitsphere/internal/fitness/bodymetrics"
	"github.com/fitsphere/fitsphere/internal/fitness/goals"
	"github.com/fitsphere/fitsphere/internal/fitness/records"
	"github.com/fitsphere/fitsphere/internal/fitness/workouts"
	"github.com/fitsphere/fitsphere/internal/jobs"
	"github.com/fitsphere/fitsphere/internal/metrics"
	"github.com/fitsphere/fitsphere/internal/middleware"
	"github.com/fitsphere/fitsphere/pkg"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

const recordsCacheSize = 10 * 1024 * 1024

type Server struct {
	cfg      *config.Config
	dbPool   *pgxpool.Pool
	rdb      *redis.Client
	registry *prometheus.Registry

	metricsManager *metrics.Manager
	scheduler      *jobs.Scheduler

	goalsHandler       *goals.Handler
	recordsHandler     *records.Handler
	bodyMetricsHandler *bodymetrics.Handler
	workoutsHandler    *workouts.Handler
	jobsHandler        *jobs.Handler

	httpServer    *http.Server
	metricsServer *http.Server

	lifeSignalQuit chan struct{}
}

func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		Host:           cfg.PostgresHost,
		Port:           cfg.PostgresPort,
		User:           cfg.PostgresUser,
		Password:       cfg.PostgresPassword,
		DBName:         cfg.PostgresDBName,
		MaxConns:       cfg.PostgresMaxConns,
		TracingEnabled: cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
	})
	if status := rdb.Ping(ctx); status.Err() != nil {
		log.Errorf("redis ping: %s", status.Err())
	}

	pgxPoolCollector := pgxpoolprometheus.NewCollector(dbPool, map[string]string{"db_name": cfg.PostgresDBName})
	registry := metrics.SetupPrometheus(pgxPoolCollector)
	metricsManager := metrics.NewManager("fitsphere", "backend", registry)

	goalsRepo := goals.NewRepo(dbPool)
	recordsRepo := records.NewRepo(dbPool)
	bodyMetricsRepo := bodymetrics.NewRepo(dbPool)
	workoutsRepo := workouts.NewRepo(dbPool)
	auditRepo := jobs.NewAuditRepo(dbPool)

	recordsCache := freecache.NewCache(recordsCacheSize)
	upserter := records.NewUpserter(recordsRepo, recordsCache, metricsManager)
	refresher := goals.NewRefresher(goalsRepo, bodyMetricsRepo, upserter, workoutsRepo, metricsManager)
	workoutsService := workouts.NewService(workoutsRepo, upserter, refresher, metricsManager)

	scheduler := jobs.NewScheduler(
		jobs.Definitions(jobs.Schedules{
			ExpireGoals:        cfg.ExpireGoalsSchedule,
			UpdateGoalProgress: cfg.UpdateGoalProgressSchedule,
			CleanupOldLogs:     cfg.CleanupJobLogsSchedule,
		}),
		map[string]jobs.Runner{
			jobs.JobExpireGoals:        jobs.NewExpireGoalsJob(goalsRepo, metricsManager),
			jobs.JobUpdateGoalProgress: jobs.NewUpdateGoalProgressJob(goalsRepo, refresher),
			jobs.JobCleanupOldLogs:     jobs.NewCleanupJobLogsJob(auditRepo, time.Duration(cfg.JobLogRetentionDays)*24*time.Hour),
		},
		auditRepo,
		metricsManager,
	)

	s := &Server{
		cfg:            cfg,
		dbPool:         dbPool,
		rdb:            rdb,
		registry:       registry,
		metricsManager: metricsManager,
		scheduler:      scheduler,

		goalsHandler:       goals.NewHandler(goalsRepo, refresher),
		recordsHandler:     records.NewHandler(upserter),
		bodyMetricsHandler: bodymetrics.NewHandler(bodyMetricsRepo, refresher),
		workoutsHandler:    workouts.NewHandler(workoutsService),
		jobsHandler:        jobs.NewHandler(scheduler, auditRepo),

		lifeSignalQuit: make(chan struct{}),
	}

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	router := mux.NewRouter()

	router.Use(otelmux.Middleware("fitsphere-backend"))
	router.Use(middleware.PanicRecovery(s.metricsManager))
	router.Use(middleware.LogRequest())
	router.Use(middleware.RequestMetrics(s.metricsManager))
	router.Use(middleware.Cors())
	router.Use(middleware.CallerContext())
	router.Use(middleware.DrainAndCloseRequest())

	router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteJSONResponseOK(w, `{"ping":"pong"}`)
	}).Methods("GET")

	goalsRouter := router.PathPrefix("/api/goals").Subrouter()
	goalsRouter.HandleFunc("", s.goalsHandler.HandleAdd).Methods("POST", "OPTIONS")
	goalsRouter.HandleFunc("", s.goalsHandler.HandleList).Methods("GET", "OPTIONS")
	goalsRouter.HandleFunc("/{id}", s.goalsHandler.HandleGet).Methods("GET")
	goalsRouter.HandleFunc("/{id}", s.goalsHandler.HandleUpdate).Methods("PUT", "OPTIONS")
	goalsRouter.HandleFunc("/{id}", s.goalsHandler.HandleDelete).Methods("DELETE", "OPTIONS")
	goalsRouter.HandleFunc("/{id}/complete", s.goalsHandler.HandleComplete).Methods("POST", "OPTIONS")
	goalsRouter.HandleFunc("/{id}/abandon", s.goalsHandler.HandleAbandon).Methods("POST", "OPTIONS")
	goalsRouter.HandleFunc("/{id}/refresh", s.goalsHandler.HandleRefresh).Methods("POST", "OPTIONS")

	recordsRouter := router.PathPrefix("/api/records").Subrouter()
	recordsRouter.HandleFunc("", s.recordsHandler.HandleList).Methods("GET", "OPTIONS")
	recordsRouter.HandleFunc("/{exerciseId}", s.recordsHandler.HandleGet).Methods("GET")

	bodyMetricsRouter := router.PathPrefix("/api/body-metrics").Subrouter()
	bodyMetricsRouter.HandleFunc("", s.bodyMetricsHandler.HandleAdd).Methods("POST", "OPTIONS")
	bodyMetricsRouter.HandleFunc("", s.bodyMetricsHandler.HandleList).Methods("GET", "OPTIONS")

	workoutsRouter := router.PathPrefix("/api/workouts").Subrouter()
	workoutsRouter.HandleFunc("/completions", s.workoutsHandler.HandleComplete).Methods("POST", "OPTIONS")
	workoutsRouter.HandleFunc("/completions", s.workoutsHandler.HandleList).Methods("GET", "OPTIONS")

	jobsRouter := router.PathPrefix("/api/admin/jobs").Subrouter()
	jobsRouter.Use(middleware.AdminOnly())
	jobsRouter.HandleFunc("", s.jobsHandler.HandleList).Methods("GET", "OPTIONS")
	jobsRouter.HandleFunc("/logs", s.jobsHandler.HandleLogs).Methods("GET", "OPTIONS")
	jobsRouter.HandleFunc("/{name}/start", s.jobsHandler.HandleStart).Methods("POST", "OPTIONS")
	jobsRouter.HandleFunc("/{name}/stop", s.jobsHandler.HandleStop).Methods("POST", "OPTIONS")
	jobsRouter.HandleFunc("/{name}/logs", s.jobsHandler.HandleLogs).Methods("GET", "OPTIONS")

	rateLimitTrigger := middleware.RateLimit(
		redis_rate.NewLimiter(s.rdb),
		"jobs-trigger",
		s.cfg.JobTriggerRateLimitAllowedPerMin,
	)
	jobsRouter.Handle(
		"/{name}/trigger",
		rateLimitTrigger(http.HandlerFunc(s.jobsHandler.HandleTrigger)),
	).Methods("POST", "OPTIONS")

	return router
}

// Serve starts the API server, the prometheus metrics server and the job
// scheduler. Blocks until the http listener dies.
func (s *Server) Serve() {
	router := s.routerSetup()

	s.scheduler.StartAll()
	s.serveMetrics()
	s.startLifeSignal()

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	s.httpServer = &http.Server{
		Handler:           router,
		Addr:              addr,
		WriteTimeout:      15 * time.Second,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Infof(" > server listening on: [%s]", addr)
	log.Fatal(s.httpServer.ListenAndServe())
}

func (s *Server) serveMetrics() {
	metricsAddr := net.JoinHostPort(s.cfg.PrometheusMetricsHost, s.cfg.PrometheusMetricsPort)
	metricsRouter := mux.NewRouter()
	metricsRouter.Path("/metrics").Handler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.metricsServer = &http.Server{
		Handler:           metricsRouter,
		Addr:              metricsAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof(" > metrics server listening on: [%s]", metricsAddr)
		if err := s.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("metrics server: %s", err)
		}
	}()
}

func (s *Server) startLifeSignal() {
	go func() {
		s.metricsManager.GaugeLifeSignal.Set(1)
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.metricsManager.GaugeLifeSignal.Set(1)
			case <-s.lifeSignalQuit:
				s.metricsManager.GaugeLifeSignal.Set(0)
				return
			}
		}
	}()
}

func (s *Server) GracefulShutdown(ctx context.Context) {
	log.Debug("graceful shutdown initiated ...")

	s.scheduler.StopAll()
	close(s.lifeSignalQuit)

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Errorf("http server shutdown: %s", err)
		}
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			log.Errorf("metrics server shutdown: %s", err)
		}
	}

	if err := s.rdb.Close(); err != nil {
		log.Errorf("close redis client: %s", err)
	}
	s.dbPool.Close()

	log.Debug("graceful shutdown done")
}
