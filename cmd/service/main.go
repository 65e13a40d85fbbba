package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitsphere/fitsphere/internal"
	"github.com/fitsphere/fitsphere/internal/config"
	"github.com/fitsphere/fitsphere/internal/logging"
	"github.com/fitsphere/fitsphere/internal/telemetry/tracing"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment: development or production")
	configPath := flag.String("config", "config.toml", "path to the toml config file")
	logFileName := flag.String("logfile", "", "log file name, empty for stdout only")
	logToStdout := flag.Bool("stdout", true, "also write logs to stdout")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		fmt.Printf("load config: %s\n", err)
		os.Exit(1)
	}

	// overridable via env for containerized deployments
	if postgresHost := os.Getenv("POSTGRES_HOST"); postgresHost != "" {
		cfg.PostgresHost = postgresHost
	}
	if postgresPassword := os.Getenv("POSTGRES_PASSWORD"); postgresPassword != "" {
		cfg.PostgresPassword = postgresPassword
	}
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		cfg.RedisHost = redisHost
	}

	logFilePath := *logFileName
	if logFilePath != "" && cfg.LogsPath != "" {
		logFilePath = cfg.LogsPath + "/" + logFilePath
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      logFilePath,
		LogToStdout:      *logToStdout || cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.Environment == "production",
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "fitsphere-backend",
	})

	tracingShutdown, err := tracing.HoneycombSetup(cfg.TracingEnabled, "fitsphere-backend")
	if err != nil {
		log.Fatalf("honeycomb setup: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := internal.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	go server.Serve()

	<-ctx.Done()
	log.Warn("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	server.GracefulShutdown(shutdownCtx)

	tracingShutdown()
	sentry.Flush(2 * time.Second)
}
