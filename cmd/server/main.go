// Package main implements the entry point for the taskpipe server, which
// accepts user text over HTTP, queues it for asynchronous AI processing,
// and serves each task's evolving status.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/taskpipe/internal/api"
	"github.com/phrazzld/taskpipe/internal/api/shared"
	"github.com/phrazzld/taskpipe/internal/config"
	"github.com/phrazzld/taskpipe/internal/platform/gemini"
	"github.com/phrazzld/taskpipe/internal/platform/logger"
	"github.com/phrazzld/taskpipe/internal/platform/postgres"
	"github.com/phrazzld/taskpipe/internal/queue"
	"github.com/phrazzld/taskpipe/internal/queue/amqp"
	"github.com/phrazzld/taskpipe/internal/queue/azurebus"
	"github.com/phrazzld/taskpipe/internal/service"
	"github.com/phrazzld/taskpipe/internal/task"
)

// shutdownTimeout bounds the graceful drain of the HTTP server and the
// broker client on termination.
const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Configuration and logging come first; a missing AI credential is a
	// fatal startup condition and surfaces here.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("broker_backend", cfg.Broker.Backend))

	// Database
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Warn("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	taskStore := postgres.NewPostgresTaskStore(db, appLogger)

	// Broker client, selected by configuration. The pipeline only ever
	// sees the queue.Client interface.
	broker, err := newBrokerClient(cfg.Broker, appLogger)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := broker.Close(closeCtx); err != nil {
			appLogger.Warn("failed to close broker client", slog.String("error", err.Error()))
		}
	}()

	// AI processor and consumer
	processor, err := gemini.NewGeminiProcessor(ctx, appLogger, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create AI processor: %w", err)
	}

	consumer, err := task.NewConsumer(taskStore, processor, cfg.LLM.Timeout(), appLogger)
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	if err := broker.Subscribe(ctx, consumer.HandleWorkItem); err != nil {
		return fmt.Errorf("failed to subscribe to queue: %w", err)
	}

	// Producer side and HTTP surface
	taskService, err := service.NewTaskService(taskStore, broker, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}

	router := newRouter(taskService)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
		appLogger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("HTTP server shutdown incomplete", slog.String("error", err.Error()))
	}

	return nil
}

// newBrokerClient builds the configured broker backend. Both backends
// satisfy the same contract; nothing downstream depends on the choice.
func newBrokerClient(cfg config.BrokerConfig, appLogger *slog.Logger) (queue.Client, error) {
	switch cfg.Backend {
	case config.BrokerBackendAMQP:
		return amqp.New(amqp.Config{URL: cfg.URL, Queue: cfg.Queue}, appLogger)
	case config.BrokerBackendAzureBus:
		return azurebus.New(azurebus.Config{ConnectionString: cfg.URL, Queue: cfg.Queue}, appLogger)
	default:
		return nil, fmt.Errorf("unknown broker backend %q", cfg.Backend)
	}
}

// newRouter assembles the HTTP routes with common middleware.
func newRouter(taskService service.TaskService) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(traceIDMiddleware)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		api.NewTaskHandler(taskService).Routes(r)
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		shared.RespondWithJSON(w, req, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// traceIDMiddleware attaches a trace ID to every request context for log
// and error correlation, plus a request-scoped logger carrying that ID so
// downstream layers pick it up via logger.FromContextOrDefault.
func traceIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		reqLogger := slog.Default().With(slog.String("trace_id", shared.GetTraceID(ctx)))
		ctx = logger.WithLogger(ctx, reqLogger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
