// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"adverse-media-agent/internal/common/camunda"
	"adverse-media-agent/internal/common/config"
	"adverse-media-agent/internal/common/logger"
	"adverse-media-agent/internal/common/observability"
	"adverse-media-agent/internal/screening"
	"adverse-media-agent/pkg/registry"

	ar "adverse-media-agent/internal/workers/screening/analyze-risk"
	ee "adverse-media-agent/internal/workers/screening/extract-entity"
	sam "adverse-media-agent/internal/workers/screening/search-adverse-media"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("backend", cfg.LLM.Backend))

	if err := cfg.ValidateForWorkers(); err != nil {
		zapLog.Fatal("invalid worker configuration", zap.Error(err))
	}

	obs := observability.New("adverse-media-worker-manager")
	defer obs.Shutdown()

	reg := loadRegistry(zapLog)

	agent, err := screening.NewAgent(screening.AgentConfigFromConfig(cfg), screening.WithLogger(log))
	if err != nil {
		zapLog.Fatal("screening agent setup failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Zeebe Client with retry ---
	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, zapLog)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	workers := camunda.NewWorkerGroup(zeebe.GetClient(), zapLog)

	// --- Screening Workers (3) ---
	extractHandler, err := ee.NewHandler(ee.HandlerOptions{
		Config:        ee.FromAppConfig(cfg),
		Agent:         agent,
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		zapLog.Fatal("failed to create extract-entity handler", zap.Error(err))
	}
	startActivity(workers, reg, cfg, ee.TaskType, extractHandler, zapLog)

	searchHandler, err := sam.NewHandler(sam.HandlerOptions{
		Config:        sam.FromAppConfig(cfg),
		Agent:         agent,
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		zapLog.Fatal("failed to create search-adverse-media handler", zap.Error(err))
	}
	startActivity(workers, reg, cfg, sam.TaskType, searchHandler, zapLog)

	analyzeHandler, err := ar.NewHandler(ar.HandlerOptions{
		Config:        ar.FromAppConfig(cfg),
		Agent:         agent,
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		zapLog.Fatal("failed to create analyze-risk handler", zap.Error(err))
	}
	startActivity(workers, reg, cfg, ar.TaskType, analyzeHandler, zapLog)

	zapLog.Info("Screening workers registered", zap.Strings("taskTypes", workers.TaskTypes()))

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           newHealthMux(zeebe, workers),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workers.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// loadRegistry reads ACTIVITY_REGISTRY_PATH when set and falls back to the
// embedded registry.
func loadRegistry(log *zap.Logger) *registry.ActivityRegistry {
	path := os.Getenv("ACTIVITY_REGISTRY_PATH")
	if path == "" {
		return registry.Default()
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry unreadable, using embedded registry", zap.String("path", path), zap.Error(err))
		return registry.Default()
	}
	return reg
}

// startActivity opens the worker for taskType if the registry lists it.
// Config values win over registry defaults.
func startActivity(workers *camunda.WorkerGroup, reg *registry.ActivityRegistry, cfg *config.Config, taskType string, handler camunda.JobHandler, log *zap.Logger) {
	activity, ok := reg.Find(taskType)
	if !ok {
		log.Warn("task type missing from activity registry, not starting", zap.String("taskType", taskType))
		return
	}

	wcfg := config.GetWorkerConfig(cfg, taskType)
	if _, configured := cfg.Workers[taskType]; !configured {
		wcfg.Timeout = int(activity.TimeoutDuration(config.GetDuration(wcfg.Timeout)).Milliseconds())
		wcfg.MaxRetries = activity.Retries
	}
	workers.Start(taskType, wcfg, handler, activity.FetchVariables...)
}
