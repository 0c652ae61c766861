package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"automation-advisor/internal/bootstrap"
	"automation-advisor/internal/common/camunda"
	"automation-advisor/internal/common/config"
	"automation-advisor/internal/common/database"
	"automation-advisor/internal/common/logger"
	"automation-advisor/internal/common/observability"
	"automation-advisor/pkg/registry"

	gt "automation-advisor/internal/workers/recommendation/generate-timeline"
	gw "automation-advisor/internal/workers/recommendation/generate-workflows"
	lcr "automation-advisor/internal/workers/recommendation/load-cached-recommendation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}
	if err := config.ValidateForWorkers(cfg); err != nil {
		zap.NewExample().Fatal("invalid worker configuration", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("observability init failed, job metrics disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe client ---
	zeebe, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client creation failed", zap.Error(err))
	}
	err = database.WaitReady(ctx, zeebe, 2*time.Minute, func(err error, next time.Duration) {
		zapLog.Warn("Zeebe gateway not ready, retrying...", zap.Error(err), zap.Duration("nextRetryIn", next))
	})
	if err != nil {
		zapLog.Fatal("zeebe gateway unreachable", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Cache, index, providers, pipeline ---
	components, err := bootstrap.Build(ctx, cfg, log, bootstrap.Options{ReadyTimeout: 2 * time.Minute})
	if err != nil {
		zapLog.Fatal("pipeline bootstrap failed", zap.Error(err))
	}
	defer components.Close()
	if !components.Registry.Configured() {
		zapLog.Warn("No generation provider configured; generation jobs will report setupRequired")
	}

	activities := loadActivities(cfg.App.ActivityRegistry, zapLog)

	// --- Workers ---
	var workers []*camunda.CamundaWorker

	if config.IsWorkerEnabled(cfg, gw.TaskType) {
		wc := config.GetWorkerConfig(cfg, gw.TaskType)
		wcfg := gw.LoadConfig().WithTimeoutMillis(wc.Timeout)
		handler := gw.NewHandler(wcfg, components.Pipeline, log)
		workers = append(workers, startWorker(zeebe, gw.TaskType, wc, handler.Handle, obs, activities, log))
	}

	if config.IsWorkerEnabled(cfg, gt.TaskType) {
		wc := config.GetWorkerConfig(cfg, gt.TaskType)
		wcfg := gt.LoadConfig().WithTimeoutMillis(wc.Timeout)
		handler := gt.NewHandler(wcfg, components.Pipeline, log)
		workers = append(workers, startWorker(zeebe, gt.TaskType, wc, handler.Handle, obs, activities, log))
	}

	if config.IsWorkerEnabled(cfg, lcr.TaskType) {
		wc := config.GetWorkerConfig(cfg, lcr.TaskType)
		wcfg := lcr.LoadConfig().WithTimeoutMillis(wc.Timeout)
		handler := lcr.NewHandler(wcfg, components.Pipeline, log)
		workers = append(workers, startWorker(zeebe, lcr.TaskType, wc, handler.Handle, obs, activities, log))
	}

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		failures := components.Ready(checkCtx)
		if err := zeebe.Ping(checkCtx); err != nil {
			failures["zeebe"] = err.Error()
		}
		if len(failures) > 0 {
			writeStatus(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":   "not_ready",
				"failures": failures,
				"time":     time.Now().Format(time.RFC3339),
			})
			return
		}
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status":    "ready",
			"providers": components.Registry.Names(),
			"time":      time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping observability", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(
	zeebe *camunda.Client,
	taskType string,
	wc config.WorkerConfig,
	handler worker.JobHandler,
	obs *observability.Observability,
	activities *registry.ActivityRegistry,
	log logger.Logger,
) *camunda.CamundaWorker {
	if activities != nil {
		if _, ok := activities.Find(taskType); !ok {
			log.Warn("task type missing from activity registry", map[string]interface{}{"taskType": taskType})
		}
	}
	return camunda.StartWorker(zeebe.GetClient(), taskType, wc, handler, obs, log)
}

// loadActivities returns nil when no registry is configured or it is invalid.
func loadActivities(path string, zapLog *zap.Logger) *registry.ActivityRegistry {
	if path == "" {
		return nil
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		zapLog.Warn("activity registry not loaded", zap.String("path", path), zap.Error(err))
		return nil
	}
	if err := reg.Validate(); err != nil {
		zapLog.Warn("activity registry invalid", zap.String("path", path), zap.Error(err))
		return nil
	}
	return reg
}

func writeStatus(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
