package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"matching-workers/internal/common/aws"
	"matching-workers/internal/common/camunda"
	"matching-workers/internal/common/config"
	"matching-workers/internal/common/database"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/common/observability"
	"matching-workers/internal/common/validation"
	"matching-workers/internal/matching"
	"matching-workers/internal/repository"
	"matching-workers/pkg/registry"

	er "matching-workers/internal/workers/matching/explain-recommendation"
	gr "matching-workers/internal/workers/matching/generate-recommendations"
	srd "matching-workers/internal/workers/matching/send-recommendation-digest"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting matching worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.TraceSampleRate, log)
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			zapLog.Error("observability shutdown failed", zap.Error(err))
		}
	}()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(ctx, camunda.ClientConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if cfg.Database.Postgres.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			zapLog.Fatal("schema migration failed", zap.Error(err))
		}
	}

	// --- Candidate source ---
	var source repository.CandidateSource = repository.NewPostgresCandidateRepository(pg.DB, log)
	var esClient *database.ElasticsearchClient
	if cfg.Matching.CandidateSource == config.CandidateSourceElasticsearch {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		esSource := repository.NewElasticsearchCandidateRepository(esClient.Client, cfg.Database.Elasticsearch.CandidateIndex, log)
		if err := esSource.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("failed to prepare candidate index", zap.Error(err))
		}
		source = esSource
		zapLog.Info("Elasticsearch connected successfully")
	}

	var redisClient *database.RedisClient
	if cfg.Matching.CandidateCacheTTL > 0 {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		source = repository.NewCachedCandidateRepository(source, redisClient.Client, config.GetDuration(cfg.Matching.CandidateCacheTTL), log)
		zapLog.Info("Redis connected successfully")
	}

	// --- Engine ---
	engineCfg, err := cfg.Matching.EngineConfig()
	if err != nil {
		zapLog.Fatal("invalid matching config", zap.Error(err))
	}
	results := repository.NewPostgresResultStore(pg.DB, log)
	engine, err := matching.NewEngine(engineCfg, source, results, log)
	if err != nil {
		zapLog.Fatal("failed to create matching engine", zap.Error(err))
	}

	// --- Activity registry ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Warn("activity registry not loaded, input schemas disabled", zap.String("path", cfg.Registry.Path), zap.Error(err))
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("invalid activity registry", zap.Error(err))
	}

	// --- Notifications ---
	var publisher gr.EventPublisher
	if cfg.Notifications.SNS.Enabled {
		sns, err := aws.NewSNSClient(ctx, cfg.Notifications.SNS.Region, cfg.Notifications.SNS.TopicARN)
		if err != nil {
			zapLog.Fatal("failed to create SNS client", zap.Error(err))
		}
		publisher = sns
	}

	var mailer srd.Mailer
	if cfg.Notifications.SES.Enabled {
		ses, err := aws.NewSESClient(ctx, cfg.Notifications.SES.Region, cfg.Notifications.SES.FromEmail)
		if err != nil {
			zapLog.Fatal("failed to create SES client", zap.Error(err))
		}
		mailer = ses
	}

	// --- Workers ---
	var workers []*camunda.CamundaWorker
	if wcfg := config.GetWorkerConfig(cfg, gr.TaskType); wcfg.Enabled {
		handler := gr.NewHandler(
			&gr.Config{
				Timeout:          config.GetDuration(wcfg.Timeout),
				AlgorithmVersion: engineCfg.AlgorithmVersion,
				PublishEvents:    publisher != nil,
			},
			engine, publisher, validator, obs, log,
		)
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), gr.TaskType, wcfg, handler.Handle, log))
	}

	if wcfg := config.GetWorkerConfig(cfg, er.TaskType); wcfg.Enabled {
		handler := er.NewHandler(
			&er.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			engine, validator, obs, log,
		)
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), er.TaskType, wcfg, handler.Handle, log))
	}

	if wcfg := config.GetWorkerConfig(cfg, srd.TaskType); wcfg.Enabled {
		if mailer == nil {
			zapLog.Warn("digest worker enabled without SES, skipping", zap.String("taskType", srd.TaskType))
		} else {
			digestCfg := srd.DefaultConfig()
			digestCfg.Timeout = config.GetDuration(wcfg.Timeout)
			handler := srd.NewHandler(digestCfg, results, mailer, validator, obs, log)
			workers = append(workers, camunda.NewWorker(zeebe.GetClient(), srd.TaskType, wcfg, handler.Handle, log))
		}
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		check := func(name string, fn func(context.Context) error) {
			if err := fn(checkCtx); err != nil {
				checks[name] = err.Error()
				ready = false
				return
			}
			checks[name] = "ok"
		}
		check("zeebe", zeebe.HealthCheck)
		check("postgres", pg.Ping)
		if redisClient != nil {
			check("redis", redisClient.Ping)
		}
		if esClient != nil {
			check("elasticsearch", esClient.Ping)
		}

		if !ready {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", checks)
			return
		}
		writeStatus(w, http.StatusOK, "ready", checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.App.HTTPAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.App.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, status string, checks map[string]string) {
	body := map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if checks != nil {
		body["checks"] = checks
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
