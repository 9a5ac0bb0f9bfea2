// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"grant-workers/internal/common/camunda"
	"grant-workers/internal/common/config"
	"grant-workers/internal/common/database"
	"grant-workers/internal/common/errors"
	"grant-workers/internal/common/events"
	"grant-workers/internal/common/logger"
	"grant-workers/internal/common/observability"
	"grant-workers/internal/common/validation"
	"grant-workers/internal/recommendation/behavior"
	"grant-workers/internal/recommendation/eligibility"
	"grant-workers/internal/recommendation/ranker"
	"grant-workers/internal/recommendation/taxonomy"
	"grant-workers/internal/store"
	"grant-workers/pkg/registry"

	cbs "grant-workers/internal/workers/recommendation/collect-behavior-signals"
	ee "grant-workers/internal/workers/recommendation/evaluate-eligibility"
	mna "grant-workers/internal/workers/recommendation/match-new-announcements"
	rr "grant-workers/internal/workers/recommendation/rank-recommendations"
)

// candidateSource is satisfied by both the postgres store and the
// Elasticsearch source.
type candidateSource interface {
	rr.CandidateSource
	mna.CandidateSource
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync() //nolint:errcheck

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, nil, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Taxonomy and activity registry ---
	tx := taxonomy.Default()
	if cfg.Recommendation.TaxonomyPath != "" {
		tx, err = taxonomy.Load(cfg.Recommendation.TaxonomyPath)
		if err != nil {
			stdErr := errors.NewTaxonomyLoadError(cfg.Recommendation.TaxonomyPath, err)
			zapLog.Fatal(stdErr.Message, zap.String("errorCode", string(stdErr.Code)), zap.String("details", stdErr.Details))
		}
	}

	schemas := map[string]*validation.Schema{}
	if reg, err := registry.LoadRegistry(cfg.Registry.Path); err != nil {
		zapLog.Warn("activity registry unavailable, skipping schema validation", zap.String("path", cfg.Registry.Path), zap.Error(err))
	} else if schemas, err = reg.InputSchemas(); err != nil {
		zapLog.Fatal("activity registry schema invalid", zap.Error(err))
	}

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = camunda.RetryWithBackoff(ctx, func() error {
		var err error
		zeebe, err = camunda.NewClient(ctx, cfg.Camunda)
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = camunda.RetryWithBackoff(ctx, func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	rdb := database.NewRedis(cfg.Database.Redis)
	err = camunda.RetryWithBackoff(ctx, func() error {
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Candidate source ---
	var candidates candidateSource = store.NewAnnouncementStore(pg.DB)
	if cfg.Recommendation.CandidateSource == config.CandidateSourceElasticsearch {
		var es *database.ElasticsearchClient
		err = camunda.RetryWithBackoff(ctx, func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		candidates = store.NewSearchSource(es.Client, es.Index)
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", es.Index))
	}

	// --- Events ---
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		sns, err := events.NewSNSPublisher(ctx, cfg.Events.Region, cfg.Events.TopicARN)
		if err != nil {
			zapLog.Fatal("sns publisher init failed", zap.Error(err))
		}
		publisher = sns
		zapLog.Info("SNS publisher ready", zap.String("topic", sns.TopicARN()))
	}

	// --- Recommendation core ---
	companies := store.NewCompanyStore(pg.DB, rdb.Client, time.Duration(cfg.Recommendation.CompanyCacheTTL)*time.Second, log)
	interactions := store.NewInteractionStore(pg.DB)
	notifications := store.NewNotificationLog(pg.DB)
	evaluator := eligibility.NewEvaluator(tx)
	rk := ranker.New(evaluator, ranker.Options{
		MinScore:    cfg.Recommendation.MinScore,
		Limit:       cfg.Recommendation.Limit,
		Parallelism: cfg.Recommendation.Parallelism,
	})
	collector := behavior.NewCollector(interactions, log, behavior.WithWindow(cfg.Recommendation.BehaviorWindow()))

	// --- Workers ---
	pool := camunda.NewWorkerPool(zeebe.GetClient(), log)

	eeHandler := ee.NewHandler(
		&ee.Config{Timeout: config.GetDuration(config.GetWorkerConfig(cfg, ee.TaskType).Timeout)},
		evaluator, schemas[ee.TaskType], log,
	)
	pool.Start(ee.TaskType, config.GetWorkerConfig(cfg, ee.TaskType), eeHandler.Handle)

	cbsHandler := cbs.NewHandler(
		&cbs.Config{
			Timeout: config.GetDuration(config.GetWorkerConfig(cfg, cbs.TaskType).Timeout),
			Window:  cfg.Recommendation.BehaviorWindow(),
		},
		interactions, schemas[cbs.TaskType], log,
	)
	pool.Start(cbs.TaskType, config.GetWorkerConfig(cfg, cbs.TaskType), cbsHandler.Handle)

	rrHandler := rr.NewHandler(rr.ConfigFromApp(cfg), rr.Dependencies{
		Companies:     companies,
		Candidates:    candidates,
		Behavior:      collector,
		Ranker:        rk,
		Schema:        schemas[rr.TaskType],
		Observability: obs,
	}, log)
	pool.Start(rr.TaskType, config.GetWorkerConfig(cfg, rr.TaskType), rrHandler.Handle)

	mnaHandler := mna.NewHandler(mna.ConfigFromApp(cfg), mna.Dependencies{
		Companies:     companies,
		Candidates:    candidates,
		Notifications: notifications,
		Publisher:     publisher,
		Ranker:        rk,
		Schema:        schemas[mna.TaskType],
	}, log)
	pool.Start(mna.TaskType, config.GetWorkerConfig(cfg, mna.TaskType), mnaHandler.Handle)

	zapLog.Info("workers registered", zap.Strings("running", pool.Running()))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"time": time.Now().Format(time.RFC3339)}
		status := http.StatusOK
		for name, check := range map[string]func(context.Context) error{
			"zeebe":    zeebe.HealthCheck,
			"postgres": pg.Ping,
			"redis":    rdb.Ping,
		} {
			if err := check(checkCtx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		if status == http.StatusOK {
			checks["status"] = "ready"
		} else {
			checks["status"] = "not_ready"
		}
		writeStatus(w, status, checks)
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
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
