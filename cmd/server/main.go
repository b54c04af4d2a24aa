// capture-gateway is the server-side counterpart of the document capture
// review UI: versioned storage of extracted invoice data, line-item editing,
// version comparison, exception reporting, and reviewer administration.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"capture-gateway/internal/document/cache"
	dochandler "capture-gateway/internal/document/handler"
	docmetrics "capture-gateway/internal/document/metrics"
	docservice "capture-gateway/internal/document/service"
	versionstore "capture-gateway/internal/document/store/version"
	"capture-gateway/internal/jwttoken"
	"capture-gateway/internal/platform/config"
	"capture-gateway/internal/platform/httpserver"
	"capture-gateway/internal/platform/logger"
	"capture-gateway/internal/platform/metrics"
	"capture-gateway/internal/platform/redis"
	revhandler "capture-gateway/internal/reviewer/handler"
	revservice "capture-gateway/internal/reviewer/service"
	reviewerstore "capture-gateway/internal/reviewer/store/reviewer"
	"capture-gateway/pkg/platform/audit"
	auditkafka "capture-gateway/pkg/platform/audit/kafka"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		versions  docservice.Store
		reviewers revservice.Store
	)
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("pgx", cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		versions = versionstore.NewPostgres(db)
		reviewers = reviewerstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		versions = versionstore.NewInMemory()
		reviewers = reviewerstore.NewInMemory()
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("snapshot cache enabled", "ttl", cfg.SnapshotCacheTTL)
	}

	// Audit sink: Kafka behind an async queue when brokers are configured,
	// log-only otherwise.
	var (
		publisher  audit.Publisher
		auditQueue *audit.Queue
	)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := auditkafka.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer kafkaPublisher.Close()
		auditQueue = audit.NewQueue(kafkaPublisher, 256, log)
		publisher = auditQueue
		log.Info("audit events publishing to kafka", "topic", cfg.Kafka.Topic)
	} else {
		log.Warn("KAFKA_BROKERS not set, audit events go to the log only")
	}

	platformMetrics := metrics.New()
	documentMetrics := docmetrics.New()

	documents, err := docservice.New(versions,
		docservice.WithLogger(log),
		docservice.WithCache(cache.New(redisClient, cfg.SnapshotCacheTTL, log)),
		docservice.WithAuditPublisher(publisher),
		docservice.WithMetrics(documentMetrics),
	)
	if err != nil {
		return err
	}
	reviewerAdmin, err := revservice.New(reviewers,
		revservice.WithLogger(log),
		revservice.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}

	validator := jwttoken.NewValidator(cfg.Server.JWTSigningKey)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler())
	dochandler.New(documents, log, platformMetrics, validator).Register(router)
	revhandler.New(reviewerAdmin, log, platformMetrics, cfg.Server.AdminToken).Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	if auditQueue != nil {
		g.Go(func() error {
			if err := auditQueue.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		log.Info("starting capture-gateway", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
