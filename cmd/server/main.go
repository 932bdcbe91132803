package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"veriseq/internal/campaign"
	campaignMetrics "veriseq/internal/campaign/metrics"
	jwttoken "veriseq/internal/jwt_token"
	"veriseq/internal/ledger"
	"veriseq/internal/platform/config"
	"veriseq/internal/platform/httpserver"
	"veriseq/internal/platform/logger"
	"veriseq/internal/platform/metrics"
	"veriseq/internal/platform/redis"
	httptransport "veriseq/internal/transport/http"
	"veriseq/internal/validator"
)

const tokenTTL = time.Hour

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Ledger store: Postgres when a DSN is configured, CSV file otherwise.
	var ledgerStore ledger.Store
	var campaignStore campaign.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pgLedger := ledger.NewPostgresStore(db)
		if err := pgLedger.EnsureSchema(ctx); err != nil {
			log.Error("failed to prepare ledger schema", "error", err)
			os.Exit(1)
		}
		ledgerStore = pgLedger

		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open campaign pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pgCampaigns := campaign.NewPostgresStore(pool)
		if err := pgCampaigns.EnsureSchema(ctx); err != nil {
			log.Error("failed to prepare campaign schema", "error", err)
			os.Exit(1)
		}
		campaignStore = pgCampaigns

		log.Info("using postgres stores")
	} else {
		ledgerStore = ledger.NewFileStore(cfg.LedgerPath)
		campaignStore = campaign.NewMemoryStore()
		log.Info("using file ledger", "path", cfg.LedgerPath)
	}

	if cfg.LedgerSeed != "" {
		seed, err := os.Open(cfg.LedgerSeed)
		if err != nil {
			log.Error("failed to open ledger seed", "path", cfg.LedgerSeed, "error", err)
			os.Exit(1)
		}
		n, err := ledger.ImportCSV(ctx, ledgerStore, seed)
		seed.Close()
		if err != nil {
			log.Error("failed to seed ledger", "path", cfg.LedgerSeed, "error", err)
			os.Exit(1)
		}
		log.Info("seeded ledger from csv", "path", cfg.LedgerSeed, "records", n)
	}

	registry := campaign.NewRegistry()
	runner := campaign.NewRunner(campaign.WithBound(cfg.Bound))

	serviceOpts := []campaign.ServiceOption{
		campaign.WithWorkers(cfg.Workers),
		campaign.WithHarnessTimeout(cfg.HarnessTimeout),
		campaign.WithLogger(log),
		campaign.WithMetrics(campaignMetrics.New()),
	}

	// Optional Redis claim coordination for multi-instance deployments.
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		serviceOpts = append(serviceOpts,
			campaign.WithClaimer(campaign.NewRedisClaimer(redisClient.Client, cfg.Redis.ClaimTTL)))
		log.Info("harness claims coordinated via redis")
	}

	// Optional Kafka mirroring of ledger records.
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := ledger.NewPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic,
			ledger.WithPublisherLogger(log))
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()

		stream := make(chan ledger.Record, 256)
		worker := ledger.NewWorker(publisher, stream, log)
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("ledger stream worker stopped", "error", err)
			}
		}()
		serviceOpts = append(serviceOpts, campaign.WithStream(stream))
		log.Info("ledger records mirrored to kafka", "topic", cfg.Kafka.Topic)
	}

	campaigns := campaign.NewService(registry, runner, campaignStore, ledgerStore, serviceOpts...)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "veriseq", "veriseq-api")
	jwtValidator := jwttoken.NewJWTServiceAdapter(jwtService)

	m := metrics.New()
	router := httptransport.NewRouter(
		httptransport.NewValidateHandler(validator.New(), log),
		httptransport.NewCampaignHandler(campaigns, campaigns, log),
		httptransport.NewLedgerHandler(campaigns, log),
		httptransport.NewAuthHandler(jwtService, cfg.OperatorKeyHash, tokenTTL, log),
		jwtValidator,
		m,
		log,
	)

	srv := httpserver.New(cfg.Addr, router.Handler())

	log.Info("starting veriseq", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
