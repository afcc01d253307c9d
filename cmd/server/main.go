package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"locadora/internal/audit"
	httptransport "locadora/internal/http"
	"locadora/internal/inventory"
	inventorycache "locadora/internal/inventory/cache"
	inventoryhandler "locadora/internal/inventory/handler"
	inventorypg "locadora/internal/inventory/store/postgres"
	"locadora/internal/loan"
	loanhandler "locadora/internal/loan/handler"
	loanmetrics "locadora/internal/loan/metrics"
	loanpg "locadora/internal/loan/store/postgres"
	"locadora/internal/platform/config"
	"locadora/internal/platform/httpserver"
	"locadora/internal/platform/logger"
	"locadora/internal/platform/metrics"
	"locadora/internal/platform/postgres"
	platformredis "locadora/internal/platform/redis"
	"locadora/internal/user"
	userhandler "locadora/internal/user/handler"
	userpg "locadora/internal/user/store/postgres"
	"locadora/pkg/tx"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages. Without a Postgres
// URL the service runs fully in memory, which is the mode the test suites and
// local development use.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		userStore  user.Store
		itemStore  inventory.Store
		loanStore  loan.Store
		auditStore audit.Store
		runner     tx.Runner
		outbox     *audit.OutboxStore
	)

	if cfg.PostgresURL != "" {
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.ApplySchema(ctx, db); err != nil {
			return err
		}
		userStore = userpg.New(db)
		itemStore = inventorypg.New(db)
		loanStore = loanpg.New(db)
		outbox = audit.NewOutboxStore(db)
		auditStore = outbox
		runner = tx.NewPostgresRunner(db)
		log.Info("storage: postgres")
	} else {
		userStore = user.NewInMemoryStore()
		itemStore = inventory.NewInMemoryStore()
		loanStore = loan.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		runner = tx.NewMemoryRunner()
		log.Info("storage: in-memory")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("availability cache: redis")
	}

	auditPub := audit.NewPublisher(auditStore, audit.WithLogger(log), audit.WithAsyncBuffer(256))
	defer auditPub.Close()

	httpMetrics := metrics.New()
	loanMetrics := loanmetrics.New()

	availability := inventorycache.New(redisClient, config.AvailabilityCacheTTL)

	userSvc := user.NewService(userStore, loanStore, runner, auditPub, log)
	itemSvc := inventory.NewService(itemStore, nil, availability, auditPub, log)
	loanSvc := loan.NewService(loanStore, userStore, userSvc, itemSvc, itemSvc, runner, auditPub, loanMetrics, log)
	itemSvc.SetHoldings(loanSvc)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:  log,
		Metrics: httpMetrics,
		Audit:   auditPub,
		Timeout: cfg.RequestTimeout,
		Handlers: []httptransport.Registrar{
			userhandler.New(userSvc, log),
			inventoryhandler.New(itemSvc, log),
			loanhandler.New(loanSvc, log),
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting locadora", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// The outbox worker needs both the Postgres outbox and a Kafka broker;
	// with either missing, events stay queryable through the store alone.
	if outbox != nil && len(cfg.Kafka.Brokers) > 0 {
		sink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer sink.Close()
		worker := audit.NewWorker(outbox, sink, log, cfg.Kafka.PollInterval)
		g.Go(func() error {
			return worker.Run(gctx)
		})
		log.Info("audit outbox worker started", "topic", cfg.Kafka.Topic)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
