package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/audit-lab/audit-service/internal/authz"
	corecfg "github.com/audit-lab/audit-service/internal/core/config"
	"github.com/audit-lab/audit-service/internal/core/storage"
	"github.com/audit-lab/audit-service/internal/core/storage/memory"
	"github.com/audit-lab/audit-service/internal/core/storage/postgres"
	"github.com/audit-lab/audit-service/internal/ingestion"
	"github.com/audit-lab/audit-service/internal/migrations"
	"github.com/audit-lab/audit-service/internal/query"
	"github.com/audit-lab/audit-service/internal/queue"
	"github.com/audit-lab/audit-service/internal/schema"
	"github.com/audit-lab/audit-service/internal/server"
	"github.com/audit-lab/audit-service/internal/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const dbStatsInterval = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	printConfig := flag.Bool("print-config", false, "Print the resolved configuration and exit")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if *printConfig {
		out, err := cfg.YAML()
		if err != nil {
			slog.Error("Failed to print config", "error", err)
			os.Exit(1)
		}
		fmt.Print(string(out))
		return
	}

	// 2. Initialize Logger
	telemetry.SetupLogger(cfg.Logging.Format, cfg.Logging.Level)
	slog.Info("Loaded config", "version", version, "database", cfg.Database.Type, "queue_enabled", cfg.Queue.Enabled)

	ctx, cancel := context.WithCancel(context.Background())

	// Signal handler -> triggers the shutdown sequence in run.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	err = run(ctx, cfg)
	cancel()
	if err != nil {
		slog.Error("Service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Shutdown complete")
}

// Swapped in tests.
var (
	openStoreFunc  = openStore
	newQueueClient = func(ctx context.Context, opts queue.ClientOptions) (queue.Client, error) {
		return queue.NewClient(ctx, opts)
	}
)

// run wires every component and serves until ctx is cancelled. Errors are
// returned rather than exiting so the store is always released.
func run(ctx context.Context, cfg *corecfg.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 3. Initialize Storage
	registry := schema.NewRegistry()
	store, closeStore, err := openStoreFunc(ctx, cfg.Database, registry)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closeStore()

	// 4. Initialize Ingestion (bounded queue + workers)
	policy, err := ingestion.ParseOverflowPolicy(cfg.Ingestion.OverflowPolicy)
	if err != nil {
		return fmt.Errorf("invalid ingestion config: %w", err)
	}
	dispatcher := ingestion.NewDispatcher(store, ingestion.DispatcherOptions{
		QueueSize:      cfg.Ingestion.QueueSize,
		WorkerCount:    cfg.Ingestion.WorkerCount,
		Policy:         policy,
		EnqueueTimeout: cfg.Ingestion.EnqueueTimeout,
		WriteTimeout:   cfg.Ingestion.WriteTimeout,
	})
	ingestionSvc := ingestion.NewService(dispatcher, cfg.Server.MaxBodySizeMB)

	// 5. Initialize Query API
	var authorizer authz.Authorizer
	if cfg.Authz.Enabled {
		authorizer = authz.NewClient(cfg.Authz.ArboristURL, cfg.Authz.Timeout, cfg.Authz.CacheTTL)
	} else {
		slog.Warn("[Authz] Authorization is disabled, every query will be allowed")
	}
	querySvc := query.NewService(store, registry, query.Options{
		PageSize:       cfg.Query.PageSize,
		TimeboxMaxDays: cfg.Query.TimeboxMaxDays,
		QueryUsernames: cfg.Query.Usernames,
	})

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), store, server.Options{
		Mode:           cfg.Server.Mode,
		Version:        version,
		MetricsEnabled: cfg.Metrics.Enabled,
	})
	ingestionSvc.RegisterRoutes(srv.Engine)
	querySvc.RegisterRoutes(srv.Engine, authorizer)

	var consumer *queue.Consumer
	if cfg.Queue.Enabled {
		client, err := newQueueClient(ctx, queue.ClientOptions{
			Region:          cfg.Queue.Region,
			AccessKeyID:     cfg.Queue.AWSAccessKeyID,
			SecretAccessKey: cfg.Queue.AWSSecretAccessKey,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize queue client: %w", err)
		}
		consumer = queue.NewConsumer(client, store, queue.ConsumerOptions{
			QueueURL:        cfg.Queue.SQSURL,
			PullFrequency:   cfg.Queue.PullFrequency,
			WaitTimeSeconds: cfg.Queue.WaitTimeSeconds,
			WriteTimeout:    cfg.Ingestion.WriteTimeout,
		})
	} else {
		slog.Info("Queue consumer disabled by config")
	}

	// 7. Start Services
	dispatcher.Start()

	consumerDone := make(chan struct{})
	if consumer != nil {
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil {
				slog.Error("[Consumer] Stopped with error", "error", err)
			}
		}()
	} else {
		close(consumerDone)
	}

	// HTTP server blocks until ctx is cancelled and in-flight requests finish.
	serveErr := srv.Run(ctx)
	if serveErr != nil {
		cancel()
	}

	// Accepted records are written before the store goes away.
	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.Ingestion.ShutdownTimeout)
	defer drainCancel()
	if err := dispatcher.Close(drainCtx); err != nil {
		slog.Error("Ingestion queue not fully drained", "error", err, "remaining", dispatcher.Depth())
	}
	<-consumerDone

	if serveErr != nil {
		return fmt.Errorf("server stopped with error: %w", serveErr)
	}
	return nil
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg corecfg.DatabaseConfig, registry *schema.Registry) (storage.LogStore, func(), error) {
	if cfg.Type == "memory" {
		slog.Warn("Using in-memory storage, records are lost on restart")
		return memory.NewStore(registry), func() {}, nil
	}

	adapter, err := postgres.NewAdapter(cfg.DSN, cfg.MaxOpenConns, cfg.MaxIdleConns, registry, cfg.PartitionCacheTTL)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := adapter.Close(); err != nil {
			slog.Error("[Postgres] Failed to close connection pool", "error", err)
		}
	}

	if err := migrations.RunMigrations(adapter.DB(), cfg.AutoMigrate); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	if err := adapter.ValidateSchema(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}

	telemetry.StartDBStatsCollector(ctx, adapter.DB(), dbStatsInterval)
	return adapter, closeFn, nil
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
