package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sifan077/blt/config"
	appmodel "github.com/sifan077/blt/internal/app/model"
	apprepository "github.com/sifan077/blt/internal/app/repository"
	appserver "github.com/sifan077/blt/internal/app/server"
	"github.com/sifan077/blt/internal/app/service"
	"github.com/sifan077/blt/internal/infra/logger"
	infraNATS "github.com/sifan077/blt/internal/infra/nats"
	infraPostgres "github.com/sifan077/blt/internal/infra/postgres"
	infraPrometheus "github.com/sifan077/blt/internal/infra/prometheus"
	infraRedis "github.com/sifan077/blt/internal/infra/redis"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second

	sightingsCapacity = 1_000_000
	sightingsFPRate   = 0.01
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
		Service:     "blt",
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("http_addr", cfg.Server.Addr),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
		zap.String("queue_driver", cfg.Queue.Driver),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB, appmodel.AllModels()...); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	clients := apprepository.NewUniversalClientRepository(pool)
	router := service.NewTaskRouter(
		service.NewEventRecorder(logger.Component("events"), apprepository.NewCampaignEventRepository(gormDB)),
		service.NewAuditTrace(logger.Component("audit"), apprepository.NewAuditRepository(gormDB)),
	)

	g, gctx := errgroup.WithContext(ctx)

	var (
		queue      service.TaskQueue
		localQueue *service.LocalTaskQueue
		deps       = appserver.Dependencies{Postgres: pool, Redis: redisClient}
	)
	switch cfg.Queue.Driver {
	case config.QueueDriverLocal:
		localQueue = service.NewLocalTaskQueue(logger.Component("worker"), router, cfg.Queue.Workers, cfg.Queue.Buffer)
		queue = localQueue
		log.Info("Using in-process task queue", zap.Int("workers", cfg.Queue.Workers))
	default:
		natsConn, js, err := infraNATS.Connect(cfg.NATS, logger.Component("nats"))
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsConn.Drain()
		log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))

		if err := service.EnsureStream(js); err != nil {
			log.Fatal("Failed to prepare task stream", zap.Error(err))
		}
		queue = service.NewTaskPublisher(js, cfg.Queue.PublishTimeout)
		deps.NATS = natsConn

		consumer := service.NewTaskConsumer(js, logger.Component("worker"), router, service.TaskConsumerConfig{
			FetchBatch: cfg.Queue.FetchBatch,
			FetchWait:  cfg.Queue.FetchWait,
		})
		for i := 0; i < max(cfg.Queue.Workers, 1); i++ {
			g.Go(func() error {
				return consumer.Run(gctx)
			})
		}
	}

	resolver := service.NewIdentityResolver(service.IdentityResolverDeps{
		Logger:     logger.Component("identity"),
		Clients:    clients,
		Cache:      apprepository.NewRedisIdentityCache(redisClient, cfg.Beacon.IdentityCacheTTL),
		CookieName: cfg.Beacon.CookieName,
	})
	deps.Logger = log
	deps.Server = cfg.Server
	deps.Beacon = cfg.Beacon
	deps.Ingestor = service.NewIngestor(service.IngestorDeps{
		Logger:    logger.Component("ingest"),
		Resolver:  resolver,
		Queue:     queue,
		Sightings: service.NewFingerprintSightings(sightingsCapacity, sightingsFPRate),
	})
	server := appserver.New(deps)

	checker := service.NewIntegrityChecker(logger.Component("integrity"), clients, cfg.Integrity.Interval)
	g.Go(func() error {
		checker.Run(gctx)
		return nil
	})

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		g.Go(func() error {
			log.Info("Starting Prometheus metrics server", zap.String("addr", promServer.Addr), zap.String("path", cfg.Prometheus.Path))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return promServer.Close()
		})
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	g.Go(func() error {
		log.Info("Starting HTTP server", zap.String("addr", cfg.Server.Addr))
		return server.Listen(cfg.Server.Addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to shut down HTTP server", zap.Error(err))
		}
		if localQueue != nil {
			localQueue.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Service stopped with error", zap.Error(err))
		return
	}
	log.Info("Service stopped")
}
