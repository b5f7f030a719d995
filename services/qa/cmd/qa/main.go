package main

import (
	"context"
	"net"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/example/wisora/internal/platform/auth"
	"github.com/example/wisora/internal/platform/config"
	"github.com/example/wisora/internal/platform/db"
	"github.com/example/wisora/internal/platform/events"
	"github.com/example/wisora/internal/platform/grpcserver"
	"github.com/example/wisora/internal/platform/httpserver"
	"github.com/example/wisora/internal/platform/logging"
	"github.com/example/wisora/internal/platform/natsconn"
	"github.com/example/wisora/internal/platform/ratelimit"
	"github.com/example/wisora/internal/platform/run"
	"github.com/example/wisora/internal/platform/validate"
	"github.com/example/wisora/services/qa/internal/handlers"
	"github.com/example/wisora/services/qa/internal/idempotency"
	"github.com/example/wisora/services/qa/internal/notify"
	"github.com/example/wisora/services/qa/internal/service"
	"github.com/example/wisora/services/qa/internal/store"
	"github.com/example/wisora/services/qa/internal/worker"
)

const (
	eventTTL           = 24 * time.Hour
	healthPollInterval = 10 * time.Second
	limiterSweepEvery  = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	st, pool := initStore(cfg, log)
	if pool != nil {
		defer pool.Close()
	}

	notifier, consumer, nc := initNotifications(cfg, log, st, pool)

	svc := service.New(st, notifier, log, service.Options{ThreadMaxDepth: cfg.ThreadMaxDepth})
	limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	verifier := auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: svc.Ping, Logger: log})
	handlers.Register(r, handlers.Deps{Svc: svc, Validator: validate.New(), Log: log}, verifier, limiter)

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Error("grpc listen", zap.Error(err))
		run.Exit(1)
	}
	grpcSrv, hs := grpcserver.New(log)
	go func() {
		log.Info("grpc server starting", zap.String("addr", cfg.GRPC.Addr))
		if err := grpcSrv.Serve(lis); err != nil {
			log.Error("grpc serve", zap.Error(err))
		}
	}()

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		if consumer != nil {
			go consumer.Run(ctx)
		}
		go watchHealth(ctx, svc, hs)
		go sweepLimiter(ctx, limiter)
		return srv.Start()
	})

	hs.Shutdown()
	runner.Graceful(run.DefaultShutdownTimeout,
		srv.Shutdown,
		func(ctx context.Context) error { return grpcserver.GracefulStop(ctx, grpcSrv) },
		func(context.Context) error {
			if nc == nil {
				return nil
			}
			return nc.Drain()
		},
	)

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initStore selects the store backend. In production it requires a working
// Postgres connection and terminates the process otherwise.
func initStore(cfg config.AppConfig, log *zap.Logger) (store.Store, *pgxpool.Pool) {
	if cfg.DatabaseURL == "" {
		if cfg.IsProduction() {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory store (development only)")
		return store.NewInMemory(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		if cfg.IsProduction() {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory store", zap.Error(err))
		return store.NewInMemory(), nil
	}
	if err := store.Migrate(ctx, pool); err != nil {
		pool.Close()
		log.Error("apply schema", zap.Error(err))
		_ = log.Sync()
		run.Exit(1)
	}

	log.Info("qa store: postgres")
	return store.NewPostgres(pool), pool
}

// initNotifications publishes through JetStream when NATS is reachable and
// writes notifications directly otherwise.
func initNotifications(cfg config.AppConfig, log *zap.Logger, st store.Store, pool *pgxpool.Pool) (notify.Notifier, *worker.NotificationConsumer, *nats.Conn) {
	direct := notify.NewDirect(st)

	nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL, Name: cfg.ServiceName, Logger: log})
	if err != nil {
		log.Warn("nats unavailable, writing notifications directly", zap.Error(err))
		return direct, nil, nil
	}
	js, err := nc.JetStream()
	if err != nil {
		log.Warn("jetstream unavailable, writing notifications directly", zap.Error(err))
		nc.Close()
		return direct, nil, nil
	}
	if err := events.EnsureStream(js, notify.StreamConfig, log); err != nil {
		log.Warn("ensure stream failed, writing notifications directly", zap.Error(err))
		nc.Close()
		return direct, nil, nil
	}

	seen, err := idempotency.NewStore(cfg.RedisDSN, pool, eventTTL, cfg.IsProduction())
	if err != nil {
		log.Error("idempotency store", zap.Error(err))
		_ = log.Sync()
		run.Exit(1)
	}
	consumer := worker.NewNotificationConsumer(st, seen, log, worker.ConsumerOptions{})
	if err := consumer.Subscribe(js); err != nil {
		log.Warn("notifications consumer unavailable, writing notifications directly", zap.Error(err))
		nc.Close()
		return direct, nil, nil
	}

	log.Info("notifications: jetstream", zap.String("stream", notify.Stream))
	return notify.NewPublisher(events.New(js, log)), consumer, nc
}

// watchHealth mirrors store reachability into the gRPC health service.
func watchHealth(ctx context.Context, svc *service.Service, hs *health.Server) {
	set := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		status := healthpb.HealthCheckResponse_SERVING
		if err := svc.Ping(pingCtx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", status)
	}
	set()
	t := time.NewTicker(healthPollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			set()
		}
	}
}

func sweepLimiter(ctx context.Context, l *ratelimit.Limiter) {
	t := time.NewTicker(limiterSweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}
