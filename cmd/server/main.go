package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"authgate/internal/audit"
	"authgate/internal/auth/handler"
	"authgate/internal/auth/password"
	"authgate/internal/auth/service"
	"authgate/internal/auth/store/account"
	jwttoken "authgate/internal/jwt_token"
	"authgate/internal/platform/config"
	"authgate/internal/platform/httpserver"
	"authgate/internal/platform/logger"
	"authgate/internal/platform/metrics"
	"authgate/internal/platform/postgres"
	"authgate/internal/platform/redis"
	httptransport "authgate/internal/transport/http"
	"authgate/pkg/platform/circuit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run wires the process and blocks until ctx is cancelled or the server fails.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	hasher, err := password.New(password.Config{
		Cost:        cfg.Auth.BcryptCost,
		Concurrency: cfg.Auth.HashConcurrency,
	}, password.WithObserver(m))
	if err != nil {
		return fmt.Errorf("password hasher: %w", err)
	}

	tokens, err := jwttoken.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenIssuer, jwttoken.WithTTL(cfg.Auth.TokenTTL))
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	accounts, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	readiness := []httptransport.ReadinessCheck{{Name: "store", Check: accounts.Ping}}

	sinks := audit.MultiSink{audit.NewLogSink(log)}
	if len(cfg.Audit.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaSink(ctx, audit.KafkaConfig{
			Brokers:      cfg.Audit.KafkaBrokers,
			Topic:        cfg.Audit.KafkaTopic,
			WriteTimeout: cfg.Audit.KafkaWriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("audit kafka sink: %w", err)
		}
		defer kafka.Close()
		sinks = append(sinks, audit.NewGuardedSink(kafka, circuit.New("kafka"), log))
		readiness = append(readiness, httptransport.ReadinessCheck{Name: "audit", Check: kafka.Ping})
		log.Info("audit events streaming to kafka", "topic", cfg.Audit.KafkaTopic, "brokers", cfg.Audit.KafkaBrokers)
	}
	publisher := audit.NewPublisher(sinks,
		audit.WithAsyncBuffer(cfg.Audit.BufferSize),
		audit.WithLogger(log),
		audit.WithDropRecorder(m),
	)
	defer publisher.Close()

	svc, err := service.New(accounts, hasher, tokens,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAuditPublisher(publisher),
	)
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:            log,
		Metrics:           m,
		Gatherer:          reg,
		RequestTimeout:    cfg.Server.RequestTimeout,
		Readiness:         readiness,
		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
	}, handler.New(svc, tokens, log, m))

	srv := httpserver.New(cfg.Server.Addr(), router)

	log.Info("starting authgate",
		"addr", cfg.Server.Addr(),
		"store", cfg.Store.Driver,
		"token_ttl", cfg.Auth.TokenTTL.String(),
	)
	// Deferred closes run after Run returns, so in-flight requests finish
	// emitting before the audit buffer drains.
	return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log)
}

// openStore builds the configured credential store and returns its cleanup.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.AccountStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		store := account.NewPostgres(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		log.Info("using postgres account store")
		return store, closer(log, "postgres", db), nil

	case config.StoreRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		log.Info("using redis account store")
		return account.NewRedis(client.Client), closer(log, "redis", client), nil

	default:
		log.Warn("using in-memory account store; accounts are lost on restart")
		return account.New(), func() {}, nil
	}
}

type closable interface {
	Close() error
}

func closer(log *slog.Logger, name string, c closable) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Error("failed to close connection", "backend", name, "error", err)
		}
	}
}
