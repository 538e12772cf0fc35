package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"

	"login-api/internal/config"
	"login-api/internal/db"
	healthhandler "login-api/internal/health/handler"
	identityservice "login-api/internal/identity/service"
	"login-api/internal/logging"
	"login-api/internal/policy/engine"
	"login-api/internal/security"
	"login-api/internal/server"
	sessionrepo "login-api/internal/session/repository"
	"login-api/internal/telemetry"
	telemetryotel "login-api/internal/telemetry/otel"
	"login-api/internal/telemetry/producer"
	"login-api/internal/user"
	userrepo "login-api/internal/user/repository"
)

const serviceName = "login-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(serviceName, "info", false).Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(serviceName, cfg.LogLevel, cfg.JSONLogs())
	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger hclog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	signer, pub, err := security.LoadSigningKeys(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		if errors.Is(err, security.ErrSigningKeyUnavailable) {
			return fmt.Errorf("JWT_PRIVATE_KEY is not set: %w", err)
		}
		return fmt.Errorf("load signing keys: %w", err)
	}
	codec, err := security.NewTokenCodec(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()

	var (
		conn     *sql.DB
		users    userrepo.Repository = userrepo.NewMemoryRepository()
		sessions identityservice.SessionRepo
		pingers  healthhandler.Pingers
	)
	if cfg.NeedsDatabase() {
		conn, err = db.OpenWithRetry(ctx, cfg.DatabaseURL, cfg.ConnectTimeout(), logger.Named("db"))
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer conn.Close()
		users = userrepo.NewPostgresRepository(conn)
		pingers = append(pingers, conn)
	}
	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		sessions = sessionrepo.NewPostgresRepository(conn)
	case config.SessionStoreRedis:
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		sessions = sessionrepo.NewRedisRepository(rdb)
		pingers = append(pingers, healthhandler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }))
	default:
		logger.Warn("SESSION_STORE=memory: users and sessions are lost on restart")
		sessions = sessionrepo.NewMemoryRepository()
	}

	policy := ""
	if cfg.AuthzPolicyFile != "" {
		b, err := os.ReadFile(cfg.AuthzPolicyFile)
		if err != nil {
			return fmt.Errorf("read AUTHZ_POLICY_FILE: %w", err)
		}
		policy = string(b)
	}
	authz, err := engine.NewRoleEvaluator(ctx, policy)
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	otelEvents, err := telemetryotel.NewEventEmitter(providers.LoggerProvider, providers.Meter(serviceName))
	if err != nil {
		return fmt.Errorf("telemetry emitter: %w", err)
	}
	emitters := []telemetry.EventEmitter{otelEvents}
	kafkaProducer := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.AuthEventsTopic)
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
		logger.Info("publishing auth events to kafka", "topic", cfg.AuthEventsTopic)
	}

	creds := user.NewCredentialStore(users, security.NewHasher(cfg.BcryptCost))
	auth := identityservice.NewAuthService(creds, sessions, codec, identityservice.Options{
		RefreshTTL:             cfg.RefreshTTL(),
		StrictRotation:         cfg.StrictRefreshRotation,
		RevokeOnPasswordChange: cfg.RevokeOnPasswordChange,
		Logger:                 logger.Named("auth"),
		Events:                 telemetry.FanOut(emitters...),
	})

	srv, err := server.NewServer(server.Options{
		Validator: codec,
		Logger:    logger,
		Meter:     providers.Meter(serviceName),
		Tracing:   cfg.OTLPEndpoint != "",
	})
	if err != nil {
		return fmt.Errorf("grpc server: %w", err)
	}
	server.RegisterServices(srv, server.Deps{
		Auth:                auth,
		Authz:               authz,
		HealthPinger:        pingers,
		HealthPolicyChecker: authz,
		Logger:              logger.Named("health"),
	})

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr, "session_store", cfg.SessionStore)
		serveErr <- srv.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down gRPC server")
	srv.GracefulStop()
	// let in-flight async auth events finish before the exporters go away
	time.Sleep(telemetry.ShutdownDrainDuration)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var result *multierror.Error
	if err := kafkaProducer.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("kafka: %w", err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		result = multierror.Append(result, fmt.Errorf("telemetry: %w", err))
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	logger.Info("gRPC server stopped")
	return nil
}
