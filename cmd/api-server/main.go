package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/clinidesk/internal/api"
	"github.com/hackgods/clinidesk/internal/auth"
	"github.com/hackgods/clinidesk/internal/backend"
	"github.com/hackgods/clinidesk/internal/cep"
	"github.com/hackgods/clinidesk/internal/config"
	"github.com/hackgods/clinidesk/internal/db"
	"github.com/hackgods/clinidesk/internal/logger"
	redisclient "github.com/hackgods/clinidesk/internal/redis"
	"github.com/hackgods/clinidesk/internal/registration"
	"github.com/hackgods/clinidesk/internal/schedule"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	lg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	lg.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("backend_url", cfg.BackendURL),
		zap.String("timezone", cfg.Location.String()),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	backendClient := backend.NewClient(cfg.BackendURL, httpClient, lg.Named("backend"))

	deps := []api.Dependency{{
		Name: "backend",
		Ping: backendClient.HealthCheck,
	}}

	var store schedule.Store
	if cfg.PostgresDSN != "" {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pool, err := db.Connect(pgCtx, cfg.PostgresDSN, lg)
		cancelPg()
		if err != nil {
			lg.Fatal("postgres connection error", zap.Error(err))
		}
		defer pool.Close()

		store = schedule.NewPgRepository(pool)
		deps = append(deps, api.Dependency{Name: "postgres", Critical: true, Ping: pool.Ping})
	} else {
		lg.Warn("POSTGRES_DSN not set, appointments are kept in memory with demo data")
		store = schedule.NewMemoryStore(schedule.DemoCatalog(), true)
	}

	defaults, err := schedule.WorkHours{
		StartTime:  cfg.WorkStart,
		EndTime:    cfg.WorkEnd,
		DaysOfWeek: schedule.DefaultWorkHours().DaysOfWeek,
	}.Normalize()
	if err != nil {
		lg.Fatal("invalid default work hours", zap.Error(err))
	}

	svcOpts := []schedule.ServiceOption{
		schedule.WithDefaultWorkHours(defaults),
		schedule.WithLocation(cfg.Location),
	}
	locker := redisclient.NewLocalLocker()
	var cepOpts []cep.Option
	var authOpts []auth.RemoteOption

	if cfg.RedisAddr != "" {
		rdb, err := redisclient.NewRedisClient(rootCtx, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			lg.Fatal("redis connection error", zap.Error(err))
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				lg.Warn("error closing redis", zap.Error(err))
			}
		}()
		lg.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

		locker = redisclient.NewRedisOwnerLocker(rdb, cfg.LockTTL)
		if cfg.PostgresDSN != "" {
			svcOpts = append(svcOpts, schedule.WithSharedStore())
		}
		cepOpts = append(cepOpts, cep.WithCache(redisclient.NewCache(rdb, "cep:"), cfg.CEPCacheTTL))
		authOpts = append(authOpts, auth.WithIdentityCache(redisclient.NewCache(rdb, "auth:"), cfg.AuthCacheTTL))
		deps = append(deps, api.Dependency{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	scheduleSvc := schedule.NewService(store, locker, lg.Named("schedule"), svcOpts...)
	cepClient := cep.NewClient(cfg.ViaCEPURL, httpClient, lg.Named("cep"), cepOpts...)
	registrationSvc := registration.NewService(backendClient, cepClient, registration.NewValidator(time.Now), lg.Named("registration"))

	verifier := auth.NewRemoteVerifier(backendClient, time.Now, lg.Named("auth"), authOpts...)
	if cfg.JWTSecret != "" {
		verifier = auth.NewSecretVerifier(cfg.JWTSecret, time.Now)
	}

	handler := api.NewRouter(api.RouterConfig{
		Schedule:       scheduleSvc,
		Registration:   registrationSvc,
		Backend:        backendClient,
		Health:         api.NewHealthHandler(cfg.Env, version, deps...),
		Log:            lg,
		AllowedOrigins: cfg.AllowedOrigins,
		LoginRateLimit: cfg.LoginRateLimit,
		Verifier:       verifier,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-errCh:
		if err != nil {
			lg.Error("http server error", zap.Error(err))
		}
	}

	lg.Info("shutting down api-server", zap.Duration("timeout", cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}
