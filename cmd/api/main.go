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

	"github.com/baharkarakas/servicehub-backend/internal/api"
	"github.com/baharkarakas/servicehub-backend/internal/api/handlers"
	"github.com/baharkarakas/servicehub-backend/internal/auth"
	"github.com/baharkarakas/servicehub-backend/internal/config"
	"github.com/baharkarakas/servicehub-backend/internal/db"
	"github.com/baharkarakas/servicehub-backend/internal/logger"
	"github.com/baharkarakas/servicehub-backend/internal/metrics"
	"github.com/baharkarakas/servicehub-backend/internal/mpesa"
	"github.com/baharkarakas/servicehub-backend/internal/realtime"
	"github.com/baharkarakas/servicehub-backend/internal/repository/postgres"
	"github.com/baharkarakas/servicehub-backend/internal/services"
	"github.com/baharkarakas/servicehub-backend/internal/worker"
)

const workerQueue = 1024

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.NewPool(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, dbPool, log); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(dbPool)

	var (
		pub    realtime.Publisher = realtime.Nop{}
		stream handlers.Subscriber
	)
	if cfg.Redis.Enabled {
		rdb := realtime.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable", "addr", cfg.Redis.Addr, "err", err)
		}
		cancel()
		hub := realtime.NewHub(rdb, log)
		pub, stream = hub, hub
	} else {
		log.Info("real-time channel disabled")
	}

	metrics.Init()
	wp := worker.NewPool(cfg.Workers, workerQueue, metrics.WorkerQueueDepth, log)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTRefresh, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	gateway := mpesa.NewClient(cfg.Mpesa)

	notifySvc := services.NewNotificationService(repos.Notifications, repos.Users, pub, log)
	userSvc := services.NewUserService(repos.Users, tm, notifySvc, log)
	bookingSvc := services.NewBookingService(repos.Bookings, repos.Users, notifySvc, pub, log)
	paymentSvc := services.NewPaymentService(gateway, repos.Transactions, repos.Bookings, repos.AuditLogs, wp, log)
	adminSvc := services.NewAdminService(repos.Bookings, repos.Transactions, repos.Users, repos.AuditLogs, notifySvc, log)

	r := api.NewRouter(api.RouterDeps{
		Log:           log,
		TM:            tm,
		RateRPS:       cfg.RateRPS,
		Accounts:      userSvc,
		Bookings:      bookingSvc,
		Payments:      paymentSvc,
		Admin:         adminSvc,
		Notifications: notifySvc,
		Events:        stream,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}
