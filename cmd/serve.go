package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/config"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/database"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/events"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/middlewares"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/router"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/services"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// backend is what the services need from a store.
type backend interface {
	services.TableStore
	services.ReservationStore
	services.UserStore
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			store, closeStore, err := openStore(cfg, migrateUp)
			if err != nil {
				return err
			}
			defer closeStore()

			return serve(ctx, cfg, store)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	return cmd
}

func openStore(cfg *config.Config, migrateUp bool) (backend, func(), error) {
	if cfg.DBDriver == config.DriverMemory {
		utils.InfoLogger.Warn("Using in-memory store, data is lost on exit")
		return database.NewMemoryStore(), func() {}, nil
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	if migrateUp {
		if err := database.Migrate(db); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
	}
	return database.NewGormStore(db), func() { sqlDB.Close() }, nil
}

func serve(ctx context.Context, cfg *config.Config, store backend) error {
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	hub := events.NewHub()
	registry := services.NewTableRegistry(store, hub)
	scheduler := services.NewReservationScheduler(registry, store, services.SchedulerConfig{
		Strategy:    services.Strategy(cfg.BookingStrategy),
		MaxAttempts: cfg.BookingMaxAttempts,
		BackoffBase: cfg.BookingBackoffBase,
		Timeout:     cfg.BookingTimeout,
	}, services.WithPublisher(hub))

	r := router.SetupRouter(router.Dependencies{
		Registry:     registry,
		Scheduler:    scheduler,
		Auth:         services.NewAuthService(store, cfg.JWTSecret),
		Hub:          hub,
		AuthRequired: cfg.AuthRequired,
		CORSOrigin:   cfg.CORSOrigin,
		RateLimiter:  middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.WithFields(logrus.Fields{
			"port":         cfg.Port,
			"driver":       cfg.DBDriver,
			"booking":      scheduler.Strategy(),
			"auth_enabled": cfg.AuthRequired,
		}).Info("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.InfoLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
