package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/shipdesk/settlement-core/internal/core/services"
	"github.com/shipdesk/settlement-core/internal/events/kafka"
	"github.com/shipdesk/settlement-core/internal/handlers"
	"github.com/shipdesk/settlement-core/internal/middleware"
	"github.com/shipdesk/settlement-core/internal/platform/config"
	"github.com/shipdesk/settlement-core/internal/platform/scheduler"
	"github.com/shipdesk/settlement-core/internal/repositories/database/pgsql"
	portssvc "github.com/shipdesk/settlement-core/internal/core/ports/services"
	"github.com/shipdesk/settlement-core/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := &portssvc.ServiceContainer{
		Ledger:     services.NewLedgerService(repos.LedgerRepo, cfg.DedupWindow, cfg.LockTimeout),
		Remittance: services.NewRemittanceService(repos.RemittanceRepo, repos.ShipmentRepo, cfg.SettlementCutoffWeekday),
		Dispute:    services.NewDisputeService(repos.DiscrepancyRepo, repos.ShipmentRepo, repos.LedgerRepo),
		Shipment:   services.NewShipmentService(repos.ShipmentRepo),
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	settlementScheduler := scheduler.NewSettlementScheduler(
		serviceContainer.Remittance,
		serviceContainer.Dispute,
		logger,
		cfg.SchedulerInterval,
		cfg.DisputeWindow,
	)
	settlementScheduler.Start()
	defer settlementScheduler.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.KafkaEnabled {
		consumer := kafka.NewConsumer(kafka.Config{
			Brokers:       cfg.KafkaBrokers,
			DeliveryTopic: cfg.KafkaDeliveryTopic,
			WeightTopic:   cfg.KafkaWeightTopic,
			GroupID:       cfg.KafkaGroupID,
		}, serviceContainer.Shipment, serviceContainer.Remittance, serviceContainer.Dispute, logger)
		consumer.Start(ctx)
		defer func() {
			if err := consumer.Close(); err != nil {
				logger.Error("Error closing Kafka consumer", slog.String("error", err.Error()))
			}
		}()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, draining...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", slog.String("error", err.Error()))
	}
}

// runMigrations applies all pending "up" migrations before the server starts
// taking traffic.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
