package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chargeapi/internal/clock"
	"chargeapi/internal/config"
	"chargeapi/internal/database"
	"chargeapi/internal/database/migration"
	handlers "chargeapi/internal/http/handler"
	"chargeapi/internal/http/middleware"
	"chargeapi/internal/logging"
	"chargeapi/internal/metrics"
	tracing "chargeapi/internal/otel"
	"chargeapi/internal/processor"
	"chargeapi/internal/repository/postgres"
	"chargeapi/internal/service"
	"chargeapi/internal/storage"
)

// @title Charge API
// @version 1.0
// @description Reconciles processor disputes and refunds with purchases, charges and the seller ledger.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(cfg.Logging)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server_exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) error {
	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing_shutdown_failed", "error", err)
		}
	}()

	// PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	// S3-compatible object storage (MinIO-supported) for dispute evidence
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return err
	}

	billingMetrics, err := metrics.NewBillingMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	// Repositories and services
	orders := postgres.NewOrderPostgres(db)
	disputes := postgres.NewDisputePostgres(db)
	ledger := postgres.NewLedgerPostgres(db)
	clk := clock.System()

	svcs := handlers.Services{
		Reconciliation: service.NewReconciliationService(service.Repositories{
			Tx:       postgres.NewTransactor(db),
			Orders:   orders,
			Disputes: disputes,
			Refunds:  postgres.NewRefundPostgres(db),
			Ledger:   ledger,
			Events:   postgres.NewEventPostgres(db),
		}, clk, log, billingMetrics),
		Disputes: service.NewDisputeService(service.DisputeDeps{
			Disputes:  disputes,
			Evidence:  postgres.NewEvidencePostgres(db),
			Orders:    orders,
			Store:     objStore,
			Submitter: processor.NewStripeDisputeClient(cfg.Stripe.SecretKey),
		}, clk, log),
		Charges: service.NewChargeService(orders, ledger),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Global middleware: tracing, request id, JSON request logs, metrics
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(cfg.Location()))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, db, svcs, handlers.WebhookSecrets{
		StripeSigningSecret: cfg.Stripe.WebhookSecret,
		PayPalToken:         cfg.PayPal.WebhookToken,
	}, cfg.EvidenceTTL)

	handlers.RegisterDocs(app)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_listening", "addr", ":"+cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_shutting_down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(sctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
