package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/aggregator"
	"github.com/shifa-care/shifa-api/internal/config"
	"github.com/shifa-care/shifa-api/internal/database"
	"github.com/shifa-care/shifa-api/internal/handler"
	"github.com/shifa-care/shifa-api/internal/middleware"
	"github.com/shifa-care/shifa-api/internal/models"
	"github.com/shifa-care/shifa-api/internal/router"
	"github.com/shifa-care/shifa-api/internal/service"
	appstore "github.com/shifa-care/shifa-api/internal/store"
	"github.com/shifa-care/shifa-api/internal/stream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Medicine{}, &models.ShortageReport{}, &models.Shipment{}, &models.ActivityLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, badge caching disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, change feed runs in-process only")
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	docs, err := appstore.NewGormStore(db, natsConn, logger)
	if err != nil {
		log.Fatalf("failed to build document store: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	audit := service.NewAuditTrail(docs, cfg.AuditQueueSize, logger)
	go audit.Run(ctx)

	validate := validator.New(validator.WithRequiredStructEnabled())

	reportService := service.NewReportService(docs, audit, validate, logger)
	inventoryService := service.NewInventoryService(docs, audit, validate, logger)
	shipmentService := service.NewShipmentService(docs, audit, validate, logger)
	activityFeedService := service.NewActivityFeedService(docs, logger)

	states := aggregator.New(logger)
	for _, query := range []appstore.Query{
		{Collection: appstore.CollectionMedicines},
		{Collection: appstore.CollectionReports},
		{Collection: appstore.CollectionShipments},
		{Collection: appstore.CollectionActivities, OrderBy: "created_at", Descending: true},
	} {
		sub := stream.Subscribe(docs, query, stream.Options{Logger: logger, Buffer: cfg.StreamBuffer})
		states.Feed(sub.Snapshots())
		sub.Start(ctx)
		go drainSubscriptionErrors(sub, logger)
	}
	go states.Run(ctx)

	badgeService := service.NewBadgeService(states, cfg.BadgeCap, redisClient, logger)
	badgeViews, cancelBadgeViews := states.Watch()
	defer cancelBadgeViews()
	go badgeService.Start(ctx, badgeViews)

	dashboardHandler := handler.NewDashboardHandler(states, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	medicineHandler := handler.NewMedicineHandler(inventoryService, logger)
	shipmentHandler := handler.NewShipmentHandler(shipmentService, logger)
	activityFeedHandler := handler.NewActivityFeedHandler(activityFeedService, logger)
	badgeHandler := handler.NewBadgeHandler(badgeService, logger, cfg.SSEKeepAlive)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DashboardHandler:    dashboardHandler,
		ReportHandler:       reportHandler,
		MedicineHandler:     medicineHandler,
		ShipmentHandler:     shipmentHandler,
		ActivityFeedHandler: activityFeedHandler,
		BadgeHandler:        badgeHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(ctx, app)
}

func drainSubscriptionErrors(sub *stream.Subscription, logger zerolog.Logger) {
	for err := range sub.Errors() {
		logger.Warn().Err(err).Str("subscription", sub.ID()).Msg("snapshot refresh failed")
	}
}

func waitForShutdown(ctx context.Context, app *fiber.App) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
