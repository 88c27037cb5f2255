package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/studioops/support-mailroom/internal/api/http"
	"github.com/studioops/support-mailroom/internal/api/http/handlers"
	"github.com/studioops/support-mailroom/internal/auth"
	"github.com/studioops/support-mailroom/internal/config"
	"github.com/studioops/support-mailroom/internal/events"
	"github.com/studioops/support-mailroom/internal/ingestion"
	"github.com/studioops/support-mailroom/internal/notification"
	"github.com/studioops/support-mailroom/internal/observability"
	"github.com/studioops/support-mailroom/internal/persistence"
	"github.com/studioops/support-mailroom/internal/repository"
	"github.com/studioops/support-mailroom/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	var (
		mappingRepo      repository.MappingRepository
		ticketRepo       repository.TicketRepository
		notificationRepo repository.NotificationRepository
	)
	if pool != nil {
		mappingRepo = repository.NewMappingRepository(pool)
		ticketRepo = repository.NewTicketRepository(pool)
		notificationRepo = repository.NewNotificationRepository(pool)
	} else {
		logger.Warn("running with in-memory stores; state is lost on restart")
		mappingRepo = repository.NewMemoryMappingRepository()
		ticketRepo = repository.NewMemoryTicketRepository()
		notificationRepo = repository.NewMemoryNotificationRepository()
	}
	prefRepo := repository.NewPreferenceRepository(redis.Client)
	digestRepo := repository.NewDigestRepository(redis.Client)

	router := notification.NewRouter(notification.RouterDependencies{
		NotificationRepo: notificationRepo,
		PreferenceRepo:   prefRepo,
		DigestRepo:       digestRepo,
		Email:            notification.LogEmailSender{Logger: logger, From: cfg.Notification.EmailFrom},
		Chat:             notification.NewWebhookChatSender(cfg.Notification, logger),
		SMS:              notification.LogSMSSender{Logger: logger, From: cfg.Notification.SMSFrom},
		InApp:            notification.LogInAppSender{Logger: logger},
		Logger:           logger,
		Metrics:          metrics,
	})

	digestWorker := worker.NewDigestWorker(cfg.Notification, router, logger)
	defer digestWorker.Stop()
	router.SetScheduler(digestWorker)

	dispatcher := events.NewInMemoryDispatcher()
	bridge := notification.NewBridge(dispatcher, router, logger)
	bridge.RegisterHandlers()

	pipeline := ingestion.NewPipeline(cfg.Mailroom, ingestion.PipelineDependencies{
		MappingRepo: mappingRepo,
		TicketRepo:  ticketRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Metrics:     metrics,
	})

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Mailroom:       handlers.NewMailroomHandler(pipeline),
		Notifications:  handlers.NewNotificationsHandler(router),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
