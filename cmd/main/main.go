package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/config"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/jetstream"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/observer"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/provider"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/server"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/storage"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/usecase"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/vision"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/utils"
)

func main() {
	// Set timezone to UTC
	time.Local = time.UTC

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}

	observer.InitMetrics(cfg.Metrics.Enabled)
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Log.Info("Starting Meal Photo Bot",
		zap.String("environment", cfg.Environment),
		zap.String("vision_model", cfg.Vision.Model),
		zap.Bool("events_enabled", cfg.EventsEnabled()),
	)

	postgresRepo, err := initPostgresRepo(cfg.Database.PostgresDSN, cfg.Database.PostgresAutoMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Postgres repository", zap.Error(err))
	}

	// Meal events are optional; a nil publisher turns them off.
	var publisher jetstream.Publisher
	var jsClient *jetstream.Client
	if cfg.EventsEnabled() {
		jsClient, err = initJetStreamClient(cfg)
		if err != nil {
			logger.Log.Fatal("Failed to initialize JetStream client", zap.Error(err))
		}
		publisher = jsClient
	}

	backgroundWorker, err := usecase.NewBackgroundWorker(cfg.WorkerPools.Background, logger.Log)
	if err != nil {
		logger.Log.Fatal("Failed to initialize background worker pool", zap.Error(err))
	}

	analyzer := vision.NewClient(cfg.Vision, logger.Log)
	twilioAdapter := provider.NewTwilioAdapter(cfg.Twilio, provider.NewTwilioMessageCreator(cfg.Twilio), logger.Log)
	metaAdapter := provider.NewMetaAdapter(cfg.Meta, logger.Log)

	recorder := usecase.NewMealRecorder(
		storage.NewUserRepoAdapter(postgresRepo),
		storage.NewMealLogRepoAdapter(postgresRepo),
		publisher,
		cfg.NATS.MealLoggedSubject,
		backgroundWorker,
		logger.Log,
	)
	router := usecase.NewMessageRouter(
		[]provider.Adapter{twilioAdapter, metaAdapter},
		analyzer,
		recorder,
		backgroundWorker,
		logger.Log,
	)

	httpServer := server.NewServer(server.Options{
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MetricsEnabled: cfg.Metrics.Enabled,
	}, router, metaAdapter, analyzer, postgresRepo, logger.Log)
	httpServer.Start()

	logger.Log.Info("Webhook endpoints available",
		zap.String("twilio", fmt.Sprintf("http://localhost:%d/webhook/twilio", cfg.Server.Port)),
		zap.String("meta", fmt.Sprintf("http://localhost:%d/webhook/meta", cfg.Server.Port)),
		zap.String("health", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port)),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Log.Info("Received termination signal", zap.String("signal", sig.String()))

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	logger.Log.Info("Starting graceful shutdown", zap.Duration("timeout", shutdownTimeout))

	// The HTTP server stops first so no new tasks reach the pool; the pool drains before
	// connections close so queued meal events can still be published.
	var wg sync.WaitGroup
	wg.Add(1)
	utils.SafeGo(func() {
		defer wg.Done()

		logger.Log.Info("[shutdown] Stopping HTTP server")
		start := time.Now()
		if err := httpServer.Stop(shutdownCtx); err != nil {
			logger.Log.Error("[shutdown] Error stopping HTTP server", zap.Error(err))
		} else {
			logger.Log.Info("[shutdown] HTTP server stopped", zap.Duration("duration", time.Since(start)))
		}

		logger.Log.Info("[shutdown] Stopping background worker pool")
		start = time.Now()
		backgroundWorker.Stop()
		logger.Log.Info("[shutdown] Background worker pool stopped", zap.Duration("duration", time.Since(start)))

		logger.Log.Info("[shutdown] Closing PostgreSQL connection")
		start = time.Now()
		if err := postgresRepo.Close(shutdownCtx); err != nil {
			logger.Log.Error("[shutdown] Failed to close PostgreSQL connection", zap.Error(err))
		} else {
			logger.Log.Info("[shutdown] PostgreSQL connection closed", zap.Duration("duration", time.Since(start)))
		}

		if jsClient != nil {
			logger.Log.Info("[shutdown] Closing JetStream connection")
			start = time.Now()
			jsClient.Close()
			logger.Log.Info("[shutdown] JetStream connection closed", zap.Duration("duration", time.Since(start)))
		}
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic during shutdown",
			zap.Any("panic", r),
			zap.ByteString("stack", stack),
		)
	})

	waitCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Log.Info("[shutdown] All components stopped gracefully")
	case <-shutdownCtx.Done():
		logger.Log.Warn("[shutdown] Graceful shutdown timed out, forcing exit")
	}

	logger.Log.Info("Meal Photo Bot shutdown complete")
}

func initPostgresRepo(dsn string, autoMigrate bool) (*storage.PostgresRepo, error) {
	repo, err := storage.NewPostgresRepo(dsn, autoMigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres repository: %w", err)
	}
	logger.Log.Info("Initialized PostgreSQL repository")
	return repo, nil
}

// initJetStreamClient connects to NATS and makes sure the meal events stream exists.
func initJetStreamClient(cfg *config.Config) (*jetstream.Client, error) {
	client, err := jetstream.NewClient(cfg.NATS.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	streamCfg := jetstream.MealEventsStreamConfig(cfg.NATS.Stream, []string{cfg.NATS.MealLoggedSubject}, cfg.NATS.MaxAge)
	if err := client.SetupStream(ctx, streamCfg); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set up stream %s: %w", cfg.NATS.Stream, err)
	}

	logger.Log.Info("Initialized JetStream client", zap.String("stream", cfg.NATS.Stream))
	return client, nil
}
